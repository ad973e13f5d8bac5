package session

import "time"

// armTimer re-arms the per-question countdown. Bumping the generation makes
// any still-running countdown goroutine's ticks stale, so at most one
// generation ever mutates remaining time.
func (s *Session) armTimer(limitSeconds int) {
	s.timerGen++
	s.remaining = limitSeconds
	go s.runTimer(s.timerGen)
}

// runTimer emits one tick per interval into the session's event queue. The
// tick is a regular queued command: a submission that entered the queue ahead
// of the expiring tick is processed before it. The goroutine exits when the
// loop reports its generation stale or the session ends.
func (s *Session) runTimer(gen int) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			env := envelope{cmd: tickCmd{gen: gen}, reply: make(chan response, 1)}
			select {
			case s.events <- env:
			case <-s.done:
				return
			}
			select {
			case resp := <-env.reply:
				if resp.err != nil {
					return
				}
			case <-s.done:
				return
			}
		case <-s.done:
			return
		}
	}
}
