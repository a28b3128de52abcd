package leads

import "time"

// SetClock replaces the time source used for rate limiting and timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
