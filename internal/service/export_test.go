package service

import "time"

// SetClock replaces the clock used for reminder windows.
func (s *TaskServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}
