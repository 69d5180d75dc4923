package games

import "fmt"

// pushSnapshot records the current state so a later Undo can return to it.
func (s *Match) pushSnapshot() {
	snap := s.Clone()
	snap.history = nil
	s.history = append(s.history, snap)
}

// resetHistory drops every snapshot. Nightfall and night resolution cannot be undone.
func (s *Match) resetHistory() {
	s.history = nil
}

// CanUndo reports whether a snapshot is available.
func (s *Match) CanUndo() bool {
	return len(s.history) > 0 && actionAllowed(s.Stage, ActionUndo)
}

// Undo restores the most recent snapshot. The narrated log is kept and the
// undo itself is appended to it.
func (s *Match) Undo() error {
	if err := s.require(ActionUndo); err != nil {
		return err
	}
	n := len(s.history)
	if n == 0 {
		return fmt.Errorf("%w: nothing to undo", ErrValidation)
	}
	snap := s.history[n-1]
	history := s.history[: n-1 : n-1]
	log := s.Log
	events := s.events

	*s = *snap.Clone()
	s.history = history
	s.Log = log
	s.events = events
	s.logf("Host undid the last action.")
	return nil
}
