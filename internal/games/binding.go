package games

import "fmt"

// Assignment is one (player, role) pair bound during setup.
type Assignment struct {
	Player string `json:"player"`
	Role   Role   `json:"role"`
}

// Binding tracks manual role assignment before the first day. Its history is
// a separate undo chain from the match undo stack.
type Binding struct {
	Remaining RoleCounts   `json:"remaining,omitempty"`
	Pool      []string     `json:"pool,omitempty"`
	Pending   Role         `json:"pending,omitempty"`
	History   []Assignment `json:"history,omitempty"`
}

func (b Binding) clone() Binding {
	return Binding{
		Remaining: b.Remaining.Clone(),
		Pool:      append([]string(nil), b.Pool...),
		Pending:   b.Pending,
		History:   append([]Assignment(nil), b.History...),
	}
}

// Complete reports whether every seat has a role.
func (b Binding) Complete() bool {
	return len(b.Pool) == 0 && b.Remaining.Total() == 0
}

func (b *Binding) removeFromPool(name string) bool {
	for i, n := range b.Pool {
		if n == name {
			b.Pool = append(b.Pool[:i], b.Pool[i+1:]...)
			return true
		}
	}
	return false
}

// seedBinding prepares binding from the role distribution and roster.
func (s *Match) seedBinding() {
	pool := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		pool = append(pool, p.Name)
	}
	s.Binding = Binding{Remaining: s.RoleCounts.Clone(), Pool: pool}
}

// BindRole selects the role the next chosen player will receive.
func (s *Match) BindRole(r Role) error {
	if err := s.require(ActionBindRole); err != nil {
		return err
	}
	if _, ok := roleTable[r]; !ok {
		return fmt.Errorf("%w: unknown role", ErrNotFound)
	}
	if s.Binding.Remaining[r] <= 0 {
		return fmt.Errorf("%w: no %s seats left to bind", ErrValidation, r.DisplayName())
	}
	s.Binding.Pending = r
	s.Stage = StageBindPlayer
	return nil
}

// BindPlayer gives the pending role to name. When the last seat is filled the
// match moves on to mayor selection.
func (s *Match) BindPlayer(name string) error {
	if err := s.require(ActionBindPlayer); err != nil {
		return err
	}
	r := s.Binding.Pending
	if r == RoleNone {
		return fmt.Errorf("%w: no role selected", ErrValidation)
	}
	p, ok := s.Player(name)
	if !ok {
		return fmt.Errorf("%w: player %q", ErrNotFound, name)
	}
	if !s.Binding.removeFromPool(name) {
		return fmt.Errorf("%w: %s already has a role", ErrIllegalTarget, name)
	}
	p.Role = r
	s.Binding.Remaining[r]--
	if s.Binding.Remaining[r] == 0 {
		delete(s.Binding.Remaining, r)
	}
	s.Binding.History = append(s.Binding.History, Assignment{Player: name, Role: r})
	s.Binding.Pending = RoleNone

	if s.Binding.Complete() {
		s.Stage = StageMayorSelect
		s.logf("All roles are bound. Choose the mayor.")
		return nil
	}
	s.Stage = StageBindRole
	return nil
}

// UndoBind reverts the most recent assignment and returns to role selection.
func (s *Match) UndoBind() error {
	if err := s.require(ActionUndoBind); err != nil {
		return err
	}
	n := len(s.Binding.History)
	if n == 0 {
		return fmt.Errorf("%w: no assignment to undo", ErrValidation)
	}
	last := s.Binding.History[n-1]
	s.Binding.History = s.Binding.History[:n-1]
	if p, ok := s.Player(last.Player); ok {
		p.Role = RoleNone
	}
	s.Binding.Pool = append(s.Binding.Pool, last.Player)
	s.restorePoolOrder()
	if s.Binding.Remaining == nil {
		s.Binding.Remaining = make(RoleCounts)
	}
	s.Binding.Remaining[last.Role]++
	s.Binding.Pending = RoleNone
	s.Stage = StageBindRole
	return nil
}

// restorePoolOrder keeps the pool in seating order.
func (s *Match) restorePoolOrder() {
	in := make(map[string]bool, len(s.Binding.Pool))
	for _, n := range s.Binding.Pool {
		in[n] = true
	}
	pool := s.Binding.Pool[:0]
	for _, p := range s.Players {
		if in[p.Name] {
			pool = append(pool, p.Name)
		}
	}
	s.Binding.Pool = pool
}
