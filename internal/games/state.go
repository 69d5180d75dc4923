package games

import (
	"fmt"
	"time"
)

// Player is a seat at the table. Name is the unique key.
type Player struct {
	Name      string `json:"name"`
	Role      Role   `json:"role,omitempty"`
	Alive     bool   `json:"alive"`
	Mayor     bool   `json:"mayor,omitempty"`
	Successor bool   `json:"successor,omitempty"`
}

// Match is the aggregate state of one game. It is mutated only through the
// phase machine methods and is not safe for concurrent use.
type Match struct {
	ID        string    `json:"id"`
	HostID    int64     `json:"host_id"`
	CreatedAt time.Time `json:"created_at"`

	Stage Stage `json:"stage"`
	Day   int   `json:"day"`
	Night int   `json:"night"`

	Players    []Player   `json:"players"`
	RoleCounts RoleCounts `json:"role_counts"`
	Binding    Binding    `json:"binding"`

	// VoteProtection maps player -> the only day on which they cannot be voted out.
	VoteProtection map[string]int `json:"vote_protection,omitempty"`
	// MourningDay is the day whose vote is skipped after the Duke died.
	MourningDay int `json:"mourning_day,omitempty"`
	// VotedDay is the last day on which an elimination vote was resolved.
	VotedDay int `json:"voted_day,omitempty"`

	Plan        []StepKind          `json:"plan,omitempty"`
	Cursor      int                 `json:"cursor"`
	Choices     NightChoices        `json:"choices,omitempty"`
	LastTargets map[StepKind]string `json:"last_targets,omitempty"`

	PendingAvenger string  `json:"pending_avenger,omitempty"`
	Winner         Outcome `json:"winner,omitempty"`

	Log []string `json:"log"`

	history []*Match
	events  []BroadcastEvent
}

// BroadcastEvent is an observable side effect of an operation (type + payload).
type BroadcastEvent struct {
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

// Event types emitted by the phase machine.
const (
	EventPlayerDied    = "player_died"
	EventMayorChanged  = "mayor_changed"
	EventNightResolved = "night_resolved"
	EventGameEnded     = "game_ended"
	EventRatTurned     = "rat_turned"
)

// NewMatch creates a match in the lobby with the default role distribution.
func NewMatch(id string, hostID int64) *Match {
	return &Match{
		ID:         id,
		HostID:     hostID,
		CreatedAt:  time.Now().UTC(),
		Stage:      StageLobby,
		RoleCounts: DefaultRoleCounts(),
		Log:        []string{},
	}
}

// Clone returns a copy that shares no mutable state with s. The log and undo
// history share their backing arrays with capacity clipped, so appends on
// either copy never show through to the other.
func (s *Match) Clone() *Match {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = append([]Player(nil), s.Players...)
	out.RoleCounts = s.RoleCounts.Clone()
	out.Binding = s.Binding.clone()
	if s.VoteProtection != nil {
		out.VoteProtection = make(map[string]int, len(s.VoteProtection))
		for k, v := range s.VoteProtection {
			out.VoteProtection[k] = v
		}
	}
	out.Plan = append([]StepKind(nil), s.Plan...)
	out.Choices = s.Choices.clone()
	if s.LastTargets != nil {
		out.LastTargets = make(map[StepKind]string, len(s.LastTargets))
		for k, v := range s.LastTargets {
			out.LastTargets[k] = v
		}
	}
	out.Log = s.Log[:len(s.Log):len(s.Log)]
	out.history = s.history[:len(s.history):len(s.history)]
	out.events = nil
	return &out
}

// DrainEvents returns and clears the events emitted since the last drain.
func (s *Match) DrainEvents() []BroadcastEvent {
	ev := s.events
	s.events = nil
	return ev
}

func (s *Match) emit(event string, payload map[string]interface{}) {
	s.events = append(s.events, BroadcastEvent{Event: event, Payload: payload})
}

func (s *Match) logf(format string, args ...interface{}) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// require fails with ErrStageMismatch when the transition table does not allow action.
func (s *Match) require(action string) error {
	if !actionAllowed(s.Stage, action) {
		return fmt.Errorf("%w: %s not allowed in stage %s", ErrStageMismatch, action, s.Stage)
	}
	return nil
}

// Player returns the player with the given name.
func (s *Match) Player(name string) (*Player, bool) {
	for i := range s.Players {
		if s.Players[i].Name == name {
			return &s.Players[i], true
		}
	}
	return nil, false
}

func (s *Match) isAlive(name string) bool {
	p, ok := s.Player(name)
	return ok && p.Alive
}

func (s *Match) hasRole(name string, r Role) bool {
	p, ok := s.Player(name)
	return ok && p.Role == r
}

// holder returns the living player holding role r.
func (s *Match) holder(r Role) (*Player, bool) {
	for i := range s.Players {
		if s.Players[i].Alive && s.Players[i].Role == r {
			return &s.Players[i], true
		}
	}
	return nil, false
}

func (s *Match) roleAlive(r Role) bool {
	_, ok := s.holder(r)
	return ok
}

// AliveNames lists living players in seating order.
func (s *Match) AliveNames() []string {
	out := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Alive {
			out = append(out, p.Name)
		}
	}
	return out
}

// AliveCounts counts living players by alignment.
func (s *Match) AliveCounts() AliveCounts {
	var c AliveCounts
	for _, p := range s.Players {
		if !p.Alive {
			continue
		}
		c.Total++
		switch {
		case p.Role.IsMafia():
			c.Mafia++
		case p.Role.IsNeutralKiller():
			c.Neutral++
		case p.Role.IsPeace():
			c.Peace++
		}
	}
	return c
}

// MayorName returns the current mayor, or "".
func (s *Match) MayorName() string {
	for _, p := range s.Players {
		if p.Mayor {
			return p.Name
		}
	}
	return ""
}

// SuccessorName returns the designated successor, or "".
func (s *Match) SuccessorName() string {
	for _, p := range s.Players {
		if p.Successor {
			return p.Name
		}
	}
	return ""
}

// Finished reports whether the match reached a terminal outcome.
func (s *Match) Finished() bool {
	return s.Stage == StageEnd
}

func (s *Match) protectedOn(name string, day int) bool {
	d, ok := s.VoteProtection[name]
	return ok && d == day
}

func (s *Match) protect(name string, day int) {
	if s.VoteProtection == nil {
		s.VoteProtection = make(map[string]int)
	}
	s.VoteProtection[name] = day
}
