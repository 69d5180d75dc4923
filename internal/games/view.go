package games

// PlayerView is one seat as shown to the host.
type PlayerView struct {
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	RoleName  string `json:"role_name,omitempty"`
	Alive     bool   `json:"alive"`
	Mayor     bool   `json:"mayor,omitempty"`
	Successor bool   `json:"successor,omitempty"`
	// ProtectedToday is set when the player cannot be voted out today.
	ProtectedToday bool `json:"protected_today,omitempty"`
}

// StepView describes the night step waiting for an answer.
type StepView struct {
	Step    StepKind `json:"step"`
	Payload string   `json:"payload"`
	Targets []string `json:"targets,omitempty"`
	Index   int      `json:"index"`
	Total   int      `json:"total"`
}

// BindingView is the night-zero binding progress.
type BindingView struct {
	Remaining map[string]int `json:"remaining"`
	Pool      []string       `json:"pool"`
	Pending   string         `json:"pending,omitempty"`
	Bound     []Assignment   `json:"bound"`
}

// MatchView is the read model returned after every operation.
type MatchView struct {
	ID             string         `json:"id"`
	Stage          Stage          `json:"stage"`
	Day            int            `json:"day"`
	Night          int            `json:"night"`
	Players        []PlayerView   `json:"players"`
	RoleCounts     map[string]int `json:"role_counts"`
	Mayor          string         `json:"mayor,omitempty"`
	Successor      string         `json:"successor,omitempty"`
	Alive          AliveCounts    `json:"alive"`
	Binding        *BindingView   `json:"binding,omitempty"`
	Plan           []StepKind     `json:"plan,omitempty"`
	ActiveStep     *StepView      `json:"active_step,omitempty"`
	MourningToday  bool           `json:"mourning_today,omitempty"`
	VotedToday     bool           `json:"voted_today,omitempty"`
	PendingAvenger string         `json:"pending_avenger,omitempty"`
	Winner         Outcome        `json:"winner,omitempty"`
	CanUndo        bool           `json:"can_undo"`
	AllowedActions []string       `json:"allowed_actions"`
	RecentLog      []string       `json:"recent_log"`
	Log            []string       `json:"log,omitempty"`
}

// View builds the read model. fullLog includes the whole log in addition to
// the recent tail.
func (s *Match) View(fullLog bool) MatchView {
	v := MatchView{
		ID:             s.ID,
		Stage:          s.Stage,
		Day:            s.Day,
		Night:          s.Night,
		RoleCounts:     roleCountsView(s.RoleCounts),
		Mayor:          s.MayorName(),
		Successor:      s.SuccessorName(),
		Alive:          s.AliveCounts(),
		PendingAvenger: s.PendingAvenger,
		Winner:         s.Winner,
		CanUndo:        s.CanUndo(),
		AllowedActions: AllowedActions(s.Stage),
		RecentLog:      s.RecentLog(RecentLogSize),
	}
	inDay := s.Stage == StageDayMenu || s.Stage == StageDayVote || s.Stage == StageAvengerRevenge
	v.MourningToday = inDay && s.MourningDay == s.Day
	v.VotedToday = inDay && s.VotedDay == s.Day

	v.Players = make([]PlayerView, 0, len(s.Players))
	for _, p := range s.Players {
		pv := PlayerView{
			Name:           p.Name,
			Alive:          p.Alive,
			Mayor:          p.Mayor,
			Successor:      p.Successor,
			ProtectedToday: s.Day > 0 && s.protectedOn(p.Name, s.Day),
		}
		if p.Role != RoleNone {
			pv.Role = p.Role.String()
			pv.RoleName = p.Role.DisplayName()
		}
		v.Players = append(v.Players, pv)
	}

	if s.Stage == StageBindRole || s.Stage == StageBindPlayer {
		v.Binding = &BindingView{
			Remaining: roleCountsView(s.Binding.Remaining),
			Pool:      append([]string{}, s.Binding.Pool...),
			Bound:     append([]Assignment{}, s.Binding.History...),
		}
		if s.Binding.Pending != RoleNone {
			v.Binding.Pending = s.Binding.Pending.String()
		}
	}

	if s.Stage == StageNight {
		v.Plan = append([]StepKind{}, s.Plan...)
		if k, ok := s.ActiveStep(); ok {
			sv := &StepView{Step: k, Payload: "target", Index: s.Cursor, Total: len(s.Plan)}
			if k.Payload() == PayloadConsent {
				sv.Payload = "consent"
			} else {
				sv.Targets = TargetsFor(s, k)
			}
			v.ActiveStep = sv
		}
	}

	if fullLog {
		v.Log = append([]string{}, s.Log...)
	}
	return v
}

// RecentLog returns up to n trailing log lines.
func (s *Match) RecentLog(n int) []string {
	start := len(s.Log) - n
	if start < 0 {
		start = 0
	}
	return append([]string{}, s.Log[start:]...)
}

func roleCountsView(c RoleCounts) map[string]int {
	out := make(map[string]int, len(c))
	for r, n := range c {
		out[r.String()] = n
	}
	return out
}

// RoleInfo is one catalog entry.
type RoleInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Short       string `json:"short"`
	Alignment   string `json:"alignment"`
	Cardinality string `json:"cardinality"`
}

// RoleCatalog lists the selectable roles in display order.
func RoleCatalog() []RoleInfo {
	out := make([]RoleInfo, 0, len(SelectableRoles))
	for _, r := range SelectableRoles {
		info := roleTable[r]
		out = append(out, RoleInfo{
			Key:         info.key,
			Name:        info.name,
			Short:       info.short,
			Alignment:   info.alignment.String(),
			Cardinality: info.cardinality.String(),
		})
	}
	return out
}

// PublicView is the spectator read model. Roles of living players, the
// binding, the night plan and the host log are withheld.
func (s *Match) PublicView() MatchView {
	v := s.View(false)
	for i := range v.Players {
		if v.Players[i].Alive {
			v.Players[i].Role = ""
			v.Players[i].RoleName = ""
		}
	}
	v.Binding = nil
	v.Plan = nil
	v.ActiveStep = nil
	v.PendingAvenger = ""
	v.CanUndo = false
	v.AllowedActions = nil
	v.RecentLog = nil
	return v
}

// PublicEvents strips what spectators must not learn from a batch of
// events: the night summary and the Rat's conversion.
func PublicEvents(events []BroadcastEvent) []BroadcastEvent {
	out := make([]BroadcastEvent, 0, len(events))
	for _, ev := range events {
		switch ev.Event {
		case EventRatTurned:
			continue
		case EventNightResolved:
			ev = BroadcastEvent{Event: ev.Event, Payload: map[string]interface{}{
				"night":  ev.Payload["night"],
				"deaths": ev.Payload["deaths"],
			}}
		}
		out = append(out, ev)
	}
	return out
}
