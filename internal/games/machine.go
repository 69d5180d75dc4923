package games

import (
	"fmt"
	"strings"
)

// AddPlayer seats a new player. Only legal while the roster is being edited.
func (s *Match) AddPlayer(name string) error {
	if err := s.require(ActionAddPlayer); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: player name is required", ErrValidation)
	}
	if _, exists := s.Player(name); exists {
		return fmt.Errorf("%w: player %q already exists", ErrValidation, name)
	}
	s.Players = append(s.Players, Player{Name: name, Alive: true})
	s.Stage = StageAddPlayers
	return nil
}

// RemovePlayer removes a player from the roster.
func (s *Match) RemovePlayer(name string) error {
	if err := s.require(ActionRemovePlayer); err != nil {
		return err
	}
	for i, p := range s.Players {
		if p.Name == name {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			s.Stage = StageAddPlayers
			return nil
		}
	}
	return fmt.Errorf("%w: player %q", ErrNotFound, name)
}

// SetRoleCount sets how many seats role r occupies; zero removes the role.
func (s *Match) SetRoleCount(r Role, n int) error {
	if err := s.require(ActionSetRoleCount); err != nil {
		return err
	}
	if err := checkRoleCount(r, n); err != nil {
		return err
	}
	if s.RoleCounts == nil {
		s.RoleCounts = make(RoleCounts)
	}
	if n == 0 {
		delete(s.RoleCounts, r)
	} else {
		s.RoleCounts[r] = n
	}
	s.Stage = StageEditRoles
	return nil
}

// CheckStart reports why the match cannot start yet, or nil.
func (s *Match) CheckStart() error {
	return ValidateStart(s.RoleCounts, len(s.Players))
}

// Start validates the distribution, clears every runtime field and enters
// night-zero binding.
func (s *Match) Start() error {
	if err := s.require(ActionStart); err != nil {
		return err
	}
	if err := s.CheckStart(); err != nil {
		return err
	}
	s.clearRuntime()
	s.seedBinding()
	s.Stage = StageBindRole
	s.logf("Game started with %d players. Night 0: bind the roles.", len(s.Players))
	return nil
}

func (s *Match) clearRuntime() {
	for i := range s.Players {
		s.Players[i] = Player{Name: s.Players[i].Name, Alive: true}
	}
	s.Day, s.Night = 0, 0
	s.Binding = Binding{}
	s.VoteProtection = nil
	s.MourningDay, s.VotedDay = 0, 0
	s.Plan, s.Cursor, s.Choices = nil, 0, nil
	s.LastTargets = nil
	s.PendingAvenger = ""
	s.Winner = OutcomeOngoing
	s.history = nil
}

// SelectMayor gives the mayor title to a living player.
func (s *Match) SelectMayor(name string) error {
	if err := s.require(ActionSelectMayor); err != nil {
		return err
	}
	p, err := s.livingPlayer(name)
	if err != nil {
		return err
	}
	p.Mayor = true
	s.Stage = StageSuccessorSelect
	s.logf("%s is the mayor. Choose the successor.", name)
	return nil
}

// SelectSuccessor designates who inherits the mayor title, then day 1 begins.
func (s *Match) SelectSuccessor(name string) error {
	if err := s.require(ActionSelectSuccessor); err != nil {
		return err
	}
	p, err := s.livingPlayer(name)
	if err != nil {
		return err
	}
	if p.Mayor {
		return fmt.Errorf("%w: the mayor cannot be their own successor", ErrIllegalTarget)
	}
	p.Successor = true
	s.logf("%s is the successor.", name)
	s.Day = 1
	s.Stage = StageDayMenu
	s.logf("Day %d begins.", s.Day)
	return nil
}

// StartDayVote opens the elimination vote for the current day.
func (s *Match) StartDayVote() error {
	if err := s.require(ActionStartDayVote); err != nil {
		return err
	}
	if s.MourningDay == s.Day {
		return fmt.Errorf("%w: day %d is a day of mourning, there is no vote", ErrStageMismatch, s.Day)
	}
	if s.VotedDay == s.Day {
		return fmt.Errorf("%w: the town already voted on day %d", ErrStageMismatch, s.Day)
	}
	s.pushSnapshot()
	s.Stage = StageDayVote
	return nil
}

// CastDayVote eliminates target by the day vote.
func (s *Match) CastDayVote(target string) error {
	if err := s.require(ActionCastDayVote); err != nil {
		return err
	}
	p, err := s.livingPlayer(target)
	if err != nil {
		return err
	}
	if s.protectedOn(target, s.Day) {
		return fmt.Errorf("%w: %s cannot be voted out on day %d", ErrIllegalTarget, target, s.Day)
	}
	s.logf("Day %d: %s (%s) was voted out.", s.Day, target, p.Role.DisplayName())
	avenger := p.Role == RoleAvenger
	s.kill(target, CauseVote, s.Day)
	s.VotedDay = s.Day
	if avenger {
		s.PendingAvenger = target
		s.Stage = StageAvengerRevenge
		s.logf("The Avenger takes someone down with them. Choose the target.")
		return nil
	}
	s.afterDayElimination(target)
	return nil
}

// ResolveAvengerRevenge eliminates the Avenger's chosen target.
func (s *Match) ResolveAvengerRevenge(target string) error {
	if err := s.require(ActionAvengerRevenge); err != nil {
		return err
	}
	if s.PendingAvenger == "" {
		return fmt.Errorf("%w: revenge stage without a pending avenger", ErrInvariant)
	}
	if target == s.PendingAvenger {
		return fmt.Errorf("%w: the Avenger cannot target themselves", ErrIllegalTarget)
	}
	p, err := s.livingPlayer(target)
	if err != nil {
		return err
	}
	s.logf("Day %d: the Avenger took %s (%s) with them.", s.Day, target, p.Role.DisplayName())
	s.kill(target, CauseAvenger, s.Day)
	victim := s.PendingAvenger
	s.PendingAvenger = ""
	s.afterDayElimination(victim)
	return nil
}

// afterDayElimination decides what follows a day elimination: end of game,
// a skipped night, or back to the day menu to wait for nightfall.
func (s *Match) afterDayElimination(victim string) {
	if s.checkEnd() {
		return
	}
	if FinalThreshold(s.AliveCounts()) {
		s.logf("Three players remain: one mafia and two citizens. The night is skipped.")
		s.advanceDay()
		return
	}
	if s.bansheeSkipsNight(victim) {
		s.logf("The Banshee's wail cancels the night.")
		s.advanceDay()
		return
	}
	s.Stage = StageDayMenu
}

func (s *Match) advanceDay() {
	s.Day++
	s.Stage = StageDayMenu
	s.logf("Day %d begins.", s.Day)
}

// SkipToNight ends the day and starts the night.
func (s *Match) SkipToNight() error {
	if err := s.require(ActionSkipToNight); err != nil {
		return err
	}
	s.beginNight()
	return nil
}

func (s *Match) beginNight() {
	s.resetHistory()
	s.Night++
	s.Plan = BuildPlan(s)
	s.Cursor = 0
	s.Choices = make(NightChoices)
	s.Stage = StageNight
	s.logf("Night %d falls.", s.Night)
}

// SubmitNightChoice records the answer for the step under the cursor.
// Consent steps ignore Target; target steps ignore Consent. An empty
// Target means the actor passes.
func (s *Match) SubmitNightChoice(k StepKind, c Choice) error {
	if err := s.require(ActionNightChoice); err != nil {
		return err
	}
	meta, err := k.meta()
	if err != nil {
		return err
	}
	active, ok := s.ActiveStep()
	if !ok {
		return fmt.Errorf("%w: every night step is already answered", ErrStageMismatch)
	}
	if k != active {
		return fmt.Errorf("%w: step %s is not active, current step is %s", ErrStageMismatch, k, active)
	}
	switch meta.payload {
	case PayloadConsent:
		c.Target = ""
	case PayloadTarget:
		c.Consent = false
		if c.Target != "" {
			if err := s.checkNightTarget(k, c.Target); err != nil {
				return err
			}
		}
	}
	s.pushSnapshot()
	s.Choices[k] = c
	if k == StepBossIntimidate && c.Target != "" {
		s.protect(c.Target, s.Day+1)
	}
	s.Cursor++
	return nil
}

func (s *Match) checkNightTarget(k StepKind, target string) error {
	for _, t := range TargetsFor(s, k) {
		if t == target {
			return nil
		}
	}
	p, ok := s.Player(target)
	switch {
	case !ok:
		return fmt.Errorf("%w: player %q", ErrNotFound, target)
	case !p.Alive:
		return fmt.Errorf("%w: %s is dead", ErrIllegalTarget, target)
	case s.LastTargets[k] == target:
		return fmt.Errorf("%w: %s was chosen for %s last night", ErrIllegalTarget, target, k)
	default:
		return fmt.Errorf("%w: %s cannot be chosen for %s", ErrIllegalTarget, target, k)
	}
}

// FinishNight resolves the night and starts the next day.
func (s *Match) FinishNight() error {
	if err := s.require(ActionFinishNight); err != nil {
		return err
	}
	if s.Cursor > len(s.Plan) || s.Cursor < 0 {
		return fmt.Errorf("%w: night cursor %d outside plan of %d steps", ErrInvariant, s.Cursor, len(s.Plan))
	}
	if s.Cursor < len(s.Plan) {
		return fmt.Errorf("%w: night step %s is still pending", ErrStageMismatch, s.Plan[s.Cursor])
	}

	res := ResolveNight(s)

	memos := make(map[StepKind]string)
	for _, k := range s.Plan {
		if meta, _ := k.meta(); meta.memo {
			memos[k] = s.Choices.target(k)
		}
	}
	s.LastTargets = memos

	s.logf("Night %d summary:", s.Night)
	for _, line := range res.Summary {
		s.logf("  %s", line)
	}
	s.Day++
	if len(res.Deaths) == 0 {
		s.logf("Nobody died during night %d.", s.Night)
	}
	s.killAtNight(res.Deaths)

	if res.RatTurned {
		for i := range s.Players {
			if s.Players[i].Role == RoleRat {
				s.Players[i].Role = RoleRatMafia
				s.emit(EventRatTurned, map[string]interface{}{"name": s.Players[i].Name})
			}
		}
	}
	s.emit(EventNightResolved, map[string]interface{}{
		"night":   s.Night,
		"deaths":  res.Deaths,
		"summary": res.Summary,
	})

	s.Plan, s.Cursor, s.Choices = nil, 0, nil
	s.resetHistory()
	if s.checkEnd() {
		return nil
	}
	s.dukeMourning(res.Deaths)
	s.Stage = StageDayMenu
	s.logf("Day %d begins.", s.Day)
	return nil
}

// Reset returns the match to the lobby. The roster and role distribution are
// kept; everything else, including the log, starts over.
func (s *Match) Reset() error {
	if err := s.require(ActionReset); err != nil {
		return err
	}
	s.clearRuntime()
	s.Log = []string{}
	s.Stage = StageLobby
	if len(s.Players) > 0 {
		s.Stage = StageAddPlayers
	}
	s.logf("Match reset.")
	return nil
}

func (s *Match) livingPlayer(name string) (*Player, error) {
	p, ok := s.Player(name)
	if !ok {
		return nil, fmt.Errorf("%w: player %q", ErrNotFound, name)
	}
	if !p.Alive {
		return nil, fmt.Errorf("%w: %s is dead", ErrIllegalTarget, name)
	}
	return p, nil
}
