package games

import "fmt"

// StepKind is one night action in the night plan.
type StepKind string

// Night steps in resolution order.
const (
	StepMafiaKill         StepKind = "mafia_kill"
	StepBossIntimidate    StepKind = "boss_intimidate"
	StepManiacKill        StepKind = "maniac_kill"
	StepCommissionerCheck StepKind = "commissioner_check"
	StepMonkFirst         StepKind = "monk_first"
	StepMonkSecond        StepKind = "monk_second"
	StepDoctorHeal        StepKind = "doctor_heal"
	StepCourtesanVisit    StepKind = "courtesan_visit"
	StepSeerDivine        StepKind = "seer_divine"
	StepRatWants          StepKind = "rat_wants"
	StepMafiaWantsRat     StepKind = "mafia_wants_rat"
)

// PayloadKind tells whether a step takes a target player or a yes/no answer.
type PayloadKind int

const (
	PayloadTarget PayloadKind = iota
	PayloadConsent
)

// ParseStep resolves a step name.
func ParseStep(s string) (StepKind, error) {
	k := StepKind(s)
	if _, err := k.meta(); err != nil {
		return "", err
	}
	return k, nil
}

type stepMeta struct {
	payload PayloadKind
	actor   Role // RoleNone: the mafia as a group
	// noSelf excludes the acting player from the target list.
	noSelf bool
	// memo is set when the step may not repeat last night's target.
	memo bool
}

func (k StepKind) meta() (stepMeta, error) {
	switch k {
	case StepMafiaKill:
		return stepMeta{payload: PayloadTarget}, nil
	case StepBossIntimidate:
		return stepMeta{payload: PayloadTarget, actor: RoleBoss, noSelf: true}, nil
	case StepManiacKill:
		return stepMeta{payload: PayloadTarget, actor: RoleManiac, noSelf: true}, nil
	case StepCommissionerCheck:
		return stepMeta{payload: PayloadTarget, actor: RoleCommissioner, noSelf: true, memo: true}, nil
	case StepMonkFirst:
		return stepMeta{payload: PayloadTarget, actor: RoleMonk, memo: true}, nil
	case StepMonkSecond:
		return stepMeta{payload: PayloadTarget, actor: RoleMonk}, nil
	case StepDoctorHeal:
		return stepMeta{payload: PayloadTarget, actor: RoleDoctor, memo: true}, nil
	case StepCourtesanVisit:
		return stepMeta{payload: PayloadTarget, actor: RoleCourtesan, noSelf: true, memo: true}, nil
	case StepSeerDivine:
		return stepMeta{payload: PayloadTarget, actor: RoleSeer, noSelf: true, memo: true}, nil
	case StepRatWants:
		return stepMeta{payload: PayloadConsent, actor: RoleRat}, nil
	case StepMafiaWantsRat:
		return stepMeta{payload: PayloadConsent}, nil
	}
	return stepMeta{}, fmt.Errorf("%w: unknown night step %q", ErrNotFound, string(k))
}

// Payload returns the kind of answer the step expects.
func (k StepKind) Payload() PayloadKind {
	m, _ := k.meta()
	return m.payload
}

// Choice is the answer recorded for one step. Target is empty when the actor passed.
type Choice struct {
	Target  string `json:"target,omitempty"`
	Consent bool   `json:"consent,omitempty"`
}

// NightChoices holds the answers recorded so far this night.
type NightChoices map[StepKind]Choice

func (c NightChoices) clone() NightChoices {
	if c == nil {
		return nil
	}
	out := make(NightChoices, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func (c NightChoices) target(k StepKind) string { return c[k].Target }

// BuildPlan computes the ordered night steps for the roles currently alive.
func BuildPlan(m *Match) []StepKind {
	counts := m.AliveCounts()
	var plan []StepKind
	if counts.Mafia >= 1 {
		plan = append(plan, StepMafiaKill)
	}
	if m.roleAlive(RoleBoss) && !BossIntimidationBlocked(counts) && !SpecialThresholdBlocks(counts) {
		plan = append(plan, StepBossIntimidate)
	}
	if m.roleAlive(RoleManiac) {
		plan = append(plan, StepManiacKill)
	}
	if m.roleAlive(RoleCommissioner) {
		plan = append(plan, StepCommissionerCheck)
	}
	if m.roleAlive(RoleMonk) {
		plan = append(plan, StepMonkFirst, StepMonkSecond)
	}
	if m.roleAlive(RoleDoctor) {
		plan = append(plan, StepDoctorHeal)
	}
	if m.roleAlive(RoleCourtesan) {
		plan = append(plan, StepCourtesanVisit)
	}
	if m.roleAlive(RoleSeer) {
		plan = append(plan, StepSeerDivine)
	}
	if counts.Mafia == 1 && m.roleAlive(RoleRat) {
		plan = append(plan, StepRatWants, StepMafiaWantsRat)
	}
	return plan
}

// TargetsFor lists the legal targets of step k against the current state.
// Consent steps have no target list.
func TargetsFor(m *Match, k StepKind) []string {
	meta, err := k.meta()
	if err != nil || meta.payload != PayloadTarget {
		return nil
	}
	var actor string
	if meta.noSelf && meta.actor != RoleNone {
		if p, ok := m.holder(meta.actor); ok {
			actor = p.Name
		}
	}
	var memo string
	if meta.memo {
		memo = m.LastTargets[k]
	}
	var monkFirst string
	if k == StepMonkSecond {
		monkFirst = m.Choices.target(StepMonkFirst)
	}
	out := make([]string, 0, len(m.Players))
	for _, name := range m.AliveNames() {
		if name == actor || (memo != "" && name == memo) || (monkFirst != "" && name == monkFirst) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// ActiveStep returns the step under the cursor, or false when every step is answered.
func (s *Match) ActiveStep() (StepKind, bool) {
	if s.Stage != StageNight || s.Cursor >= len(s.Plan) {
		return "", false
	}
	return s.Plan[s.Cursor], true
}

func (s *Match) planned(k StepKind) bool {
	for _, p := range s.Plan {
		if p == k {
			return true
		}
	}
	return false
}
