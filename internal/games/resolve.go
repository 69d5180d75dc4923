package games

import "fmt"

// ShotOutcome describes what happened to an assassin's actual victim.
type ShotOutcome string

const (
	ShotNoTarget          ShotOutcome = "no_target"
	ShotKilled            ShotOutcome = "killed"
	ShotImmortal          ShotOutcome = "survived_immortal"
	ShotCourtesanSaved    ShotOutcome = "survived_courtesan_saved"
	ShotDiedWithCourtesan ShotOutcome = "killed_with_courtesan"
	ShotDoctorSaved       ShotOutcome = "survived_doctor_saved"
	ShotOther             ShotOutcome = "survived_other"
)

// Shot is one assassin's attempt this night.
type Shot struct {
	Intended string      `json:"intended,omitempty"`
	Actual   string      `json:"actual,omitempty"`
	Outcome  ShotOutcome `json:"outcome"`
}

// Redirected reports whether the Monk moved the shot.
func (s Shot) Redirected() bool { return s.Actual != s.Intended }

// NightResult is the batch outcome of one night.
type NightResult struct {
	Deaths    []string `json:"deaths"`
	Summary   []string `json:"summary"`
	Mafia     Shot     `json:"mafia"`
	Maniac    Shot     `json:"maniac"`
	RatTurned bool     `json:"rat_turned"`
}

type resolver struct {
	m      *Match
	deaths []string
	dead   map[string]bool
}

func (r *resolver) kill(name string) {
	if r.dead[name] {
		return
	}
	r.dead[name] = true
	r.deaths = append(r.deaths, name)
}

func (r *resolver) shoot(target string) ShotOutcome {
	m, c := r.m, r.m.Choices
	if target == "" {
		return ShotNoTarget
	}
	if !m.isAlive(target) {
		return ShotOther
	}
	if m.hasRole(target, RoleImmortal) {
		return ShotImmortal
	}
	visit := c.target(StepCourtesanVisit)
	if visit != "" && target == visit {
		return ShotCourtesanSaved
	}
	heal := c.target(StepDoctorHeal)
	if m.hasRole(target, RoleCourtesan) {
		if heal == target {
			return ShotDoctorSaved
		}
		r.kill(target)
		if visit != "" && m.isAlive(visit) && !m.hasRole(visit, RoleImmortal) {
			r.kill(visit)
		}
		return ShotKilled
	}
	if heal == target {
		return ShotDoctorSaved
	}
	r.kill(target)
	return ShotKilled
}

// ResolveNight computes deaths and the narrated summary from the recorded
// choices. It reads m and never mutates it.
func ResolveNight(m *Match) NightResult {
	c := m.Choices
	r := &resolver{m: m, dead: make(map[string]bool)}

	mafia := Shot{Intended: c.target(StepMafiaKill)}
	maniac := Shot{Intended: c.target(StepManiacKill)}
	mafia.Actual, maniac.Actual = mafia.Intended, maniac.Intended

	monkFirst, monkSecond := c.target(StepMonkFirst), c.target(StepMonkSecond)
	if m.roleAlive(RoleMonk) && m.isAlive(monkFirst) && m.isAlive(monkSecond) {
		if mafia.Intended != "" && mafia.Intended == monkFirst {
			mafia.Actual = monkSecond
		}
		if maniac.Intended != "" && maniac.Intended == monkFirst {
			maniac.Actual = monkSecond
		}
	}

	mafia.Outcome = r.shoot(mafia.Actual)
	maniac.Outcome = r.shoot(maniac.Actual)
	for _, s := range []*Shot{&mafia, &maniac} {
		if s.Outcome == ShotCourtesanSaved && r.dead[s.Actual] {
			s.Outcome = ShotDiedWithCourtesan
		}
	}

	res := NightResult{Deaths: r.deaths, Mafia: mafia, Maniac: maniac}
	if res.Deaths == nil {
		res.Deaths = []string{}
	}

	if m.planned(StepMafiaKill) {
		res.Summary = append(res.Summary, describeShot("Mafia", mafia))
	}
	if m.planned(StepBossIntimidate) {
		if t := c.target(StepBossIntimidate); t != "" {
			res.Summary = append(res.Summary, fmt.Sprintf("Boss intimidated %s: cannot be voted out on day %d", t, m.Day+1))
		} else {
			res.Summary = append(res.Summary, "Boss intimidated nobody")
		}
	}
	if m.planned(StepManiacKill) {
		res.Summary = append(res.Summary, describeShot("Maniac", maniac))
	}
	if m.planned(StepCommissionerCheck) {
		if t := c.target(StepCommissionerCheck); t != "" {
			answer := "not mafia"
			if p, ok := m.Player(t); ok && CommissionerAnswer(p.Role) {
				answer = "mafia"
			}
			res.Summary = append(res.Summary, fmt.Sprintf("Commissioner checked %s: %s", t, answer))
		} else {
			res.Summary = append(res.Summary, "Commissioner checked nobody")
		}
	}
	if m.planned(StepMonkFirst) {
		res.Summary = append(res.Summary, fmt.Sprintf("Monk picked %s and %s", orNobody(monkFirst), orNobody(monkSecond)))
	}
	if m.planned(StepDoctorHeal) {
		res.Summary = append(res.Summary, fmt.Sprintf("Doctor healed %s", orNobody(c.target(StepDoctorHeal))))
	}
	if m.planned(StepCourtesanVisit) {
		res.Summary = append(res.Summary, fmt.Sprintf("Courtesan visited %s", orNobody(c.target(StepCourtesanVisit))))
	}
	if m.planned(StepSeerDivine) {
		if t := c.target(StepSeerDivine); t != "" {
			role := RoleNone
			if p, ok := m.Player(t); ok {
				role = p.Role
			}
			res.Summary = append(res.Summary, fmt.Sprintf("Seer divined %s: %s", t, role.DisplayName()))
		} else {
			res.Summary = append(res.Summary, "Seer divined nobody")
		}
	}
	if m.planned(StepRatWants) {
		ratYes, mafiaYes := c[StepRatWants].Consent, c[StepMafiaWantsRat].Consent
		res.Summary = append(res.Summary,
			fmt.Sprintf("Rat wants to join the mafia: %s", yesNo(ratYes)),
			fmt.Sprintf("Mafia wants the Rat: %s", yesNo(mafiaYes)))
		res.RatTurned = ratYes && mafiaYes
		if res.RatTurned {
			res.Summary = append(res.Summary, "The Rat joined the mafia")
		} else {
			res.Summary = append(res.Summary, "No deal between the Rat and the mafia")
		}
	}
	return res
}

func describeShot(who string, s Shot) string {
	if s.Intended == "" {
		return fmt.Sprintf("%s did not shoot", who)
	}
	line := fmt.Sprintf("%s shot at %s", who, s.Intended)
	if s.Redirected() {
		line += fmt.Sprintf(", redirected by the Monk to %s", s.Actual)
	}
	switch s.Outcome {
	case ShotKilled:
		return line + ": killed"
	case ShotImmortal:
		return line + ": survived (Immortal)"
	case ShotCourtesanSaved:
		return line + ": survived (with the Courtesan)"
	case ShotDiedWithCourtesan:
		return line + ": killed along with the Courtesan"
	case ShotDoctorSaved:
		return line + ": survived (healed by the Doctor)"
	default:
		return line + ": survived"
	}
}

func orNobody(name string) string {
	if name == "" {
		return "nobody"
	}
	return name
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
