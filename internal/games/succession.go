package games

// Death causes recorded on player_died events.
const (
	CauseVote    = "vote"
	CauseAvenger = "avenger"
	CauseNight   = "night"
)

// kill marks name dead, announces it and runs the mayor handoff. protectDay is
// the day on which a new mayor is exempt from the vote.
func (s *Match) kill(name, cause string, protectDay int) {
	p, ok := s.Player(name)
	if !ok || !p.Alive {
		return
	}
	p.Alive = false
	s.emit(EventPlayerDied, map[string]interface{}{"name": name, "role": p.Role.String(), "cause": cause})
	if p.Successor {
		p.Successor = false
	}
	if p.Mayor {
		p.Mayor = false
		s.handOverMayor(name, protectDay)
	}
}

// handOverMayor passes the title from the dead mayor to a living successor.
func (s *Match) handOverMayor(dead string, protectDay int) {
	for i := range s.Players {
		heir := &s.Players[i]
		if !heir.Successor || !heir.Alive {
			continue
		}
		heir.Successor = false
		heir.Mayor = true
		s.protect(heir.Name, protectDay)
		s.logf("Mayor %s is dead. %s becomes mayor and cannot be voted out on day %d.", dead, heir.Name, protectDay)
		s.emit(EventMayorChanged, map[string]interface{}{"previous": dead, "mayor": heir.Name})
		return
	}
	s.logf("Mayor %s is dead. There is no successor.", dead)
	s.emit(EventMayorChanged, map[string]interface{}{"previous": dead, "mayor": ""})
}

// killAtNight applies a night's deaths. All victims die together before any
// handoff, so a successor killed the same night does not inherit.
func (s *Match) killAtNight(names []string) {
	var mayor string
	for _, name := range names {
		p, ok := s.Player(name)
		if !ok || !p.Alive {
			continue
		}
		p.Alive = false
		p.Successor = false
		if p.Mayor {
			p.Mayor = false
			mayor = name
		}
		s.logf("Night %d: %s (%s) was killed.", s.Night, name, p.Role.DisplayName())
		s.emit(EventPlayerDied, map[string]interface{}{"name": name, "role": p.Role.String(), "cause": CauseNight})
	}
	if mayor != "" {
		s.handOverMayor(mayor, s.Day)
	}
}

// dukeMourning marks the current day as a mourning day when the Duke died in
// names and the threshold rule is not in force.
func (s *Match) dukeMourning(names []string) {
	for _, name := range names {
		if !s.hasRole(name, RoleDuke) {
			continue
		}
		if SpecialThresholdBlocks(s.AliveCounts()) {
			s.logf("The Duke is dead, but the town is too small to mourn.")
			return
		}
		s.MourningDay = s.Day
		s.logf("The Duke is dead. Day %d is a day of mourning: no vote.", s.Day)
		return
	}
}

// bansheeSkipsNight reports whether a Banshee voted out today cancels the night.
func (s *Match) bansheeSkipsNight(victim string) bool {
	return s.hasRole(victim, RoleBanshee) && !SpecialThresholdBlocks(s.AliveCounts())
}

// checkEnd ends the match when the win evaluator reports an outcome.
func (s *Match) checkEnd() bool {
	outcome := EvaluateWin(s.AliveCounts())
	if outcome == OutcomeOngoing {
		return false
	}
	s.Winner = outcome
	s.Stage = StageEnd
	s.PendingAvenger = ""
	s.logf("Game over: %s", outcome.describe())
	s.emit(EventGameEnded, map[string]interface{}{"winner": string(outcome), "day": s.Day, "night": s.Night})
	return true
}
