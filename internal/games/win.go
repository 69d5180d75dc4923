package games

// Outcome is the result of a finished match.
type Outcome string

const (
	OutcomeOngoing Outcome = ""
	OutcomeDraw    Outcome = "draw"
	OutcomeMafia   Outcome = "mafia"
	OutcomePeace   Outcome = "peace"
)

// AliveCounts summarizes living players by alignment.
type AliveCounts struct {
	Mafia   int `json:"mafia"`
	Peace   int `json:"peace"`
	Neutral int `json:"neutral"`
	Total   int `json:"total"`
}

// EvaluateWin decides the match outcome from alive counts.
func EvaluateWin(c AliveCounts) Outcome {
	switch {
	case c.Total == 3 && c.Mafia == 1 && c.Peace == 1 && c.Neutral == 1:
		return OutcomeDraw
	case c.Mafia == 0:
		return OutcomePeace
	case c.Mafia >= c.Peace:
		return OutcomeMafia
	default:
		return OutcomeOngoing
	}
}

// FinalThreshold reports the three-player endgame (one mafia, two peace) in which
// a day elimination skips the night and the next day starts immediately.
func FinalThreshold(c AliveCounts) bool {
	return c.Total == 3 && c.Mafia == 1 && c.Peace == 2 && c.Neutral == 0
}

// SpecialThresholdBlocks reports the near-endgame ratio that suppresses the
// Banshee and Duke death triggers and Boss intimidation.
func SpecialThresholdBlocks(c AliveCounts) bool {
	return (c.Peace == 2 && c.Mafia == 1) || (c.Peace == 3 && c.Mafia == 2)
}

// BossIntimidationBlocked is the boss-only cutoff, distinct from SpecialThresholdBlocks.
func BossIntimidationBlocked(c AliveCounts) bool {
	return c.Mafia == 1 && c.Peace == 3
}

func (o Outcome) describe() string {
	switch o {
	case OutcomeDraw:
		return "Draw: the Maniac, one mafia and one citizen remain."
	case OutcomeMafia:
		return "Mafia wins! The mafia has taken over the town."
	case OutcomePeace:
		return "Peace wins! All mafia have been eliminated."
	default:
		return ""
	}
}
