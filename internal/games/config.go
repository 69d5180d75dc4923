package games

// Stage is a state of the match phase machine.
type Stage string

// Stage names.
const (
	StageLobby           Stage = "lobby"
	StageAddPlayers      Stage = "add_players"
	StageEditRoles       Stage = "edit_roles"
	StageBindRole        Stage = "bind_role"
	StageBindPlayer      Stage = "bind_player"
	StageMayorSelect     Stage = "mayor_select"
	StageSuccessorSelect Stage = "successor_select"
	StageDayMenu         Stage = "day_menu"
	StageDayVote         Stage = "day_vote"
	StageAvengerRevenge  Stage = "avenger_revenge"
	StageNight           Stage = "night"
	StageEnd             Stage = "end"
)

// Action names accepted by the phase machine.
const (
	ActionAddPlayer       = "add_player"
	ActionRemovePlayer    = "remove_player"
	ActionSetRoleCount    = "set_role_count"
	ActionStart           = "start"
	ActionBindRole        = "bind_role"
	ActionBindPlayer      = "bind_player"
	ActionUndoBind        = "undo_bind"
	ActionSelectMayor     = "select_mayor"
	ActionSelectSuccessor = "select_successor"
	ActionStartDayVote    = "start_day_vote"
	ActionCastDayVote     = "cast_day_vote"
	ActionAvengerRevenge  = "avenger_revenge"
	ActionSkipToNight     = "skip_to_night"
	ActionNightChoice     = "night_choice"
	ActionFinishNight     = "finish_night"
	ActionUndo            = "undo"
	ActionReset           = "reset"
)

// StageDef names a stage and the actions allowed in it.
type StageDef struct {
	Name           Stage    `json:"name"`
	AllowedActions []string `json:"allowed_actions"`
}

var rosterActions = []string{ActionAddPlayer, ActionRemovePlayer, ActionSetRoleCount, ActionStart, ActionReset}

// ClassicStages is the transition table of the phase machine.
var ClassicStages = []StageDef{
	{Name: StageLobby, AllowedActions: rosterActions},
	{Name: StageAddPlayers, AllowedActions: rosterActions},
	{Name: StageEditRoles, AllowedActions: rosterActions},
	{Name: StageBindRole, AllowedActions: []string{ActionBindRole, ActionUndoBind, ActionReset}},
	{Name: StageBindPlayer, AllowedActions: []string{ActionBindPlayer, ActionUndoBind, ActionReset}},
	{Name: StageMayorSelect, AllowedActions: []string{ActionSelectMayor, ActionUndoBind, ActionReset}},
	{Name: StageSuccessorSelect, AllowedActions: []string{ActionSelectSuccessor, ActionReset}},
	{Name: StageDayMenu, AllowedActions: []string{ActionStartDayVote, ActionSkipToNight, ActionUndo, ActionReset}},
	{Name: StageDayVote, AllowedActions: []string{ActionCastDayVote, ActionSkipToNight, ActionUndo, ActionReset}},
	{Name: StageAvengerRevenge, AllowedActions: []string{ActionAvengerRevenge, ActionUndo, ActionReset}},
	{Name: StageNight, AllowedActions: []string{ActionNightChoice, ActionFinishNight, ActionUndo, ActionReset}},
	{Name: StageEnd, AllowedActions: []string{ActionReset}},
}

// AllowedActions returns the actions the table permits in stage.
func AllowedActions(stage Stage) []string {
	for _, s := range ClassicStages {
		if s.Name == stage {
			return s.AllowedActions
		}
	}
	return nil
}

func actionAllowed(stage Stage, action string) bool {
	for _, a := range AllowedActions(stage) {
		if a == action {
			return true
		}
	}
	return false
}

// RecentLogSize is how many trailing log lines the view exposes as "recent".
const RecentLogSize = 10
