package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vntrieu/mafia/internal/games"
)

// AddPlayer handles POST /api/matches/{id}/players.
//
// @Summary      Add player
// @Tags         roster
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Match ID"
// @Param        body  body      nameRequest  true  "Player name"
// @Success      200   {object}  MoveResponse
// @Failure      400   {object}  errorResponse  "Empty or duplicate name"
// @Failure      409   {object}  errorResponse  "Match already started"
// @Security     BearerAuth
// @Router       /api/matches/{id}/players [post]
func (h *MatchHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var body nameRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, games.Move{Action: games.ActionAddPlayer, Name: body.Name})
}

// RemovePlayer handles DELETE /api/matches/{id}/players/{name}.
//
// @Summary      Remove player
// @Tags         roster
// @Produce      json
// @Param        id    path      string  true  "Match ID"
// @Param        name  path      string  true  "Player name"
// @Success      200   {object}  MoveResponse
// @Failure      404   {object}  errorResponse  "Unknown player"
// @Failure      409   {object}  errorResponse  "Match already started"
// @Security     BearerAuth
// @Router       /api/matches/{id}/players/{name} [delete]
func (h *MatchHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, games.Move{Action: games.ActionRemovePlayer, Name: chi.URLParam(r, "name")})
}

// SetRoleCount handles PUT /api/matches/{id}/roles/{role}.
//
// @Summary      Set role count
// @Description  Sets how many seats a role takes; 0 removes the role from the distribution.
// @Tags         roster
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Match ID"
// @Param        role  path      string        true  "Role key"
// @Param        body  body      countRequest  true  "Count"
// @Success      200   {object}  MoveResponse
// @Failure      400   {object}  errorResponse  "Count outside the role's limits"
// @Failure      404   {object}  errorResponse  "Unknown role"
// @Security     BearerAuth
// @Router       /api/matches/{id}/roles/{role} [put]
func (h *MatchHandler) SetRoleCount(w http.ResponseWriter, r *http.Request) {
	var body countRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, games.Move{Action: games.ActionSetRoleCount, Role: chi.URLParam(r, "role"), Count: body.Count})
}

// Start handles POST /api/matches/{id}/start.
//
// @Summary      Start match
// @Description  Validates the distribution against the roster and opens night-zero binding.
// @Tags         roster
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  MoveResponse
// @Failure      400  {object}  errorResponse  "Distribution does not fit the roster"
// @Security     BearerAuth
// @Router       /api/matches/{id}/start [post]
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, games.Move{Action: games.ActionStart})
}

// BindRole handles POST /api/matches/{id}/binding/role.
//
// @Summary      Pick role to bind
// @Tags         binding
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Match ID"
// @Param        body  body      roleRequest  true  "Role key"
// @Success      200   {object}  MoveResponse
// @Security     BearerAuth
// @Router       /api/matches/{id}/binding/role [post]
func (h *MatchHandler) BindRole(w http.ResponseWriter, r *http.Request) {
	var body roleRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, games.Move{Action: games.ActionBindRole, Role: body.Role})
}

// BindPlayer handles POST /api/matches/{id}/binding/player.
//
// @Summary      Bind player to the picked role
// @Tags         binding
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Match ID"
// @Param        body  body      nameRequest  true  "Player name"
// @Success      200   {object}  MoveResponse
// @Security     BearerAuth
// @Router       /api/matches/{id}/binding/player [post]
func (h *MatchHandler) BindPlayer(w http.ResponseWriter, r *http.Request) {
	var body nameRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, games.Move{Action: games.ActionBindPlayer, Name: body.Name})
}

// UndoBind handles POST /api/matches/{id}/binding/undo.
//
// @Summary      Undo last binding step
// @Tags         binding
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  MoveResponse
// @Security     BearerAuth
// @Router       /api/matches/{id}/binding/undo [post]
func (h *MatchHandler) UndoBind(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, games.Move{Action: games.ActionUndoBind})
}

// SelectMayor handles POST /api/matches/{id}/mayor.
//
// @Summary      Select mayor
// @Tags         day
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Match ID"
// @Param        body  body      nameRequest  true  "Player name"
// @Success      200   {object}  MoveResponse
// @Security     BearerAuth
// @Router       /api/matches/{id}/mayor [post]
func (h *MatchHandler) SelectMayor(w http.ResponseWriter, r *http.Request) {
	var body nameRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, games.Move{Action: games.ActionSelectMayor, Name: body.Name})
}

// SelectSuccessor handles POST /api/matches/{id}/successor.
//
// @Summary      Select successor
// @Tags         day
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Match ID"
// @Param        body  body      nameRequest  true  "Player name"
// @Success      200   {object}  MoveResponse
// @Failure      422   {object}  errorResponse  "The mayor cannot be the successor"
// @Security     BearerAuth
// @Router       /api/matches/{id}/successor [post]
func (h *MatchHandler) SelectSuccessor(w http.ResponseWriter, r *http.Request) {
	var body nameRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, games.Move{Action: games.ActionSelectSuccessor, Name: body.Name})
}

// StartDayVote handles POST /api/matches/{id}/day/vote/start.
//
// @Summary      Open the day vote
// @Tags         day
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  MoveResponse
// @Failure      409  {object}  errorResponse  "Day of mourning, or the town already voted"
// @Security     BearerAuth
// @Router       /api/matches/{id}/day/vote/start [post]
func (h *MatchHandler) StartDayVote(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, games.Move{Action: games.ActionStartDayVote})
}

// CastDayVote handles POST /api/matches/{id}/day/vote.
//
// @Summary      Vote a player out
// @Tags         day
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Match ID"
// @Param        body  body      targetRequest  true  "Target"
// @Success      200   {object}  MoveResponse
// @Failure      422   {object}  errorResponse  "Target is dead or protected today"
// @Security     BearerAuth
// @Router       /api/matches/{id}/day/vote [post]
func (h *MatchHandler) CastDayVote(w http.ResponseWriter, r *http.Request) {
	var body targetRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, games.Move{Action: games.ActionCastDayVote, Target: body.Target})
}

// AvengerRevenge handles POST /api/matches/{id}/day/avenger.
//
// @Summary      Avenger's revenge
// @Tags         day
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Match ID"
// @Param        body  body      targetRequest  true  "Target"
// @Success      200   {object}  MoveResponse
// @Security     BearerAuth
// @Router       /api/matches/{id}/day/avenger [post]
func (h *MatchHandler) AvengerRevenge(w http.ResponseWriter, r *http.Request) {
	var body targetRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, games.Move{Action: games.ActionAvengerRevenge, Target: body.Target})
}

// SkipToNight handles POST /api/matches/{id}/night.
//
// @Summary      Nightfall
// @Description  Ends the day and plans the night. Clears the undo history.
// @Tags         night
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  MoveResponse
// @Security     BearerAuth
// @Router       /api/matches/{id}/night [post]
func (h *MatchHandler) SkipToNight(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, games.Move{Action: games.ActionSkipToNight})
}

// NightChoice handles POST /api/matches/{id}/night/choices/{step}.
//
// @Summary      Answer a night step
// @Description  Target steps take a target (empty to pass); consent steps take consent.
// @Tags         night
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Match ID"
// @Param        step  path      string         true  "Night step"
// @Param        body  body      choiceRequest  true  "Choice"
// @Success      200   {object}  MoveResponse
// @Failure      409   {object}  errorResponse  "Step is not the active one"
// @Failure      422   {object}  errorResponse  "Illegal target"
// @Security     BearerAuth
// @Router       /api/matches/{id}/night/choices/{step} [post]
func (h *MatchHandler) NightChoice(w http.ResponseWriter, r *http.Request) {
	var body choiceRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, games.Move{
		Action:  games.ActionNightChoice,
		Step:    chi.URLParam(r, "step"),
		Target:  body.Target,
		Consent: body.Consent,
	})
}

// FinishNight handles POST /api/matches/{id}/night/finish.
//
// @Summary      Resolve the night
// @Tags         night
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  MoveResponse
// @Failure      409  {object}  errorResponse  "Night steps still pending"
// @Security     BearerAuth
// @Router       /api/matches/{id}/night/finish [post]
func (h *MatchHandler) FinishNight(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, games.Move{Action: games.ActionFinishNight})
}

// Undo handles POST /api/matches/{id}/undo.
//
// @Summary      Undo
// @Description  Restores the state before the last undoable action of the current day or night.
// @Tags         matches
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  MoveResponse
// @Failure      400  {object}  errorResponse  "Nothing to undo"
// @Security     BearerAuth
// @Router       /api/matches/{id}/undo [post]
func (h *MatchHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, games.Move{Action: games.ActionUndo})
}

// Reset handles POST /api/matches/{id}/reset.
//
// @Summary      Reset to lobby
// @Description  Keeps the roster and the role distribution; everything else starts over.
// @Tags         matches
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  MoveResponse
// @Security     BearerAuth
// @Router       /api/matches/{id}/reset [post]
func (h *MatchHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, games.Move{Action: games.ActionReset})
}
