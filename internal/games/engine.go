package games

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ApplyMoveResult is returned by ApplyMove: new state, events to broadcast,
// log lines appended by the move, and optional error.
type ApplyMoveResult struct {
	State  *Match
	Events []BroadcastEvent
	NewLog []string
	Error  error
}

// MatchStore keeps live matches. Implemented by store.MemoryStore.
// GetMatch returns an error wrapping ErrNotFound for unknown ids.
type MatchStore interface {
	CreateMatch(ctx context.Context, m *Match) error
	GetMatch(ctx context.Context, id string) (*Match, error)
	SaveMatch(ctx context.Context, m *Match) error
	DeleteMatch(ctx context.Context, id string) error
}

// Archiver records finished or abandoned matches. Implemented by store.ArchiveStore.
type Archiver interface {
	ArchiveMatch(ctx context.Context, m *Match, reason string) error
}

// Archive reasons.
const (
	ArchiveFinished  = "finished"
	ArchiveAbandoned = "abandoned"
)

// Move is one host command. Only the fields the action needs are read.
type Move struct {
	Action  string `json:"action"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Step    string `json:"step,omitempty"`
	Target  string `json:"target,omitempty"`
	Consent *bool  `json:"consent,omitempty"`
}

// Engine applies moves to stored matches. Moves on one match are serialized;
// a failed move leaves the stored match untouched.
type Engine struct {
	store   MatchStore
	archive Archiver
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*matchLock
}

// matchLock serializes moves on one match. The entry lives in Engine.locks
// only while a caller holds or waits for it.
type matchLock struct {
	mu   sync.Mutex
	refs int
}

// NewEngine creates an engine. archive may be nil.
func NewEngine(store MatchStore, archive Archiver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		archive: archive,
		logger:  logger.With("tag", "engine"),
		locks:   make(map[string]*matchLock),
	}
}

func (e *Engine) lock(id string) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &matchLock{}
		e.locks[id] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, id)
		}
		e.mu.Unlock()
	}
}

// Create starts a new match in the lobby.
func (e *Engine) Create(ctx context.Context, hostID int64) (*Match, error) {
	m := NewMatch(uuid.NewString(), hostID)
	if err := e.store.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	e.logger.Info("match created", "match", m.ID, "host", hostID)
	return m.Clone(), nil
}

// GetState returns a copy of the stored match.
func (e *Engine) GetState(ctx context.Context, id string) (*Match, error) {
	unlock := e.lock(id)
	defer unlock()
	m, err := e.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.Clone(), nil
}

// CheckStart reports whether the match could start now.
func (e *Engine) CheckStart(ctx context.Context, id string) error {
	m, err := e.GetState(ctx, id)
	if err != nil {
		return err
	}
	return m.CheckStart()
}

// Targets lists the legal targets for a night step of the current night.
func (e *Engine) Targets(ctx context.Context, id string, step string) ([]string, error) {
	k, err := ParseStep(step)
	if err != nil {
		return nil, err
	}
	m, err := e.GetState(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Stage != StageNight {
		return nil, fmt.Errorf("%w: targets are only available at night", ErrStageMismatch)
	}
	if !m.planned(k) {
		return nil, fmt.Errorf("%w: step %s is not part of night %d", ErrStageMismatch, k, m.Night)
	}
	return TargetsFor(m, k), nil
}

// ApplyMove validates and applies the move on a copy of the match, stores the
// copy on success and archives the match when the move ended it.
func (e *Engine) ApplyMove(ctx context.Context, id string, mv Move) ApplyMoveResult {
	unlock := e.lock(id)
	defer unlock()

	cur, err := e.store.GetMatch(ctx, id)
	if err != nil {
		return ApplyMoveResult{Error: err}
	}
	next := cur.Clone()
	if err := applyMove(next, mv); err != nil {
		e.logger.Debug("move rejected", "match", id, "action", mv.Action, "err", err)
		return ApplyMoveResult{Error: err}
	}

	newLog := next.Log
	if len(next.Log) >= len(cur.Log) {
		newLog = next.Log[len(cur.Log):]
	}
	events := next.DrainEvents()
	if err := e.store.SaveMatch(ctx, next); err != nil {
		return ApplyMoveResult{Error: fmt.Errorf("save match: %w", err)}
	}
	e.logger.Info("move applied", "match", id, "action", mv.Action, "stage", string(next.Stage))

	if next.Finished() && !cur.Finished() {
		e.archiveMatch(ctx, next, ArchiveFinished)
	}
	return ApplyMoveResult{
		State:  next.Clone(),
		Events: events,
		NewLog: append([]string{}, newLog...),
	}
}

// Delete removes a match. A match deleted mid-game is archived as abandoned.
func (e *Engine) Delete(ctx context.Context, id string) error {
	unlock := e.lock(id)
	defer unlock()

	m, err := e.store.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	if m.Started() && !m.Finished() {
		e.archiveMatch(ctx, m, ArchiveAbandoned)
	}
	if err := e.store.DeleteMatch(ctx, id); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	e.logger.Info("match deleted", "match", id)
	return nil
}

func (e *Engine) archiveMatch(ctx context.Context, m *Match, reason string) {
	if e.archive == nil {
		return
	}
	if err := e.archive.ArchiveMatch(ctx, m, reason); err != nil {
		e.logger.Error("archive match failed", "match", m.ID, "reason", reason, "err", err)
		return
	}
	e.logger.Info("match archived", "match", m.ID, "reason", reason, "winner", string(m.Winner))
}

// Started reports whether the match has left the roster stages.
func (s *Match) Started() bool {
	switch s.Stage {
	case StageLobby, StageAddPlayers, StageEditRoles:
		return false
	}
	return true
}

func applyMove(m *Match, mv Move) error {
	switch mv.Action {
	case ActionAddPlayer:
		return m.AddPlayer(mv.Name)
	case ActionRemovePlayer:
		return m.RemovePlayer(mv.Name)
	case ActionSetRoleCount:
		r, err := ParseRole(mv.Role)
		if err != nil {
			return err
		}
		if mv.Count == nil {
			return fmt.Errorf("%w: count is required", ErrValidation)
		}
		return m.SetRoleCount(r, *mv.Count)
	case ActionStart:
		return m.Start()
	case ActionBindRole:
		r, err := ParseRole(mv.Role)
		if err != nil {
			return err
		}
		return m.BindRole(r)
	case ActionBindPlayer:
		return m.BindPlayer(mv.Name)
	case ActionUndoBind:
		return m.UndoBind()
	case ActionSelectMayor:
		return m.SelectMayor(mv.Name)
	case ActionSelectSuccessor:
		return m.SelectSuccessor(mv.Name)
	case ActionStartDayVote:
		return m.StartDayVote()
	case ActionCastDayVote:
		return m.CastDayVote(mv.Target)
	case ActionAvengerRevenge:
		return m.ResolveAvengerRevenge(mv.Target)
	case ActionSkipToNight:
		return m.SkipToNight()
	case ActionNightChoice:
		k, err := ParseStep(mv.Step)
		if err != nil {
			return err
		}
		c := Choice{Target: mv.Target}
		if k.Payload() == PayloadConsent {
			if mv.Consent == nil {
				return fmt.Errorf("%w: consent is required for %s", ErrValidation, k)
			}
			c.Consent = *mv.Consent
		}
		return m.SubmitNightChoice(k, c)
	case ActionFinishNight:
		return m.FinishNight()
	case ActionUndo:
		return m.Undo()
	case ActionReset:
		return m.Reset()
	case "":
		return fmt.Errorf("%w: action is required", ErrValidation)
	}
	return fmt.Errorf("%w: unknown action %q", ErrValidation, mv.Action)
}
