package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vntrieu/mafia/internal/games"
)

// ArchivedMatch is one row of match_archive with its seats.
type ArchivedMatch struct {
	ID         int64            `json:"id"`
	MatchID    string           `json:"match_id"`
	HostID     int64            `json:"host_id"`
	Reason     string           `json:"reason"`
	Winner     string           `json:"winner,omitempty"`
	FinalStage string           `json:"final_stage"`
	Days       int              `json:"days"`
	Nights     int              `json:"nights"`
	RoleCounts map[string]int   `json:"role_counts"`
	Log        []string         `json:"log,omitempty"`
	Players    []ArchivedPlayer `json:"players"`
	CreatedAt  time.Time        `json:"created_at"`
	ArchivedAt time.Time        `json:"archived_at"`
}

// ArchivedPlayer is one seat of an archived match.
type ArchivedPlayer struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Alive bool   `json:"alive"`
	Mayor bool   `json:"mayor,omitempty"`
}

// ArchiveStore writes finished and abandoned matches to PostgreSQL.
// It implements games.Archiver.
type ArchiveStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewArchiveStore creates a new ArchiveStore.
func NewArchiveStore(pool *pgxpool.Pool, logger *slog.Logger) *ArchiveStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveStore{pool: pool, logger: logger.With("tag", "archive")}
}

// ArchiveMatch records the match outcome, its roster and the narrated log in
// one transaction. A match that is reset and played again is archived again
// under a new archive id.
func (s *ArchiveStore) ArchiveMatch(ctx context.Context, m *games.Match, reason string) error {
	counts, err := json.Marshal(m.RoleCounts)
	if err != nil {
		return fmt.Errorf("marshal role counts: %w", err)
	}
	logLines, err := json.Marshal(m.Log)
	if err != nil {
		return fmt.Errorf("marshal log: %w", err)
	}

	var archiveID int64
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO match_archive
				(match_id, host_id, reason, winner, final_stage, days, nights, role_counts, log, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			m.ID, m.HostID, reason, string(m.Winner), string(m.Stage), m.Day, m.Night,
			counts, logLines, m.CreatedAt,
		).Scan(&archiveID)
		if err != nil {
			return fmt.Errorf("insert match_archive: %w", err)
		}

		rows := make([][]interface{}, 0, len(m.Players))
		for i, p := range m.Players {
			role := ""
			if p.Role != games.RoleNone {
				role = p.Role.String()
			}
			rows = append(rows, []interface{}{archiveID, i, p.Name, role, p.Alive, p.Mayor})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"match_archive_players"},
			[]string{"archive_id", "seat", "name", "role", "alive", "mayor"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copy match_archive_players: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("archive match %s: %w", m.ID, err)
	}
	s.logger.Debug("archived", "match", m.ID, "archive_id", archiveID, "players", len(m.Players))
	return nil
}

// ListByHost returns the most recent archived matches of a host, newest first,
// without their logs.
func (s *ArchiveStore) ListByHost(ctx context.Context, hostID int64, limit int) ([]ArchivedMatch, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, match_id::text, host_id, reason, winner, final_stage, days, nights,
		       role_counts, created_at, archived_at
		FROM match_archive
		WHERE host_id = $1
		ORDER BY archived_at DESC, id DESC
		LIMIT $2`, hostID, limit)
	if err != nil {
		return nil, fmt.Errorf("query match_archive: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ArchivedMatch, error) {
		var a ArchivedMatch
		var counts []byte
		if err := row.Scan(&a.ID, &a.MatchID, &a.HostID, &a.Reason, &a.Winner, &a.FinalStage,
			&a.Days, &a.Nights, &counts, &a.CreatedAt, &a.ArchivedAt); err != nil {
			return a, err
		}
		if err := json.Unmarshal(counts, &a.RoleCounts); err != nil {
			return a, fmt.Errorf("decode role counts: %w", err)
		}
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan match_archive: %w", err)
	}
	return out, nil
}

// Get returns one archived match with its seats and full log.
func (s *ArchiveStore) Get(ctx context.Context, archiveID int64) (*ArchivedMatch, error) {
	var a ArchivedMatch
	var counts, logLines []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, match_id::text, host_id, reason, winner, final_stage, days, nights,
		       role_counts, log, created_at, archived_at
		FROM match_archive
		WHERE id = $1`, archiveID,
	).Scan(&a.ID, &a.MatchID, &a.HostID, &a.Reason, &a.Winner, &a.FinalStage,
		&a.Days, &a.Nights, &counts, &logLines, &a.CreatedAt, &a.ArchivedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("archive %d: %w", archiveID, games.ErrNotFound)
		}
		return nil, fmt.Errorf("get match_archive: %w", err)
	}
	if err := json.Unmarshal(counts, &a.RoleCounts); err != nil {
		return nil, fmt.Errorf("decode role counts: %w", err)
	}
	if err := json.Unmarshal(logLines, &a.Log); err != nil {
		return nil, fmt.Errorf("decode log: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT seat, name, role, alive, mayor
		FROM match_archive_players
		WHERE archive_id = $1
		ORDER BY seat`, archiveID)
	if err != nil {
		return nil, fmt.Errorf("query match_archive_players: %w", err)
	}
	a.Players, err = pgx.CollectRows(rows, pgx.RowToStructByPos[ArchivedPlayer])
	if err != nil {
		return nil, fmt.Errorf("scan match_archive_players: %w", err)
	}
	return &a, nil
}
