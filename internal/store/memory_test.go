package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vntrieu/mafia/internal/games"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	m := games.NewMatch("m1", 7)
	if err := s.CreateMatch(ctx, m); err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	if err := s.CreateMatch(ctx, m); !errors.Is(err, games.ErrValidation) {
		t.Fatalf("duplicate create: got %v", err)
	}

	got, err := s.GetMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if got.HostID != 7 || got.Stage != games.StageLobby {
		t.Errorf("unexpected match %+v", got)
	}

	if err := got.AddPlayer("Ann"); err != nil {
		t.Fatal(err)
	}
	again, _ := s.GetMatch(ctx, "m1")
	if len(again.Players) != 0 {
		t.Fatal("mutating a fetched match must not change the stored one")
	}

	if err := s.SaveMatch(ctx, got); err != nil {
		t.Fatalf("SaveMatch: %v", err)
	}
	again, _ = s.GetMatch(ctx, "m1")
	if len(again.Players) != 1 {
		t.Fatalf("save not visible: %+v", again.Players)
	}

	if err := s.DeleteMatch(ctx, "m1"); err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}
	if _, err := s.GetMatch(ctx, "m1"); !errors.Is(err, games.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := s.SaveMatch(ctx, got); !errors.Is(err, games.ErrNotFound) {
		t.Fatalf("save after delete: got %v", err)
	}
	if err := s.DeleteMatch(ctx, "m1"); !errors.Is(err, games.ErrNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
}

func TestMemoryStore_ListMatches(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		m := games.NewMatch(id, 1)
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.CreateMatch(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.CreateMatch(ctx, games.NewMatch("other", 2)); err != nil {
		t.Fatal(err)
	}

	ids, err := s.ListMatches(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a", "b"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.CreateMatch(ctx, games.NewMatch("m1", 1)); err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := s.GetMatch(ctx, "m1")
			if err != nil {
				t.Error(err)
				return
			}
			if err := s.SaveMatch(ctx, m); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}

func TestMemoryStore_WithEngine(t *testing.T) {
	ctx := context.Background()
	e := games.NewEngine(NewMemoryStore(), nil, nil)
	m, err := e.Create(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	res := e.ApplyMove(ctx, m.ID, games.Move{Action: games.ActionAddPlayer, Name: "Ann"})
	if res.Error != nil {
		t.Fatal(res.Error)
	}
	res = e.ApplyMove(ctx, m.ID, games.Move{Action: games.ActionRemovePlayer, Name: "Nobody"})
	if !errors.Is(res.Error, games.ErrNotFound) {
		t.Fatalf("expected not found, got %v", res.Error)
	}
	state, err := e.GetState(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Players) != 1 || state.Stage != games.StageAddPlayers {
		t.Errorf("unexpected state %+v", state)
	}
}
