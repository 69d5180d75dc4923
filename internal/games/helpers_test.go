package games

import (
	"errors"
	"strings"
	"testing"
)

type seat struct {
	name string
	role Role
}

// startMatch runs a match through the setup stages: roster, distribution,
// binding, mayor (first seat) and successor (second seat). It returns the
// match on day 1.
func startMatch(t *testing.T, seats ...seat) *Match {
	t.Helper()
	m := NewMatch("m1", 1)
	counts := RoleCounts{}
	for _, s := range seats {
		if err := m.AddPlayer(s.name); err != nil {
			t.Fatalf("add %s: %v", s.name, err)
		}
		counts[s.role]++
	}
	m.RoleCounts = counts
	if err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, s := range seats {
		if err := m.BindRole(s.role); err != nil {
			t.Fatalf("bind role %s: %v", s.role, err)
		}
		if err := m.BindPlayer(s.name); err != nil {
			t.Fatalf("bind player %s: %v", s.name, err)
		}
	}
	if err := m.SelectMayor(seats[0].name); err != nil {
		t.Fatalf("select mayor: %v", err)
	}
	if err := m.SelectSuccessor(seats[1].name); err != nil {
		t.Fatalf("select successor: %v", err)
	}
	return m
}

// forceMatch builds a day-1 match directly, skipping distribution checks.
func forceMatch(seats ...seat) *Match {
	m := NewMatch("m1", 1)
	m.RoleCounts = RoleCounts{}
	for _, s := range seats {
		m.Players = append(m.Players, Player{Name: s.name, Role: s.role, Alive: true})
		m.RoleCounts[s.role]++
	}
	m.Stage = StageDayMenu
	m.Day = 1
	return m
}

// atNight puts m into a fully answered night with the given choices.
func atNight(m *Match, choices NightChoices) *Match {
	m.Stage = StageNight
	m.Night++
	m.Plan = BuildPlan(m)
	m.Choices = choices
	m.Cursor = len(m.Plan)
	return m
}

func sixSeats() []seat {
	return []seat{
		{"Ann", RoleCivilian},
		{"Bob", RoleCivilian},
		{"Boris", RoleBoss},
		{"Max", RoleMafia},
		{"Doc", RoleDoctor},
		{"Cora", RoleCourtesan},
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func wantErr(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func logContains(m *Match, substr string) bool {
	for _, line := range m.Log {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, x := range a {
		seen[x]++
	}
	for _, x := range b {
		seen[x]--
		if seen[x] < 0 {
			return false
		}
	}
	return true
}
