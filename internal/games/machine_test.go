package games

import (
	"reflect"
	"testing"
)

func TestRoster(t *testing.T) {
	m := NewMatch("m1", 1)
	mustNoErr(t, m.AddPlayer("Ann"))
	if m.Stage != StageAddPlayers {
		t.Fatalf("expected add_players, got %s", m.Stage)
	}
	wantErr(t, m.AddPlayer("Ann"), ErrValidation)
	wantErr(t, m.AddPlayer("  "), ErrValidation)
	wantErr(t, m.RemovePlayer("Bob"), ErrNotFound)
	mustNoErr(t, m.RemovePlayer("Ann"))
	if len(m.Players) != 0 {
		t.Fatalf("expected empty roster, got %v", m.Players)
	}

	mustNoErr(t, m.SetRoleCount(RoleManiac, 1))
	if m.Stage != StageEditRoles || m.RoleCounts[RoleManiac] != 1 {
		t.Fatalf("unexpected state %s %v", m.Stage, m.RoleCounts)
	}
	mustNoErr(t, m.SetRoleCount(RoleManiac, 0))
	if _, ok := m.RoleCounts[RoleManiac]; ok {
		t.Error("zero count should remove the role")
	}
	wantErr(t, m.SetRoleCount(RoleCivilian, -1), ErrValidation)
	wantErr(t, m.SetRoleCount(RoleSeer, 2), ErrValidation)
	wantErr(t, m.SetRoleCount(RoleRatMafia, 1), ErrValidation)
	wantErr(t, m.Start(), ErrValidation)
}

func TestStartRequiresValidDistribution(t *testing.T) {
	m := NewMatch("m1", 1)
	for _, s := range sixSeats() {
		mustNoErr(t, m.AddPlayer(s.name))
	}
	if err := m.CheckStart(); err == nil {
		t.Fatal("default distribution needs ten players")
	}
	mustNoErr(t, m.SetRoleCount(RoleMafia, 1))
	mustNoErr(t, m.SetRoleCount(RoleCommissioner, 0))
	mustNoErr(t, m.SetRoleCount(RoleCivilian, 2))
	mustNoErr(t, m.CheckStart())
	mustNoErr(t, m.Start())
	if m.Stage != StageBindRole || m.Night != 0 || m.Day != 0 {
		t.Fatalf("unexpected state after start: %s day %d night %d", m.Stage, m.Day, m.Night)
	}
	if len(m.Binding.Pool) != 6 {
		t.Errorf("expected every player in the pool, got %v", m.Binding.Pool)
	}
}

func TestBindingUndoRestoresPool(t *testing.T) {
	m := NewMatch("m1", 1)
	for _, n := range []string{"A", "B", "C", "D"} {
		mustNoErr(t, m.AddPlayer(n))
	}
	m.RoleCounts = RoleCounts{RoleBoss: 1, RoleDoctor: 1, RoleCourtesan: 1, RoleMafia: 1}
	mustNoErr(t, m.Start())
	before := m.Binding.clone()

	assign := []seat{{"C", RoleMafia}, {"A", RoleDoctor}, {"D", RoleBoss}, {"B", RoleCourtesan}}
	for _, a := range assign {
		mustNoErr(t, m.BindRole(a.role))
		mustNoErr(t, m.BindPlayer(a.name))
	}
	if m.Stage != StageMayorSelect {
		t.Fatalf("expected mayor_select after last bind, got %s", m.Stage)
	}
	for i := 0; i < 4; i++ {
		mustNoErr(t, m.UndoBind())
	}
	wantErr(t, m.UndoBind(), ErrValidation)

	if !reflect.DeepEqual(m.Binding.Pool, before.Pool) {
		t.Errorf("pool %v, want %v", m.Binding.Pool, before.Pool)
	}
	if !reflect.DeepEqual(m.Binding.Remaining, before.Remaining) {
		t.Errorf("remaining %v, want %v", m.Binding.Remaining, before.Remaining)
	}
	if len(m.Binding.History) != 0 || m.Binding.Pending != RoleNone {
		t.Errorf("binding history not cleared: %+v", m.Binding)
	}
	for _, p := range m.Players {
		if p.Role != RoleNone {
			t.Errorf("%s still has role %s", p.Name, p.Role)
		}
	}
	if m.Stage != StageBindRole {
		t.Errorf("expected bind_role, got %s", m.Stage)
	}
}

func TestBindingRejectsExhaustedRoleAndBoundPlayer(t *testing.T) {
	m := NewMatch("m1", 1)
	for _, n := range []string{"A", "B", "C", "D"} {
		mustNoErr(t, m.AddPlayer(n))
	}
	m.RoleCounts = RoleCounts{RoleBoss: 1, RoleDoctor: 1, RoleCourtesan: 1, RoleMafia: 1}
	mustNoErr(t, m.Start())
	mustNoErr(t, m.BindRole(RoleBoss))
	mustNoErr(t, m.BindPlayer("A"))
	wantErr(t, m.BindRole(RoleBoss), ErrValidation)
	mustNoErr(t, m.BindRole(RoleMafia))
	wantErr(t, m.BindPlayer("A"), ErrIllegalTarget)
	wantErr(t, m.SelectMayor("A"), ErrStageMismatch)
}

func TestMayorAndSuccessorSelection(t *testing.T) {
	m := startMatch(t, sixSeats()...)
	if m.Stage != StageDayMenu || m.Day != 1 {
		t.Fatalf("expected day 1 menu, got %s day %d", m.Stage, m.Day)
	}
	if m.MayorName() != "Ann" || m.SuccessorName() != "Bob" {
		t.Errorf("mayor %q successor %q", m.MayorName(), m.SuccessorName())
	}
}

func TestMayorVotedOutPassesTitleAndUndoRestores(t *testing.T) {
	m := startMatch(t, sixSeats()...)
	mustNoErr(t, m.StartDayVote())
	mustNoErr(t, m.CastDayVote("Ann"))

	bob, _ := m.Player("Bob")
	if !bob.Mayor || bob.Successor {
		t.Fatalf("expected Bob to become mayor, got %+v", bob)
	}
	if !m.protectedOn("Bob", 1) {
		t.Error("new mayor must be protected on the current day")
	}
	if m.Stage != StageDayMenu || m.VotedDay != 1 {
		t.Fatalf("expected day menu after vote, got %s voted %d", m.Stage, m.VotedDay)
	}
	wantErr(t, m.StartDayVote(), ErrStageMismatch)

	logLen := len(m.Log)
	mustNoErr(t, m.Undo())
	ann, _ := m.Player("Ann")
	bob, _ = m.Player("Bob")
	if !ann.Alive || !ann.Mayor || bob.Mayor || !bob.Successor {
		t.Fatalf("undo did not restore the mayor: ann=%+v bob=%+v", ann, bob)
	}
	if m.protectedOn("Bob", 1) {
		t.Error("undo must clear the protection")
	}
	if len(m.Log) != logLen+1 || !logContains(m, "undid") {
		t.Error("undo should append to the log and keep earlier lines")
	}
	if m.CanUndo() {
		t.Error("no further snapshot expected")
	}
	mustNoErr(t, m.StartDayVote())
}

func TestFinalThresholdSkipsNight(t *testing.T) {
	m := forceMatch(
		seat{"Boris", RoleBoss}, seat{"Doc", RoleDoctor},
		seat{"Ann", RoleCivilian}, seat{"Bob", RoleCivilian},
	)
	mustNoErr(t, m.StartDayVote())
	mustNoErr(t, m.CastDayVote("Ann"))
	if m.Stage != StageDayMenu || m.Day != 2 || m.Night != 0 {
		t.Fatalf("expected day 2 without a night, got %s day %d night %d", m.Stage, m.Day, m.Night)
	}
	if !logContains(m, "night is skipped") {
		t.Errorf("missing threshold log line: %v", m.Log)
	}
	mustNoErr(t, m.StartDayVote())
	mustNoErr(t, m.CastDayVote("Boris"))
	if m.Stage != StageEnd || m.Winner != OutcomePeace {
		t.Fatalf("expected peace win, got %s %q", m.Stage, m.Winner)
	}
}

func TestVoteRejectsProtectedAndDead(t *testing.T) {
	m := startMatch(t, sixSeats()...)
	m.protect("Doc", 1)
	mustNoErr(t, m.StartDayVote())
	wantErr(t, m.CastDayVote("Doc"), ErrIllegalTarget)
	wantErr(t, m.CastDayVote("Nobody"), ErrNotFound)
	mustNoErr(t, m.CastDayVote("Max"))
	mustNoErr(t, m.SkipToNight())
	if m.Stage != StageNight || m.Night != 1 {
		t.Fatalf("expected night 1, got %s %d", m.Stage, m.Night)
	}
}

func TestNightFlow(t *testing.T) {
	m := startMatch(t, sixSeats()...)
	mustNoErr(t, m.SkipToNight())
	want := []StepKind{StepMafiaKill, StepBossIntimidate, StepDoctorHeal, StepCourtesanVisit}
	if !reflect.DeepEqual(m.Plan, want) {
		t.Fatalf("plan %v, want %v", m.Plan, want)
	}

	wantErr(t, m.SubmitNightChoice(StepDoctorHeal, Choice{Target: "Bob"}), ErrStageMismatch)
	wantErr(t, m.FinishNight(), ErrStageMismatch)
	wantErr(t, m.AddPlayer("Zed"), ErrStageMismatch)
	wantErr(t, m.SubmitNightChoice(StepMafiaKill, Choice{Target: "Ghost"}), ErrNotFound)

	mustNoErr(t, m.SubmitNightChoice(StepMafiaKill, Choice{Target: "Ann"}))
	wantErr(t, m.SubmitNightChoice(StepBossIntimidate, Choice{Target: "Boris"}), ErrIllegalTarget)
	mustNoErr(t, m.SubmitNightChoice(StepBossIntimidate, Choice{}))
	mustNoErr(t, m.SubmitNightChoice(StepDoctorHeal, Choice{Target: "Bob"}))
	mustNoErr(t, m.SubmitNightChoice(StepCourtesanVisit, Choice{Target: "Boris"}))
	if _, ok := m.ActiveStep(); ok {
		t.Fatal("every step should be answered")
	}
	wantErr(t, m.SubmitNightChoice(StepCourtesanVisit, Choice{Target: "Doc"}), ErrStageMismatch)

	mustNoErr(t, m.FinishNight())
	if m.isAlive("Ann") {
		t.Error("Ann should be dead")
	}
	if m.Stage != StageDayMenu || m.Day != 2 {
		t.Fatalf("expected day 2 menu, got %s day %d", m.Stage, m.Day)
	}
	if m.MayorName() != "Bob" || !m.protectedOn("Bob", 2) {
		t.Errorf("successor should take over with protection, mayor=%q", m.MayorName())
	}
	if m.LastTargets[StepDoctorHeal] != "Bob" || m.LastTargets[StepCourtesanVisit] != "Boris" {
		t.Errorf("unexpected memo %v", m.LastTargets)
	}
	if m.CanUndo() {
		t.Error("finishing the night must not leave undo snapshots")
	}

	var died, resolved bool
	for _, ev := range m.DrainEvents() {
		switch ev.Event {
		case EventPlayerDied:
			died = ev.Payload["name"] == "Ann"
		case EventNightResolved:
			resolved = true
		}
	}
	if !died || !resolved {
		t.Error("expected player_died and night_resolved events")
	}

	mustNoErr(t, m.SkipToNight())
	targets := TargetsFor(m, StepDoctorHeal)
	for _, n := range targets {
		if n == "Bob" || n == "Ann" {
			t.Errorf("doctor targets should exclude last night's patient and the dead: %v", targets)
		}
	}
	if !contains(targets, "Doc") {
		t.Errorf("doctor may heal themselves: %v", targets)
	}
}

func TestIntimidationUndo(t *testing.T) {
	m := startMatch(t, sixSeats()...)
	mustNoErr(t, m.SkipToNight())
	mustNoErr(t, m.SubmitNightChoice(StepMafiaKill, Choice{Target: "Ann"}))
	mustNoErr(t, m.SubmitNightChoice(StepBossIntimidate, Choice{Target: "Doc"}))
	if !m.protectedOn("Doc", 2) {
		t.Fatal("intimidation protects immediately for the next day")
	}
	mustNoErr(t, m.Undo())
	if m.protectedOn("Doc", 2) {
		t.Error("undo must roll back the intimidation")
	}
	if m.Cursor != 1 {
		t.Errorf("cursor %d, want 1", m.Cursor)
	}
	if _, ok := m.Choices[StepBossIntimidate]; ok {
		t.Error("undone choice still recorded")
	}
	mustNoErr(t, m.Undo())
	if m.Cursor != 0 || len(m.Choices) != 0 {
		t.Errorf("expected a fresh night, cursor %d choices %v", m.Cursor, m.Choices)
	}
	wantErr(t, m.Undo(), ErrValidation)
}

func TestBossIntimidationSurvivesIntoDay(t *testing.T) {
	m := startMatch(t, sixSeats()...)
	mustNoErr(t, m.SkipToNight())
	mustNoErr(t, m.SubmitNightChoice(StepMafiaKill, Choice{}))
	mustNoErr(t, m.SubmitNightChoice(StepBossIntimidate, Choice{Target: "Doc"}))
	mustNoErr(t, m.SubmitNightChoice(StepDoctorHeal, Choice{}))
	mustNoErr(t, m.SubmitNightChoice(StepCourtesanVisit, Choice{}))
	mustNoErr(t, m.FinishNight())
	mustNoErr(t, m.StartDayVote())
	wantErr(t, m.CastDayVote("Doc"), ErrIllegalTarget)
}

func TestBansheeSkipsNight(t *testing.T) {
	m := forceMatch(
		seat{"Boris", RoleBoss}, seat{"Max", RoleMafia}, seat{"Ban", RoleBanshee},
		seat{"Doc", RoleDoctor}, seat{"Ann", RoleCivilian}, seat{"Bob", RoleCivilian},
		seat{"Cid", RoleCivilian},
	)
	mustNoErr(t, m.StartDayVote())
	mustNoErr(t, m.CastDayVote("Ban"))
	if m.Day != 2 || m.Night != 0 || m.Stage != StageDayMenu {
		t.Fatalf("expected night skipped, got %s day %d night %d", m.Stage, m.Day, m.Night)
	}
}

func TestBansheeBlockedByThreshold(t *testing.T) {
	m := forceMatch(
		seat{"Boris", RoleBoss}, seat{"Max", RoleMafia}, seat{"Ban", RoleBanshee},
		seat{"Doc", RoleDoctor}, seat{"Ann", RoleCivilian}, seat{"Bob", RoleCivilian},
	)
	mustNoErr(t, m.StartDayVote())
	mustNoErr(t, m.CastDayVote("Ban"))
	if m.Day != 1 || m.Stage != StageDayMenu {
		t.Fatalf("threshold should suppress the banshee, got %s day %d", m.Stage, m.Day)
	}
	mustNoErr(t, m.SkipToNight())
}

func TestDukeDeathMourning(t *testing.T) {
	m := atNight(forceMatch(
		seat{"Boris", RoleBoss}, seat{"Max", RoleMafia}, seat{"Duke", RoleDuke},
		seat{"Doc", RoleDoctor}, seat{"Cora", RoleCourtesan}, seat{"Ann", RoleCivilian},
		seat{"Bob", RoleCivilian},
	), NightChoices{StepMafiaKill: {Target: "Duke"}})
	mustNoErr(t, m.FinishNight())
	if m.MourningDay != 2 {
		t.Fatalf("expected mourning on day 2, got %d", m.MourningDay)
	}
	wantErr(t, m.StartDayVote(), ErrStageMismatch)
	if v := m.View(false); !v.MourningToday {
		t.Error("view should flag the mourning day")
	}
	mustNoErr(t, m.SkipToNight())
}

func TestDukeMourningBlockedByThreshold(t *testing.T) {
	m := atNight(forceMatch(
		seat{"Boris", RoleBoss}, seat{"Max", RoleMafia}, seat{"Duke", RoleDuke},
		seat{"Doc", RoleDoctor}, seat{"Ann", RoleCivilian}, seat{"Bob", RoleCivilian},
	), NightChoices{StepMafiaKill: {Target: "Duke"}})
	mustNoErr(t, m.FinishNight())
	if c := m.AliveCounts(); c.Mafia != 2 || c.Peace != 3 {
		t.Fatalf("unexpected alive counts %+v", c)
	}
	if m.MourningDay != 0 || m.Stage != StageDayMenu || m.Day != 2 {
		t.Fatalf("threshold should suppress mourning, got mourning=%d %s day %d", m.MourningDay, m.Stage, m.Day)
	}
	mustNoErr(t, m.StartDayVote())
}

func TestAvengerRevenge(t *testing.T) {
	m := forceMatch(
		seat{"Boris", RoleBoss}, seat{"Max", RoleMafia}, seat{"Ave", RoleAvenger},
		seat{"Doc", RoleDoctor}, seat{"Cora", RoleCourtesan}, seat{"Ann", RoleCivilian},
		seat{"Bob", RoleCivilian},
	)
	mustNoErr(t, m.StartDayVote())
	mustNoErr(t, m.CastDayVote("Ave"))
	if m.Stage != StageAvengerRevenge || m.PendingAvenger != "Ave" {
		t.Fatalf("expected revenge stage, got %s", m.Stage)
	}
	wantErr(t, m.ResolveAvengerRevenge("Ave"), ErrIllegalTarget)
	wantErr(t, m.SkipToNight(), ErrStageMismatch)
	mustNoErr(t, m.ResolveAvengerRevenge("Max"))
	if m.isAlive("Max") || m.PendingAvenger != "" || m.Stage != StageDayMenu {
		t.Fatalf("revenge not applied: stage %s", m.Stage)
	}
}

func TestAvengerRevengeCanEndGame(t *testing.T) {
	m := forceMatch(
		seat{"Boris", RoleBoss}, seat{"Ave", RoleAvenger},
		seat{"Doc", RoleDoctor}, seat{"Ann", RoleCivilian}, seat{"Bob", RoleCivilian},
	)
	mustNoErr(t, m.StartDayVote())
	mustNoErr(t, m.CastDayVote("Ave"))
	mustNoErr(t, m.ResolveAvengerRevenge("Boris"))
	if m.Stage != StageEnd || m.Winner != OutcomePeace {
		t.Fatalf("expected peace win, got %s %q", m.Stage, m.Winner)
	}
}

func TestRatJoinsMafia(t *testing.T) {
	m := atNight(forceMatch(
		seat{"Boris", RoleBoss}, seat{"Rat", RoleRat}, seat{"Doc", RoleDoctor},
		seat{"Cora", RoleCourtesan}, seat{"Ann", RoleCivilian}, seat{"Bob", RoleCivilian},
	), NightChoices{
		StepRatWants:      {Consent: true},
		StepMafiaWantsRat: {Consent: true},
	})
	if !m.planned(StepRatWants) {
		t.Fatalf("rat steps expected in plan %v", m.Plan)
	}
	mustNoErr(t, m.FinishNight())
	rat, _ := m.Player("Rat")
	if rat.Role != RoleRatMafia {
		t.Fatalf("expected rat to turn, got %s", rat.Role)
	}
	if c := m.AliveCounts(); c.Mafia != 2 {
		t.Errorf("expected two mafia alive, got %+v", c)
	}
}

func TestRatDealNeedsBothSides(t *testing.T) {
	m := atNight(forceMatch(
		seat{"Boris", RoleBoss}, seat{"Rat", RoleRat}, seat{"Doc", RoleDoctor},
		seat{"Cora", RoleCourtesan}, seat{"Ann", RoleCivilian}, seat{"Bob", RoleCivilian},
	), NightChoices{
		StepRatWants:      {Consent: true},
		StepMafiaWantsRat: {Consent: false},
	})
	mustNoErr(t, m.FinishNight())
	if rat, _ := m.Player("Rat"); rat.Role != RoleRat {
		t.Fatalf("rat should stay peace, got %s", rat.Role)
	}
}

func TestBuildPlanOrder(t *testing.T) {
	m := forceMatch(
		seat{"Boris", RoleBoss}, seat{"Mani", RoleManiac}, seat{"Comm", RoleCommissioner},
		seat{"Monk", RoleMonk}, seat{"Doc", RoleDoctor}, seat{"Cora", RoleCourtesan},
		seat{"Seer", RoleSeer}, seat{"Rat", RoleRat},
	)
	want := []StepKind{
		StepMafiaKill, StepBossIntimidate, StepManiacKill, StepCommissionerCheck,
		StepMonkFirst, StepMonkSecond, StepDoctorHeal, StepCourtesanVisit,
		StepSeerDivine, StepRatWants, StepMafiaWantsRat,
	}
	if got := BuildPlan(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("plan %v, want %v", got, want)
	}

	small := forceMatch(
		seat{"Boris", RoleBoss}, seat{"Doc", RoleDoctor},
		seat{"Cora", RoleCourtesan}, seat{"Ann", RoleCivilian},
	)
	for _, k := range BuildPlan(small) {
		if k == StepBossIntimidate {
			t.Error("boss intimidation is blocked at one mafia against three peace")
		}
	}
}

func TestTargetsFor(t *testing.T) {
	m := forceMatch(
		seat{"Boris", RoleBoss}, seat{"Comm", RoleCommissioner}, seat{"Monk", RoleMonk},
		seat{"Doc", RoleDoctor}, seat{"Cora", RoleCourtesan}, seat{"Ann", RoleCivilian},
	)
	m.Choices = NightChoices{StepMonkFirst: {Target: "Ann"}}
	if ts := TargetsFor(m, StepCommissionerCheck); contains(ts, "Comm") {
		t.Errorf("commissioner cannot check themselves: %v", ts)
	}
	if ts := TargetsFor(m, StepMonkSecond); contains(ts, "Ann") {
		t.Errorf("monk second pick must differ from the first: %v", ts)
	}
	if ts := TargetsFor(m, StepMafiaKill); !contains(ts, "Boris") {
		t.Errorf("mafia may target anyone alive: %v", ts)
	}
	m.LastTargets = map[StepKind]string{StepCourtesanVisit: "Ann"}
	if ts := TargetsFor(m, StepCourtesanVisit); contains(ts, "Ann") || contains(ts, "Cora") {
		t.Errorf("courtesan targets %v", ts)
	}
	if ts := TargetsFor(m, StepRatWants); ts != nil {
		t.Errorf("consent steps have no targets: %v", ts)
	}
}

func TestMayorDiesAtNightWithSuccessor(t *testing.T) {
	m := startMatch(t, sixSeats()...)
	mustNoErr(t, m.SkipToNight())
	m.Choices = NightChoices{StepMafiaKill: {Target: "Ann"}, StepCourtesanVisit: {Target: "Bob"}}
	m.Cursor = len(m.Plan)
	mustNoErr(t, m.FinishNight())
	if m.MayorName() != "Bob" {
		t.Fatalf("expected Bob to inherit, got %q", m.MayorName())
	}

	m2 := startMatch(t, sixSeats()...)
	mustNoErr(t, m2.SkipToNight())
	m2.Choices = NightChoices{StepMafiaKill: {Target: "Cora"}, StepCourtesanVisit: {Target: "Bob"}}
	m2.Cursor = len(m2.Plan)
	mustNoErr(t, m2.FinishNight())
	if m2.isAlive("Bob") || m2.isAlive("Cora") {
		t.Fatal("courtesan and client should both die")
	}
	if m2.MayorName() != "Ann" {
		t.Errorf("mayor unchanged, got %q", m2.MayorName())
	}
	if m2.SuccessorName() != "" {
		t.Error("dead successor keeps no flag")
	}
}

func TestMafiaWinsAtNight(t *testing.T) {
	m := atNight(forceMatch(
		seat{"Boris", RoleBoss}, seat{"Max", RoleMafia}, seat{"Doc", RoleDoctor},
		seat{"Cora", RoleCourtesan}, seat{"Ann", RoleCivilian},
	), NightChoices{StepMafiaKill: {Target: "Ann"}})
	mustNoErr(t, m.FinishNight())
	if m.Stage != StageEnd || m.Winner != OutcomeMafia {
		t.Fatalf("expected mafia win, got %s %q", m.Stage, m.Winner)
	}
	wantErr(t, m.SkipToNight(), ErrStageMismatch)
	mustNoErr(t, m.Reset())
	if m.Stage != StageAddPlayers || len(m.Players) != 5 || m.Winner != OutcomeOngoing {
		t.Fatalf("reset should keep the roster: %s %d %q", m.Stage, len(m.Players), m.Winner)
	}
	for _, p := range m.Players {
		if !p.Alive || p.Role != RoleNone {
			t.Errorf("player not reset: %+v", p)
		}
	}
}

func TestViewHidesUnboundRolesAndShowsStep(t *testing.T) {
	m := NewMatch("m1", 1)
	mustNoErr(t, m.AddPlayer("Ann"))
	v := m.View(false)
	if v.Players[0].Role != "" {
		t.Error("unbound role should be empty")
	}
	if v.RoleCounts["boss"] != 1 || v.Log != nil {
		t.Errorf("unexpected view %+v", v)
	}

	n := startMatch(t, sixSeats()...)
	mustNoErr(t, n.SkipToNight())
	v = n.View(true)
	if v.ActiveStep == nil || v.ActiveStep.Step != StepMafiaKill || len(v.ActiveStep.Targets) != 6 {
		t.Fatalf("unexpected active step %+v", v.ActiveStep)
	}
	if len(v.RecentLog) > RecentLogSize || len(v.Log) != len(n.Log) {
		t.Errorf("recent %d full %d", len(v.RecentLog), len(v.Log))
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
