package engine

import (
	"context"
	"database/sql"
	"testing"

	"github.com/laststanding/backend/internal/fpl"
	"github.com/laststanding/backend/internal/models"
	"github.com/laststanding/backend/internal/pot"
)

// fakeStore is an in-memory Store for driving the engine through full
// rounds without a database.
type fakeStore struct {
	compID    int
	active    map[int64]bool // userID -> surviving
	picks     map[int64]*models.Pick
	results   map[int]string
	processed map[int]string // gameweek -> outcome
	winners   []int64
	rollovers int
	resets    int
}

func newFakeStore(userIDs ...int64) *fakeStore {
	f := &fakeStore{
		compID:    1,
		active:    map[int64]bool{},
		picks:     map[int64]*models.Pick{},
		results:   map[int]string{},
		processed: map[int]string{},
	}
	for _, id := range userIDs {
		f.active[id] = true
	}
	return f
}

func (f *fakeStore) addPick(userID int64, gameweek, teamID int) {
	f.picks[userID] = &models.Pick{
		ID:       int(userID) * 100,
		UserID:   userID,
		Gameweek: gameweek,
		TeamID:   sql.NullInt64{Int64: int64(teamID), Valid: true},
	}
}

func (f *fakeStore) ActiveCompetition(chatID int64) (int, error) { return f.compID, nil }

func (f *fakeStore) GameweekProcessed(chatID int64, gw int) (bool, error) {
	_, ok := f.processed[gw]
	return ok, nil
}

func (f *fakeStore) MarkGameweekProcessed(chatID int64, compID, gw int, outcome string) error {
	f.processed[gw] = outcome
	return nil
}

func (f *fakeStore) CurrentSurvivors(chatID int64) ([]models.Survivor, error) {
	var out []models.Survivor
	for id, alive := range f.active {
		if alive {
			out = append(out, models.Survivor{UserID: id})
		}
	}
	return out, nil
}

func (f *fakeStore) UsersWithPicksForRound(chatID int64, gw int) ([]models.Survivor, error) {
	var out []models.Survivor
	for id, p := range f.picks {
		if p.Gameweek == gw && f.active[id] {
			out = append(out, models.Survivor{UserID: id})
		}
	}
	return out, nil
}

func (f *fakeStore) PickForRound(userID, chatID int64, gw int) (*models.Pick, error) {
	p := f.picks[userID]
	if p == nil || p.Gameweek != gw {
		return nil, nil
	}
	return p, nil
}

func (f *fakeStore) SetPickResult(pickID int, result string) error {
	f.results[pickID] = result
	return nil
}

func (f *fakeStore) Eliminate(userID, chatID int64) error {
	f.active[userID] = false
	return nil
}

func (f *fakeStore) AddWinner(userID, chatID int64) error {
	f.winners = append(f.winners, userID)
	return nil
}

func (f *fakeStore) ResetCompetition(chatID int64) (int, error) {
	f.compID++
	f.resets++
	for id := range f.active {
		f.active[id] = true
	}
	return f.compID, nil
}

func (f *fakeStore) IncrementRollover(chatID int64) error { f.rollovers++; return nil }
func (f *fakeStore) ResetRollover(chatID int64) error     { f.rollovers = 0; return nil }

func (f *fakeStore) Pot(chatID int64) (int, int, int, error) {
	n := 0
	for _, alive := range f.active {
		if alive {
			n++
		}
	}
	return pot.Total(f.rollovers, n), n, f.rollovers, nil
}

type fakeFixtures struct{ fixtures []fpl.Fixture }

func (f *fakeFixtures) Fixtures(ctx context.Context, gw int) ([]fpl.Fixture, error) {
	return f.fixtures, nil
}

func score(h, a int) (*int, *int) { return &h, &a }

// gw5 fixtures: team 1 beat team 7, team 12 drew team 13, team 15 lost to team 20.
func gw5Fixtures() []fpl.Fixture {
	f1h, f1a := score(2, 0)
	f2h, f2a := score(1, 1)
	f3h, f3a := score(0, 3)
	return []fpl.Fixture{
		{ID: 41, Event: 5, TeamH: 1, TeamA: 7, TeamHScore: f1h, TeamAScore: f1a, Finished: true},
		{ID: 42, Event: 5, TeamH: 12, TeamA: 13, TeamHScore: f2h, TeamAScore: f2a, Finished: true},
		{ID: 43, Event: 5, TeamH: 15, TeamA: 20, TeamHScore: f3h, TeamAScore: f3a, Finished: true},
	}
}

func TestMissedDeadlineAndAllLoseWipes(t *testing.T) {
	// A has no pick, B picked a drawing team, C picked a losing team:
	// everyone goes, the wipe fires, rollover accumulates.
	st := newFakeStore(1, 2, 3)
	st.addPick(2, 5, 12) // drew
	st.addPick(3, 5, 15) // lost
	e := New(st, &fakeFixtures{gw5Fixtures()})

	out, err := e.ProcessGameweek(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeWipe {
		t.Fatalf("kind = %q, want wipe", out.Kind)
	}
	if len(out.DeadlineMissers) != 1 || out.DeadlineMissers[0].UserID != 1 {
		t.Fatalf("deadline missers = %v, want user 1 only", out.DeadlineMissers)
	}
	if len(out.Eliminated) != 2 {
		t.Fatalf("eliminated = %d, want 2", len(out.Eliminated))
	}
	if st.rollovers != 1 {
		t.Fatalf("rollovers = %d, want 1 after wipe", st.rollovers)
	}
	if st.resets != 1 {
		t.Fatal("wipe must reset the competition")
	}
	if len(st.winners) != 0 {
		t.Fatal("a wipe must not record a winner")
	}
	if st.results[200] != VerdictLost || st.results[300] != VerdictLost {
		t.Fatalf("draw and loss must both record as lost, got %v", st.results)
	}
}

func TestSingleWinner(t *testing.T) {
	// A's team wins, B's loses: B out, A crowned, rollover back to zero.
	st := newFakeStore(1, 2)
	st.rollovers = 2
	st.addPick(1, 5, 1)  // won
	st.addPick(2, 5, 15) // lost
	e := New(st, &fakeFixtures{gw5Fixtures()})

	out, err := e.ProcessGameweek(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeWinner {
		t.Fatalf("kind = %q, want winner", out.Kind)
	}
	if out.Winner == nil || out.Winner.UserID != 1 {
		t.Fatalf("winner = %v, want user 1", out.Winner)
	}
	if len(st.winners) != 1 || st.winners[0] != 1 {
		t.Fatalf("recorded winners = %v", st.winners)
	}
	if st.rollovers != 0 {
		t.Fatalf("rollovers = %d, want 0 after a clean win", st.rollovers)
	}
	if st.resets != 1 {
		t.Fatal("winning must reset the competition")
	}
	// Pot staked by both players at 2 rollovers: 10 each.
	if out.Pot != 20 {
		t.Fatalf("pot = %d, want 20", out.Pot)
	}
}

func TestAllWinContinues(t *testing.T) {
	st := newFakeStore(1, 2)
	st.addPick(1, 5, 1)  // won (home)
	st.addPick(2, 5, 20) // won (away)
	e := New(st, &fakeFixtures{gw5Fixtures()})

	out, err := e.ProcessGameweek(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeContinue {
		t.Fatalf("kind = %q, want continue", out.Kind)
	}
	if len(out.Survivors) != 2 {
		t.Fatalf("survivors = %d, want 2", len(out.Survivors))
	}
	if st.resets != 0 || st.rollovers != 0 || len(st.winners) != 0 {
		t.Fatal("a continuing round must not touch rollover, winners or the competition")
	}
}

func TestVoidPickSurvives(t *testing.T) {
	// Team 9 has no fixture this week: the pick is void and the player
	// survives even though another player is eliminated.
	st := newFakeStore(1, 2)
	st.addPick(1, 5, 9)  // void
	st.addPick(2, 5, 1)  // won
	e := New(st, &fakeFixtures{gw5Fixtures()})

	out, err := e.ProcessGameweek(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeContinue {
		t.Fatalf("kind = %q, want continue", out.Kind)
	}
	if st.results[100] != VerdictVoid {
		t.Fatalf("result = %q, want void", st.results[100])
	}
}

func TestReprocessingIsANoOp(t *testing.T) {
	st := newFakeStore(1, 2)
	st.addPick(1, 5, 1)
	st.addPick(2, 5, 15)
	e := New(st, &fakeFixtures{gw5Fixtures()})

	if _, err := e.ProcessGameweek(context.Background(), -100, 5); err != nil {
		t.Fatal(err)
	}
	out, err := e.ProcessGameweek(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeSkipped {
		t.Fatalf("second run kind = %q, want skipped", out.Kind)
	}
	if len(st.winners) != 1 || st.resets != 1 {
		t.Fatal("second run must not double-record the winner or reset again")
	}
}

func TestRoundWithNoPicksIsSkipped(t *testing.T) {
	// Two active players, zero picks: the group formed after the
	// deadline. Nobody is a deadline-misser and nothing rolls over.
	st := newFakeStore(1, 2)
	e := New(st, &fakeFixtures{gw5Fixtures()})

	out, err := e.ProcessGameweek(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeSkipped {
		t.Fatalf("kind = %q, want skipped", out.Kind)
	}
	if !st.active[1] || !st.active[2] {
		t.Fatal("players must stay active in a round nobody entered")
	}
	if st.rollovers != 0 || st.resets != 0 {
		t.Fatalf("rollovers=%d resets=%d, want 0/0", st.rollovers, st.resets)
	}
	if _, marked := st.processed[5]; marked {
		t.Fatal("a skipped round must not consume the processed marker")
	}
}

func TestEmptyGroupGuard(t *testing.T) {
	st := newFakeStore() // no players
	e := New(st, &fakeFixtures{gw5Fixtures()})

	out, err := e.ProcessGameweek(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeSkipped {
		t.Fatalf("kind = %q, want skipped", out.Kind)
	}
	if _, marked := st.processed[5]; marked {
		t.Fatal("an empty group must not consume the processed marker")
	}
}

func TestAutoRolloverMultipleSurvivors(t *testing.T) {
	st := newFakeStore(1, 2, 3)
	e := New(st, &fakeFixtures{nil})

	out, err := e.AutoRollover(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeRollover {
		t.Fatalf("kind = %q, want rollover", out.Kind)
	}
	if st.rollovers != 1 || st.resets != 1 {
		t.Fatalf("rollovers=%d resets=%d, want 1/1", st.rollovers, st.resets)
	}
}

func TestAutoRolloverCrownsLoneSurvivor(t *testing.T) {
	st := newFakeStore(1, 2)
	st.active[2] = false
	e := New(st, &fakeFixtures{nil})

	out, err := e.AutoRollover(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeWinner || out.Winner == nil || out.Winner.UserID != 1 {
		t.Fatalf("outcome = %+v, want winner user 1", out)
	}
	if st.rollovers != 0 {
		t.Fatal("crowning must reset the rollover")
	}
}

func TestAutoRolloverSkipsProcessedGameweek(t *testing.T) {
	st := newFakeStore(1, 2)
	st.processed[5] = OutcomeContinue
	e := New(st, &fakeFixtures{nil})

	out, err := e.AutoRollover(context.Background(), -100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeSkipped {
		t.Fatalf("kind = %q, want skipped", out.Kind)
	}
	if st.rollovers != 0 || st.resets != 0 {
		t.Fatal("processed gameweek must leave state untouched")
	}
}
