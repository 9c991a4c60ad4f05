package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/laststanding/backend/internal/engine"
	"github.com/laststanding/backend/internal/models"
)

type fakeOracle struct {
	gameweek int
	deadline time.Time
	finished bool
}

func (f *fakeOracle) CurrentGameweek(ctx context.Context) (int, error) { return f.gameweek, nil }
func (f *fakeOracle) Deadline(ctx context.Context, gw int) (time.Time, error) {
	return f.deadline, nil
}
func (f *fakeOracle) Finished(ctx context.Context, gw int) (bool, error) { return f.finished, nil }

type fakeProcessor struct {
	processed []int64
	rolled    []int64
	outcome   string
}

func (f *fakeProcessor) ProcessGameweek(ctx context.Context, chatID int64, gw int) (*engine.Outcome, error) {
	f.processed = append(f.processed, chatID)
	return &engine.Outcome{ChatID: chatID, Gameweek: gw, Kind: f.outcome}, nil
}

func (f *fakeProcessor) AutoRollover(ctx context.Context, chatID int64, gw int) (*engine.Outcome, error) {
	f.rolled = append(f.rolled, chatID)
	return &engine.Outcome{ChatID: chatID, Gameweek: gw, Kind: f.outcome}, nil
}

type fakeSchedStore struct {
	groups  []models.Group
	missing map[int64][]models.Survivor
}

func (f *fakeSchedStore) AllGroups() ([]models.Group, error) { return f.groups, nil }
func (f *fakeSchedStore) UsersWithoutPicks(chatID int64, gw int) ([]models.Survivor, error) {
	return f.missing[chatID], nil
}

type recordingNotifier struct {
	outcomes  []*engine.Outcome
	reminders []int64
}

func (r *recordingNotifier) NotifyOutcome(out *engine.Outcome) { r.outcomes = append(r.outcomes, out) }
func (r *recordingNotifier) NotifyReminder(chatID int64, gw int, deadline time.Time, missing []models.Survivor) {
	r.reminders = append(r.reminders, chatID)
}

func newTestScheduler(oracle *fakeOracle, proc *fakeProcessor, store *fakeSchedStore, n *recordingNotifier) *Scheduler {
	return New(oracle, proc, store, n, Config{
		ResultsInterval:  time.Hour,
		ReminderInterval: time.Hour,
		RolloverInterval: 24 * time.Hour,
	})
}

func TestResultsRunForEveryGroupWhenFinished(t *testing.T) {
	oracle := &fakeOracle{gameweek: 5, finished: true}
	proc := &fakeProcessor{outcome: engine.OutcomeContinue}
	store := &fakeSchedStore{groups: []models.Group{{ChatID: -1}, {ChatID: -2}}}
	n := &recordingNotifier{}
	s := newTestScheduler(oracle, proc, store, n)

	if err := s.checkResults(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(proc.processed) != 2 {
		t.Fatalf("processed %d groups, want 2", len(proc.processed))
	}
	if len(n.outcomes) != 2 {
		t.Fatalf("notified %d outcomes, want 2", len(n.outcomes))
	}
}

func TestResultsSkipUnfinishedGameweek(t *testing.T) {
	oracle := &fakeOracle{gameweek: 5, finished: false}
	proc := &fakeProcessor{outcome: engine.OutcomeContinue}
	store := &fakeSchedStore{groups: []models.Group{{ChatID: -1}}}
	s := newTestScheduler(oracle, proc, store, &recordingNotifier{})

	if err := s.checkResults(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(proc.processed) != 0 {
		t.Fatal("unfinished gameweek must not be processed")
	}
}

func TestSkippedOutcomesAreNotAnnounced(t *testing.T) {
	oracle := &fakeOracle{gameweek: 5, finished: true}
	proc := &fakeProcessor{outcome: engine.OutcomeSkipped}
	store := &fakeSchedStore{groups: []models.Group{{ChatID: -1}}}
	n := &recordingNotifier{}
	s := newTestScheduler(oracle, proc, store, n)

	if err := s.checkResults(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(n.outcomes) != 0 {
		t.Fatal("skipped outcome must stay silent")
	}
}

func TestReminderFiresOncePerGameweek(t *testing.T) {
	now := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	oracle := &fakeOracle{gameweek: 5, deadline: now.Add(24 * time.Hour)}
	store := &fakeSchedStore{
		groups:  []models.Group{{ChatID: -1}},
		missing: map[int64][]models.Survivor{-1: {{UserID: 9}}},
	}
	n := &recordingNotifier{}
	s := newTestScheduler(oracle, &fakeProcessor{}, store, n)
	s.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if err := s.sendReminders(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if len(n.reminders) != 1 {
		t.Fatalf("sent %d reminders, want 1", len(n.reminders))
	}
}

func TestReminderOutsideWindowIsSilent(t *testing.T) {
	now := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	for _, until := range []time.Duration{2 * time.Hour, 48 * time.Hour} {
		oracle := &fakeOracle{gameweek: 5, deadline: now.Add(until)}
		store := &fakeSchedStore{
			groups:  []models.Group{{ChatID: -1}},
			missing: map[int64][]models.Survivor{-1: {{UserID: 9}}},
		}
		n := &recordingNotifier{}
		s := newTestScheduler(oracle, &fakeProcessor{}, store, n)
		s.now = func() time.Time { return now }

		if err := s.sendReminders(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(n.reminders) != 0 {
			t.Fatalf("deadline in %v: reminder fired outside window", until)
		}
	}
}

func TestReminderSkipsGroupsWithAllPicksIn(t *testing.T) {
	now := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	oracle := &fakeOracle{gameweek: 5, deadline: now.Add(24 * time.Hour)}
	store := &fakeSchedStore{groups: []models.Group{{ChatID: -1}}}
	n := &recordingNotifier{}
	s := newTestScheduler(oracle, &fakeProcessor{}, store, n)
	s.now = func() time.Time { return now }

	if err := s.sendReminders(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(n.reminders) != 0 {
		t.Fatal("no reminder expected when everyone has picked")
	}
}

func TestIntervalGuardBlocksEarlyRerun(t *testing.T) {
	oracle := &fakeOracle{gameweek: 5, finished: true}
	proc := &fakeProcessor{outcome: engine.OutcomeContinue}
	store := &fakeSchedStore{groups: []models.Group{{ChatID: -1}}}
	s := newTestScheduler(oracle, proc, store, &recordingNotifier{})

	base := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	clock := base
	s.now = func() time.Time { return clock }

	s.tick(context.Background())
	clock = base.Add(30 * time.Minute)
	s.tick(context.Background())
	if len(proc.processed) != 1 {
		t.Fatalf("results ran %d times in 30m, want 1", len(proc.processed))
	}

	clock = base.Add(61 * time.Minute)
	s.tick(context.Background())
	if len(proc.processed) != 2 {
		t.Fatalf("results ran %d times after the interval passed, want 2", len(proc.processed))
	}
}

func TestAutoRolloverOnlyOnFinishedGameweek(t *testing.T) {
	oracle := &fakeOracle{gameweek: 5, finished: false}
	proc := &fakeProcessor{outcome: engine.OutcomeRollover}
	store := &fakeSchedStore{groups: []models.Group{{ChatID: -1}}}
	s := newTestScheduler(oracle, proc, store, &recordingNotifier{})

	if err := s.checkAutoRollovers(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(proc.rolled) != 0 {
		t.Fatal("auto-rollover must wait for the gameweek to finish")
	}

	oracle.finished = true
	if err := s.checkAutoRollovers(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(proc.rolled) != 1 {
		t.Fatalf("auto-rollover ran %d times, want 1", len(proc.rolled))
	}
}
