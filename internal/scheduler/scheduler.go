// Package scheduler runs the background cadence: hourly results and
// reminders, a daily rollover safety net, and keep-alive pings for
// platforms that sleep idle services. One loop owns every task so
// nothing overlaps.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/laststanding/backend/internal/engine"
	"github.com/laststanding/backend/internal/models"
)

// Oracle is the slice of the fixture client the scheduler needs.
type Oracle interface {
	CurrentGameweek(ctx context.Context) (int, error)
	Deadline(ctx context.Context, gameweek int) (time.Time, error)
	Finished(ctx context.Context, gameweek int) (bool, error)
}

// Processor runs survival decisions for a group.
type Processor interface {
	ProcessGameweek(ctx context.Context, chatID int64, gameweek int) (*engine.Outcome, error)
	AutoRollover(ctx context.Context, chatID int64, gameweek int) (*engine.Outcome, error)
}

// Store is the slice of the competition store the scheduler needs.
type Store interface {
	AllGroups() ([]models.Group, error)
	UsersWithoutPicks(chatID int64, gameweek int) ([]models.Survivor, error)
}

// Notifier renders scheduler events into the chat. Implemented by the
// Telegram layer; a no-op implementation is fine for tests.
type Notifier interface {
	NotifyOutcome(out *engine.Outcome)
	NotifyReminder(chatID int64, gameweek int, deadline time.Time, missing []models.Survivor)
}

// Config holds the task cadence.
type Config struct {
	ResultsInterval  time.Duration
	ReminderInterval time.Duration
	RolloverInterval time.Duration
	KeepAlive        time.Duration
	Port             string // keep-alive target; empty disables the task
}

// Scheduler drives all periodic work from a single loop.
type Scheduler struct {
	oracle   Oracle
	engine   Processor
	store    Store
	notifier Notifier
	cfg      Config

	lastRun      map[string]time.Time
	lastReminded map[int64]int // chatID -> gameweek already reminded
	now          func() time.Time
}

func New(oracle Oracle, eng Processor, store Store, notifier Notifier, cfg Config) *Scheduler {
	return &Scheduler{
		oracle:       oracle,
		engine:       eng,
		store:        store,
		notifier:     notifier,
		cfg:          cfg,
		lastRun:      map[string]time.Time{},
		lastReminded: map[int64]int{},
		now:          time.Now,
	}
}

// Run ticks until the context is cancelled. Every task is short and keyed
// off durable state, so a missed or doubled tick is harmless.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("[SCHEDULER] Started: results=%s reminders=%s rollover=%s",
		s.cfg.ResultsInterval, s.cfg.ReminderInterval, s.cfg.RolloverInterval)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[SCHEDULER] Stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs every due task once. Exported through Run only; tests call it
// directly with a fake clock.
func (s *Scheduler) tick(ctx context.Context) {
	s.runDue(ctx, "results", s.cfg.ResultsInterval, s.checkResults)
	s.runDue(ctx, "reminders", s.cfg.ReminderInterval, s.sendReminders)
	s.runDue(ctx, "rollover", s.cfg.RolloverInterval, s.checkAutoRollovers)
	if s.cfg.Port != "" {
		s.runDue(ctx, "keepalive", s.cfg.KeepAlive, s.keepAlive)
	}
}

// runDue enforces the per-task minimum interval.
func (s *Scheduler) runDue(ctx context.Context, name string, interval time.Duration, task func(context.Context) error) {
	if interval <= 0 {
		return
	}
	if last, ok := s.lastRun[name]; ok && s.now().Sub(last) < interval {
		return
	}
	s.lastRun[name] = s.now()
	if err := task(ctx); err != nil {
		log.Printf("[SCHEDULER] Task %s failed: %v", name, err)
	}
}

// checkResults applies finished gameweek results to every group,
// sequentially. One group failing does not block the rest.
func (s *Scheduler) checkResults(ctx context.Context) error {
	gw, err := s.oracle.CurrentGameweek(ctx)
	if err != nil {
		return err
	}
	finished, err := s.oracle.Finished(ctx, gw)
	if err != nil {
		return err
	}
	if !finished {
		return nil
	}

	groups, err := s.store.AllGroups()
	if err != nil {
		return err
	}
	for _, g := range groups {
		out, err := s.engine.ProcessGameweek(ctx, g.ChatID, gw)
		if err != nil {
			log.Printf("[RESULTS] Group %d gw %d: %v", g.ChatID, gw, err)
			continue
		}
		if out.Kind != engine.OutcomeSkipped {
			s.notifier.NotifyOutcome(out)
		}
	}
	return nil
}

// sendReminders nudges players without a pick roughly a day before the
// deadline. The 23-25h window plus an hourly cadence guarantees exactly
// one tick lands in it; the per-group marker stops a second.
func (s *Scheduler) sendReminders(ctx context.Context) error {
	gw, err := s.oracle.CurrentGameweek(ctx)
	if err != nil {
		return err
	}
	deadline, err := s.oracle.Deadline(ctx, gw)
	if err != nil {
		return err
	}
	until := deadline.Sub(s.now())
	if until < 23*time.Hour || until > 25*time.Hour {
		return nil
	}

	groups, err := s.store.AllGroups()
	if err != nil {
		return err
	}
	for _, g := range groups {
		if s.lastReminded[g.ChatID] == gw {
			continue
		}
		missing, err := s.store.UsersWithoutPicks(g.ChatID, gw)
		if err != nil {
			log.Printf("[REMINDER] Group %d: %v", g.ChatID, err)
			continue
		}
		if len(missing) == 0 {
			continue
		}
		s.lastReminded[g.ChatID] = gw
		s.notifier.NotifyReminder(g.ChatID, gw, deadline, missing)
	}
	return nil
}

// checkAutoRollovers is the daily safety net for groups the hourly results
// task never resolved. Only acts on a fully finished gameweek; the
// engine's processed marker keeps the two paths from both firing.
func (s *Scheduler) checkAutoRollovers(ctx context.Context) error {
	gw, err := s.oracle.CurrentGameweek(ctx)
	if err != nil {
		return err
	}
	finished, err := s.oracle.Finished(ctx, gw)
	if err != nil {
		return err
	}
	if !finished {
		return nil
	}

	groups, err := s.store.AllGroups()
	if err != nil {
		return err
	}
	for _, g := range groups {
		out, err := s.engine.AutoRollover(ctx, g.ChatID, gw)
		if err != nil {
			log.Printf("[ROLLOVER] Group %d gw %d: %v", g.ChatID, gw, err)
			continue
		}
		if out.Kind != engine.OutcomeSkipped {
			s.notifier.NotifyOutcome(out)
		}
	}
	return nil
}

// keepAlive pings the local health endpoint so free-tier hosts do not put
// the process to sleep between Telegram updates.
func (s *Scheduler) keepAlive(ctx context.Context) error {
	url := fmt.Sprintf("http://localhost:%s/health", s.cfg.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
