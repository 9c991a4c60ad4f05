// Package engine applies finished gameweek results to a group's
// competition: eliminations, the no-joint-winners wipe, winner detection
// and rollover bookkeeping. It mutates state through the store and emits
// an Outcome; it never sends messages itself.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/laststanding/backend/internal/fpl"
	"github.com/laststanding/backend/internal/models"
)

// Store is the slice of the competition store the engine needs.
type Store interface {
	ActiveCompetition(chatID int64) (int, error)
	GameweekProcessed(chatID int64, gameweek int) (bool, error)
	MarkGameweekProcessed(chatID int64, competitionID, gameweek int, outcome string) error
	CurrentSurvivors(chatID int64) ([]models.Survivor, error)
	UsersWithPicksForRound(chatID int64, gameweek int) ([]models.Survivor, error)
	PickForRound(userID, chatID int64, gameweek int) (*models.Pick, error)
	SetPickResult(pickID int, result string) error
	Eliminate(userID, chatID int64) error
	AddWinner(userID, chatID int64) error
	ResetCompetition(chatID int64) (int, error)
	IncrementRollover(chatID int64) error
	ResetRollover(chatID int64) error
	Pot(chatID int64) (total, players, rollovers int, err error)
}

// FixtureSource is the slice of the fixture oracle the engine needs.
type FixtureSource interface {
	Fixtures(ctx context.Context, gameweek int) ([]fpl.Fixture, error)
}

// Verdict values written back onto picks once a round closes.
const (
	VerdictWon  = "won"
	VerdictLost = "lost"
	VerdictVoid = "void" // team had no finished fixture this round
)

// Outcome kinds.
const (
	OutcomeContinue = "continue"
	OutcomeWinner   = "winner"
	OutcomeWipe     = "wipe"
	OutcomeRollover = "rollover" // auto-rollover with multiple survivors
	OutcomeSkipped  = "skipped"
)

// Outcome summarizes one engine pass over one group. The notification
// layer renders it; nothing here is pre-formatted text.
type Outcome struct {
	ChatID   int64
	Gameweek int
	Kind     string

	// DeadlineMissers are reported separately from performance
	// eliminations; both sets are already eliminated in the store.
	DeadlineMissers []models.Survivor
	Eliminated      []models.Survivor
	Survivors       []models.Survivor

	Winner           *models.Survivor
	Pot              int
	Rollovers        int
	NewCompetitionID int
}

// Engine drives survival decisions for all groups.
type Engine struct {
	store    Store
	fixtures FixtureSource
}

func New(store Store, fixtures FixtureSource) *Engine {
	return &Engine{store: store, fixtures: fixtures}
}

// ProcessGameweek applies the finished gameweek's results to one group.
// Idempotent: a processed marker short-circuits re-runs. The caller is
// responsible for only invoking this once the oracle reports the gameweek
// finished.
func (e *Engine) ProcessGameweek(ctx context.Context, chatID int64, gameweek int) (*Outcome, error) {
	done, err := e.store.GameweekProcessed(chatID, gameweek)
	if err != nil {
		return nil, err
	}
	if done {
		return &Outcome{ChatID: chatID, Gameweek: gameweek, Kind: OutcomeSkipped}, nil
	}

	compID, err := e.store.ActiveCompetition(chatID)
	if err != nil {
		return nil, err
	}

	survivors, err := e.store.CurrentSurvivors(chatID)
	if err != nil {
		return nil, err
	}
	// Empty group guard: nothing to decide, and marking it processed
	// would block a late-joining group's first real round.
	if len(survivors) == 0 {
		log.Printf("[ENGINE] Skipping group %d gw %d: no active players", chatID, gameweek)
		return &Outcome{ChatID: chatID, Gameweek: gameweek, Kind: OutcomeSkipped}, nil
	}

	// Zero-picks guard: a round nobody entered is not a round everyone
	// missed. Groups that formed after the deadline would otherwise be
	// wiped on their first finished gameweek.
	picked, err := e.store.UsersWithPicksForRound(chatID, gameweek)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		log.Printf("[ENGINE] Skipping group %d gw %d: no picks recorded this round", chatID, gameweek)
		return &Outcome{ChatID: chatID, Gameweek: gameweek, Kind: OutcomeSkipped}, nil
	}

	fixtures, err := e.fixtures.Fixtures(ctx, gameweek)
	if err != nil {
		return nil, fmt.Errorf("fixtures for gw %d: %w", gameweek, err)
	}

	// Pot is staked by everyone entering the round, so it is computed
	// before any elimination lands.
	pot, _, rollovers, err := e.store.Pot(chatID)
	if err != nil {
		return nil, err
	}

	out := &Outcome{ChatID: chatID, Gameweek: gameweek, Pot: pot, Rollovers: rollovers}

	for _, s := range survivors {
		pick, err := e.store.PickForRound(s.UserID, chatID, gameweek)
		if err != nil {
			return nil, err
		}
		if pick == nil {
			out.DeadlineMissers = append(out.DeadlineMissers, s)
			continue
		}

		verdict := classify(pick, fixtures)
		if err := e.store.SetPickResult(pick.ID, verdict); err != nil {
			return nil, err
		}
		switch verdict {
		case VerdictLost:
			out.Eliminated = append(out.Eliminated, s)
		default:
			out.Survivors = append(out.Survivors, s)
		}
	}

	// Deadline-missers are always eliminated, even on a round where the
	// wipe rule would otherwise catch everyone.
	for _, s := range out.DeadlineMissers {
		if err := e.store.Eliminate(s.UserID, chatID); err != nil {
			return nil, err
		}
	}
	for _, s := range out.Eliminated {
		if err := e.store.Eliminate(s.UserID, chatID); err != nil {
			return nil, err
		}
	}

	anyoneOut := len(out.Eliminated)+len(out.DeadlineMissers) > 0

	switch {
	case len(out.Survivors) == 0 && anyoneOut:
		// No joint winners: nobody made it, stakes roll over.
		out.Kind = OutcomeWipe
		if err := e.store.IncrementRollover(chatID); err != nil {
			return nil, err
		}
		newID, err := e.store.ResetCompetition(chatID)
		if err != nil {
			return nil, err
		}
		out.NewCompetitionID = newID
		out.Rollovers++
		log.Printf("[ENGINE] Group %d gw %d: full wipe, rollover now %d", chatID, gameweek, out.Rollovers)

	case len(out.Survivors) == 1 && anyoneOut:
		winner := out.Survivors[0]
		out.Kind = OutcomeWinner
		out.Winner = &winner
		if err := e.store.AddWinner(winner.UserID, chatID); err != nil {
			return nil, err
		}
		if err := e.store.ResetRollover(chatID); err != nil {
			return nil, err
		}
		newID, err := e.store.ResetCompetition(chatID)
		if err != nil {
			return nil, err
		}
		out.NewCompetitionID = newID
		log.Printf("[ENGINE] Group %d gw %d: winner user %d, pot %d", chatID, gameweek, winner.UserID, pot)

	default:
		out.Kind = OutcomeContinue
		log.Printf("[ENGINE] Group %d gw %d: %d survive, %d eliminated, %d missed deadline",
			chatID, gameweek, len(out.Survivors), len(out.Eliminated), len(out.DeadlineMissers))
	}

	if err := e.store.MarkGameweekProcessed(chatID, compID, gameweek, out.Kind); err != nil {
		return nil, err
	}
	return out, nil
}

// classify decides a pick's fate from the gameweek's fixtures. Matching is
// by team id; a case-insensitive name fallback covers picks recorded
// before ids were stored.
func classify(pick *models.Pick, fixtures []fpl.Fixture) string {
	for _, f := range fixtures {
		if !f.Finished || f.TeamHScore == nil || f.TeamAScore == nil {
			continue
		}
		side, ok := pickSide(pick, f)
		if !ok {
			continue
		}
		if side == f.TeamH && *f.TeamHScore > *f.TeamAScore {
			return VerdictWon
		}
		if side == f.TeamA && *f.TeamAScore > *f.TeamHScore {
			return VerdictWon
		}
		return VerdictLost
	}
	return VerdictVoid
}

// pickSide returns which side of the fixture the pick is on, if either.
func pickSide(pick *models.Pick, f fpl.Fixture) (int, bool) {
	if pick.TeamID.Valid {
		id := int(pick.TeamID.Int64)
		if id == f.TeamH || id == f.TeamA {
			return id, true
		}
		return 0, false
	}
	// Legacy picks carry only a name; no id to compare, so nothing to
	// match against the fixture's sides. Treated as void upstream.
	return 0, false
}

// AutoRollover is the daily safety net: once picks close, a group stuck
// with multiple survivors rolls over, and a lone survivor is crowned even
// if hourly processing never caught it. One idempotent operation layered
// on the same store primitives as ProcessGameweek.
func (e *Engine) AutoRollover(ctx context.Context, chatID int64, gameweek int) (*Outcome, error) {
	done, err := e.store.GameweekProcessed(chatID, gameweek)
	if err != nil {
		return nil, err
	}
	if done {
		return &Outcome{ChatID: chatID, Gameweek: gameweek, Kind: OutcomeSkipped}, nil
	}

	compID, err := e.store.ActiveCompetition(chatID)
	if err != nil {
		return nil, err
	}
	survivors, err := e.store.CurrentSurvivors(chatID)
	if err != nil {
		return nil, err
	}

	pot, _, rollovers, err := e.store.Pot(chatID)
	if err != nil {
		return nil, err
	}
	out := &Outcome{ChatID: chatID, Gameweek: gameweek, Pot: pot, Rollovers: rollovers, Survivors: survivors}

	switch {
	case len(survivors) > 1:
		out.Kind = OutcomeRollover
		if err := e.store.IncrementRollover(chatID); err != nil {
			return nil, err
		}
		newID, err := e.store.ResetCompetition(chatID)
		if err != nil {
			return nil, err
		}
		out.NewCompetitionID = newID
		out.Rollovers++
		log.Printf("[ENGINE] Auto-rollover applied to group %d: %d survivors", chatID, len(survivors))

	case len(survivors) == 1:
		winner := survivors[0]
		out.Kind = OutcomeWinner
		out.Winner = &winner
		if err := e.store.AddWinner(winner.UserID, chatID); err != nil {
			return nil, err
		}
		if err := e.store.ResetRollover(chatID); err != nil {
			return nil, err
		}
		newID, err := e.store.ResetCompetition(chatID)
		if err != nil {
			return nil, err
		}
		out.NewCompetitionID = newID
		log.Printf("[ENGINE] Auto-rollover crowned user %d in group %d", winner.UserID, chatID)

	default:
		return &Outcome{ChatID: chatID, Gameweek: gameweek, Kind: OutcomeSkipped}, nil
	}

	if err := e.store.MarkGameweekProcessed(chatID, compID, gameweek, out.Kind); err != nil {
		return nil, err
	}
	return out, nil
}
