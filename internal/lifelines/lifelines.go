// Package lifelines implements the one-per-season rescue mechanics:
// coinflip (50% revive), goodluck (target restricted to the bottom six)
// and forcechange (target must abandon their pick).
package lifelines

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
)

// Type identifies a lifeline.
type Type string

const (
	Coinflip    Type = "coinflip"
	GoodLuck    Type = "goodluck"
	ForceChange Type = "forcechange"
)

// All lists every lifeline with its user-facing description.
var All = []struct {
	Type        Type
	Name        string
	Description string
}{
	{Coinflip, "Coinflip", "50% chance to revive and re-enter the current round"},
	{GoodLuck, "Good Luck", "Force another player to pick from the bottom 6 teams"},
	{ForceChange, "Force Change", "Force another player to change their pick"},
}

// ErrAlreadyUsed means the lifeline was spent earlier this season.
var ErrAlreadyUsed = errors.New("lifeline already used this season")

// ErrUnknownLifeline means the requested type does not exist.
var ErrUnknownLifeline = errors.New("unknown lifeline")

// Reviver is the store operation coinflip needs.
type Reviver interface {
	Revive(userID, chatID int64) error
}

// Manager owns the usage ledger. Each lifeline is usable once per
// (group, user, season); the table's unique constraint backs the check.
type Manager struct {
	db      *sqlx.DB
	reviver Reviver
	flip    func() bool
}

func New(db *sqlx.DB, reviver Reviver) *Manager {
	return &Manager{
		db:      db,
		reviver: reviver,
		flip:    func() bool { return rand.Intn(2) == 0 },
	}
}

// Season returns the label for the season containing t, e.g. "2026-27".
// Seasons turn over in August.
func Season(t time.Time) string {
	year := t.Year()
	if t.Month() < time.August {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// Available reports which lifelines the user still holds this season.
func (m *Manager) Available(chatID, userID int64, season string) (map[Type]bool, error) {
	var used []string
	err := m.db.Select(&used, `
		SELECT lifeline_type FROM lifeline_usage
		WHERE chat_id = $1 AND user_id = $2 AND season = $3
	`, chatID, userID, season)
	if err != nil {
		return nil, fmt.Errorf("lifelines for user %d chat %d: %w", userID, chatID, err)
	}

	avail := map[Type]bool{}
	for _, l := range All {
		avail[l.Type] = true
	}
	for _, u := range used {
		avail[Type(u)] = false
	}
	return avail, nil
}

// spend records the usage, enforcing the once-per-season rule.
func (m *Manager) spend(chatID, userID int64, t Type, season string, targetUserID int64, details any) error {
	var detailsJSON any
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode lifeline details: %w", err)
		}
		detailsJSON = string(b)
	}
	var target any
	if targetUserID != 0 {
		target = targetUserID
	}

	res, err := m.db.Exec(`
		INSERT INTO lifeline_usage (chat_id, user_id, lifeline_type, season, target_user_id, details, used_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (chat_id, user_id, season, lifeline_type) DO NOTHING
	`, chatID, userID, string(t), season, target, detailsJSON)
	if err != nil {
		return fmt.Errorf("record lifeline %s: %w", t, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyUsed
	}
	log.Printf("[LIFELINE] %s used by user %d in group %d (%s)", t, userID, chatID, season)
	return nil
}

// UseCoinflip spends the coinflip and revives the user on heads. The
// lifeline is consumed either way.
func (m *Manager) UseCoinflip(chatID, userID int64, season string) (revived bool, err error) {
	if err := m.spend(chatID, userID, Coinflip, season, 0, nil); err != nil {
		return false, err
	}
	if !m.flip() {
		return false, nil
	}
	if err := m.reviver.Revive(userID, chatID); err != nil {
		return false, err
	}
	return true, nil
}

// UseGoodLuck restricts the target's next pick to the given teams.
func (m *Manager) UseGoodLuck(chatID, userID, targetUserID int64, season string, bottomTeams []string) error {
	if targetUserID == 0 {
		return errors.New("goodluck requires a target player")
	}
	return m.spend(chatID, userID, GoodLuck, season, targetUserID,
		map[string][]string{"bottom_teams": bottomTeams})
}

// UseForceChange obliges the target to change their current pick.
func (m *Manager) UseForceChange(chatID, userID, targetUserID int64, season string, originalTeam string) error {
	if targetUserID == 0 {
		return errors.New("forcechange requires a target player")
	}
	return m.spend(chatID, userID, ForceChange, season, targetUserID,
		map[string]string{"original_team": originalTeam})
}

// Parse resolves user input to a lifeline type.
func Parse(s string) (Type, error) {
	for _, l := range All {
		if string(l.Type) == s {
			return l.Type, nil
		}
	}
	return "", ErrUnknownLifeline
}
