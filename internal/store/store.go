package store

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/laststanding/backend/internal/models"
	"github.com/laststanding/backend/internal/pot"
)

// Store owns all durable competition state. Every query is scoped by
// chat id inside the store itself; callers never filter for isolation.
type Store struct {
	db *sqlx.DB
}

// New creates a Store backed by the given database.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// RegisterUser upserts the global user profile, refreshing display-name
// fields on every interaction.
func (s *Store) RegisterUser(userID int64, username, firstName, lastName string) error {
	_, err := s.db.Exec(`
		INSERT INTO users (user_id, username, first_name, last_name, is_active, created_at)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), TRUE, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET username = NULLIF($2,''), first_name = NULLIF($3,''), last_name = NULLIF($4,''), is_active = TRUE
	`, userID, username, firstName, lastName)
	if err != nil {
		return fmt.Errorf("register user %d: %w", userID, err)
	}
	return nil
}

// GetUser returns the user profile, or nil if unknown.
func (s *Store) GetUser(userID int64) (*models.User, error) {
	var u models.User
	err := s.db.Get(&u, `SELECT * FROM users WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &u, nil
}

// RegisterGroup upserts a group chat, refreshing title and type.
func (s *Store) RegisterGroup(chatID int64, chatTitle, chatType string) error {
	_, err := s.db.Exec(`
		INSERT INTO groups (chat_id, chat_title, chat_type, is_active, created_at)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), TRUE, NOW())
		ON CONFLICT (chat_id) DO UPDATE
		SET chat_title = NULLIF($2,''), chat_type = NULLIF($3,''), is_active = TRUE
	`, chatID, chatTitle, chatType)
	if err != nil {
		return fmt.Errorf("register group %d: %w", chatID, err)
	}
	return nil
}

// JoinGroup adds a user to a group, reactivating the membership if it was
// previously eliminated. Idempotent. This is the explicit rejoin path; the
// automatic path is ResetCompetition.
func (s *Store) JoinGroup(userID, chatID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO group_members (user_id, chat_id, is_active, joined_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (user_id, chat_id) DO UPDATE SET is_active = TRUE
	`, userID, chatID)
	if err != nil {
		return fmt.Errorf("join group: user %d chat %d: %w", userID, chatID, err)
	}
	return nil
}

// ActiveCompetition returns the id of the group's active competition,
// creating one lazily on first access.
func (s *Store) ActiveCompetition(chatID int64) (int, error) {
	var id int
	err := s.db.Get(&id, `SELECT id FROM competitions WHERE chat_id = $1 AND is_active`, chatID)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("active competition for chat %d: %w", chatID, err)
	}

	err = s.db.QueryRowx(`
		INSERT INTO competitions (chat_id, is_active, started_at)
		VALUES ($1, TRUE, NOW()) RETURNING id
	`, chatID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create competition for chat %d: %w", chatID, err)
	}
	log.Printf("[STORE] Created competition %d for group %d", id, chatID)
	return id, nil
}

// activeCompetitionTx is ActiveCompetition inside an existing transaction.
func (s *Store) activeCompetitionTx(tx *sqlx.Tx, chatID int64) (int, error) {
	var id int
	err := tx.Get(&id, `SELECT id FROM competitions WHERE chat_id = $1 AND is_active`, chatID)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	err = tx.QueryRowx(`
		INSERT INTO competitions (chat_id, is_active, started_at)
		VALUES ($1, TRUE, NOW()) RETURNING id
	`, chatID).Scan(&id)
	return id, err
}

// ensureMember creates the membership on first pick without touching an
// existing row. An eliminated membership must stay eliminated here; only
// JoinGroup and ResetCompetition reactivate.
func (s *Store) ensureMember(userID, chatID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO group_members (user_id, chat_id, is_active, joined_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (user_id, chat_id) DO NOTHING
	`, userID, chatID)
	if err != nil {
		return fmt.Errorf("ensure membership: user %d chat %d: %w", userID, chatID, err)
	}
	return nil
}

// IsActiveMember reports whether the user is an active (surviving) member
// of the group.
func (s *Store) IsActiveMember(userID, chatID int64) (bool, error) {
	var active bool
	err := s.db.Get(&active, `
		SELECT gm.is_active FROM group_members gm
		WHERE gm.user_id = $1 AND gm.chat_id = $2
	`, userID, chatID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("membership check: user %d chat %d: %w", userID, chatID, err)
	}
	return active, nil
}

// HasUsedTeam reports whether the team appears in the user's pick or
// blocked-team history for the group's active competition.
func (s *Store) HasUsedTeam(userID, chatID int64, teamID int) (bool, error) {
	compID, err := s.ActiveCompetition(chatID)
	if err != nil {
		return false, err
	}

	var count int
	err = s.db.Get(&count, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM picks
			WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3 AND team_id = $4
			UNION ALL
			SELECT 1 FROM blocked_teams
			WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3 AND team_id = $4
		) used
	`, userID, chatID, compID, teamID)
	if err != nil {
		return false, fmt.Errorf("team usage check: user %d team %d: %w", userID, teamID, err)
	}
	return count > 0, nil
}

// RecordPick records a pick for the user in the group's active competition.
// A first pick doubles as joining the group. Fails with ErrUserEliminated,
// ErrDuplicatePick or ErrTeamAlreadyUsed.
func (s *Store) RecordPick(userID, chatID int64, gameweek int, teamID int, teamName string) error {
	if err := s.ensureMember(userID, chatID); err != nil {
		return err
	}
	active, err := s.IsActiveMember(userID, chatID)
	if err != nil {
		return err
	}
	if !active {
		return ErrUserEliminated
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin record pick: %w", err)
	}
	defer tx.Rollback()

	compID, err := s.activeCompetitionTx(tx, chatID)
	if err != nil {
		return fmt.Errorf("record pick: competition: %w", err)
	}

	var existing int
	if err := tx.Get(&existing, `
		SELECT COUNT(*) FROM picks
		WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3 AND gameweek = $4
	`, userID, chatID, compID, gameweek); err != nil {
		return fmt.Errorf("record pick: duplicate check: %w", err)
	}
	if existing > 0 {
		return ErrDuplicatePick
	}

	var used int
	if err := tx.Get(&used, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM picks
			WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3 AND team_id = $4
			UNION ALL
			SELECT 1 FROM blocked_teams
			WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3 AND team_id = $4
		) used
	`, userID, chatID, compID, teamID); err != nil {
		return fmt.Errorf("record pick: usage check: %w", err)
	}
	if used > 0 {
		return ErrTeamAlreadyUsed
	}

	if _, err := tx.Exec(`
		INSERT INTO picks (user_id, chat_id, competition_id, gameweek, team_name, team_id, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', NOW())
	`, userID, chatID, compID, gameweek, teamName, teamID); err != nil {
		return fmt.Errorf("record pick: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record pick: commit: %w", err)
	}

	log.Printf("[STORE] Pick recorded: user=%d chat=%d gw=%d team=%s", userID, chatID, gameweek, teamName)
	return nil
}

// ChangePick rewrites the user's pick for the gameweek and permanently
// blocks the old team for the rest of the competition. Block and rewrite
// happen in one transaction; a failure leaves neither visible.
func (s *Store) ChangePick(userID, chatID int64, gameweek int, newTeamID int, newTeamName string) (oldTeam string, err error) {
	if err := s.ensureMember(userID, chatID); err != nil {
		return "", err
	}
	active, err := s.IsActiveMember(userID, chatID)
	if err != nil {
		return "", err
	}
	if !active {
		return "", ErrUserEliminated
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin change pick: %w", err)
	}
	defer tx.Rollback()

	compID, err := s.activeCompetitionTx(tx, chatID)
	if err != nil {
		return "", fmt.Errorf("change pick: competition: %w", err)
	}

	var old models.Pick
	err = tx.Get(&old, `
		SELECT * FROM picks
		WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3 AND gameweek = $4
	`, userID, chatID, compID, gameweek)
	if err == sql.ErrNoRows {
		return "", ErrNoExistingPick
	}
	if err != nil {
		return "", fmt.Errorf("change pick: load old: %w", err)
	}

	if old.TeamID.Valid && int(old.TeamID.Int64) == newTeamID {
		return "", ErrTeamAlreadyUsed
	}

	var used int
	if err := tx.Get(&used, `
		SELECT COUNT(*) FROM (
			SELECT 1 FROM picks
			WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3 AND team_id = $4
			UNION ALL
			SELECT 1 FROM blocked_teams
			WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3 AND team_id = $4
		) used
	`, userID, chatID, compID, newTeamID); err != nil {
		return "", fmt.Errorf("change pick: usage check: %w", err)
	}
	if used > 0 {
		return "", ErrTeamAlreadyUsed
	}

	if old.TeamID.Valid {
		if _, err := tx.Exec(`
			INSERT INTO blocked_teams (user_id, chat_id, competition_id, team_id, team_name, blocked_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, userID, chatID, compID, old.TeamID.Int64, old.TeamName); err != nil {
			return "", fmt.Errorf("change pick: block old team: %w", err)
		}
	}

	if _, err := tx.Exec(`
		UPDATE picks SET team_name = $1, team_id = $2, created_at = NOW()
		WHERE id = $3
	`, newTeamName, newTeamID, old.ID); err != nil {
		return "", fmt.Errorf("change pick: update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("change pick: commit: %w", err)
	}

	log.Printf("[STORE] Pick changed: user=%d chat=%d gw=%d %s -> %s (old team blocked)",
		userID, chatID, gameweek, old.TeamName, newTeamName)
	return old.TeamName, nil
}

// PickForRound returns the user's pick for the gameweek in the group's
// active competition, or nil.
func (s *Store) PickForRound(userID, chatID int64, gameweek int) (*models.Pick, error) {
	compID, err := s.ActiveCompetition(chatID)
	if err != nil {
		return nil, err
	}
	var p models.Pick
	err = s.db.Get(&p, `
		SELECT * FROM picks
		WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3 AND gameweek = $4
	`, userID, chatID, compID, gameweek)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pick for round: user %d gw %d: %w", userID, gameweek, err)
	}
	return &p, nil
}

// UserPicks returns all of the user's picks in the group's active
// competition, oldest first.
func (s *Store) UserPicks(userID, chatID int64) ([]models.Pick, error) {
	compID, err := s.ActiveCompetition(chatID)
	if err != nil {
		return nil, err
	}
	var picks []models.Pick
	err = s.db.Select(&picks, `
		SELECT * FROM picks
		WHERE user_id = $1 AND chat_id = $2 AND competition_id = $3
		ORDER BY gameweek
	`, userID, chatID, compID)
	if err != nil {
		return nil, fmt.Errorf("user picks: user %d chat %d: %w", userID, chatID, err)
	}
	return picks, nil
}

// SetPickResult records the outcome of a pick after the round closes.
func (s *Store) SetPickResult(pickID int, result string) error {
	_, err := s.db.Exec(`UPDATE picks SET result = $1 WHERE id = $2`, result, pickID)
	if err != nil {
		return fmt.Errorf("set pick result %d: %w", pickID, err)
	}
	return nil
}

// CurrentSurvivors returns the active members of the group joined with
// their user profiles.
func (s *Store) CurrentSurvivors(chatID int64) ([]models.Survivor, error) {
	var survivors []models.Survivor
	err := s.db.Select(&survivors, `
		SELECT u.user_id, u.username, u.first_name, u.last_name
		FROM group_members gm
		JOIN users u ON gm.user_id = u.user_id
		WHERE gm.chat_id = $1 AND gm.is_active AND u.is_active
		ORDER BY gm.joined_at
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("current survivors for chat %d: %w", chatID, err)
	}
	return survivors, nil
}

// UsersWithPicksForRound returns active members who picked for the
// gameweek in the group's active competition.
func (s *Store) UsersWithPicksForRound(chatID int64, gameweek int) ([]models.Survivor, error) {
	compID, err := s.ActiveCompetition(chatID)
	if err != nil {
		return nil, err
	}
	var users []models.Survivor
	err = s.db.Select(&users, `
		SELECT DISTINCT u.user_id, u.username, u.first_name, u.last_name
		FROM picks p
		JOIN users u ON p.user_id = u.user_id
		JOIN group_members gm ON gm.user_id = u.user_id AND gm.chat_id = p.chat_id
		WHERE p.gameweek = $1 AND p.chat_id = $2 AND p.competition_id = $3 AND gm.is_active
	`, gameweek, chatID, compID)
	if err != nil {
		return nil, fmt.Errorf("users with picks: chat %d gw %d: %w", chatID, gameweek, err)
	}
	return users, nil
}

// UsersWithoutPicks returns active members who have not picked for the
// gameweek. Drives the deadline reminder.
func (s *Store) UsersWithoutPicks(chatID int64, gameweek int) ([]models.Survivor, error) {
	compID, err := s.ActiveCompetition(chatID)
	if err != nil {
		return nil, err
	}
	var users []models.Survivor
	err = s.db.Select(&users, `
		SELECT u.user_id, u.username, u.first_name, u.last_name
		FROM group_members gm
		JOIN users u ON gm.user_id = u.user_id
		WHERE gm.chat_id = $1 AND gm.is_active AND u.is_active
		AND NOT EXISTS (
			SELECT 1 FROM picks p
			WHERE p.user_id = u.user_id AND p.chat_id = $1
			AND p.competition_id = $2 AND p.gameweek = $3
		)
	`, chatID, compID, gameweek)
	if err != nil {
		return nil, fmt.Errorf("users without picks: chat %d gw %d: %w", chatID, gameweek, err)
	}
	return users, nil
}

// Eliminate flips the membership flag for the user in one group.
func (s *Store) Eliminate(userID, chatID int64) error {
	_, err := s.db.Exec(`
		UPDATE group_members SET is_active = FALSE
		WHERE user_id = $1 AND chat_id = $2
	`, userID, chatID)
	if err != nil {
		return fmt.Errorf("eliminate: user %d chat %d: %w", userID, chatID, err)
	}
	log.Printf("[STORE] Eliminated user %d from group %d", userID, chatID)
	return nil
}

// EliminateEverywhere flips the global profile and every membership.
// Used only by admin/export tooling, never by normal play.
func (s *Store) EliminateEverywhere(userID int64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin global eliminate: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE users SET is_active = FALSE WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("global eliminate: user row: %w", err)
	}
	if _, err := tx.Exec(`UPDATE group_members SET is_active = FALSE WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("global eliminate: memberships: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("global eliminate: commit: %w", err)
	}
	log.Printf("[STORE] Eliminated user %d everywhere", userID)
	return nil
}

// Revive reactivates a membership and the underlying user profile.
func (s *Store) Revive(userID, chatID int64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin revive: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE group_members SET is_active = TRUE
		WHERE user_id = $1 AND chat_id = $2
	`, userID, chatID)
	if err != nil {
		return fmt.Errorf("revive: membership: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("revive: user %d has no membership in chat %d", userID, chatID)
	}
	if _, err := tx.Exec(`UPDATE users SET is_active = TRUE WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("revive: user row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("revive: commit: %w", err)
	}
	log.Printf("[STORE] Revived user %d in group %d", userID, chatID)
	return nil
}

// AddWinner appends a winner record for the group's active competition.
func (s *Store) AddWinner(userID, chatID int64) error {
	compID, err := s.ActiveCompetition(chatID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO winners (user_id, chat_id, competition_id, won_at)
		VALUES ($1, $2, $3, NOW())
	`, userID, chatID, compID)
	if err != nil {
		return fmt.Errorf("add winner: user %d chat %d: %w", userID, chatID, err)
	}
	log.Printf("[STORE] Winner recorded: user=%d chat=%d competition=%d", userID, chatID, compID)
	return nil
}

// WinnerStats returns the group's hall of fame, most wins first.
func (s *Store) WinnerStats(chatID int64) ([]models.WinnerStat, error) {
	var stats []models.WinnerStat
	err := s.db.Select(&stats, `
		SELECT u.user_id, u.username, u.first_name, u.last_name, COUNT(w.id) AS wins
		FROM winners w
		JOIN users u ON w.user_id = u.user_id
		WHERE w.chat_id = $1
		GROUP BY u.user_id, u.username, u.first_name, u.last_name
		ORDER BY wins DESC, u.first_name ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("winner stats for chat %d: %w", chatID, err)
	}
	return stats, nil
}

// ResetCompetition deactivates the group's current competition, creates a
// fresh one, and reactivates every membership and the underlying user
// profiles. The new competition id breaks the join that team-usage checks
// rely on, so pick history and blocking start from zero.
func (s *Store) ResetCompetition(chatID int64) (int, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE competitions SET is_active = FALSE, ended_at = NOW()
		WHERE chat_id = $1 AND is_active
	`, chatID); err != nil {
		return 0, fmt.Errorf("reset: end competition: %w", err)
	}

	var newID int
	if err := tx.QueryRowx(`
		INSERT INTO competitions (chat_id, is_active, started_at)
		VALUES ($1, TRUE, NOW()) RETURNING id
	`, chatID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("reset: create competition: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE group_members SET is_active = TRUE WHERE chat_id = $1
	`, chatID); err != nil {
		return 0, fmt.Errorf("reset: reactivate members: %w", err)
	}

	// Reactivate profiles too, in case an export/admin path eliminated
	// someone globally.
	if _, err := tx.Exec(`
		UPDATE users SET is_active = TRUE
		WHERE user_id IN (SELECT user_id FROM group_members WHERE chat_id = $1)
	`, chatID); err != nil {
		return 0, fmt.Errorf("reset: reactivate users: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("reset: commit: %w", err)
	}

	log.Printf("[STORE] Competition reset for group %d, new competition %d", chatID, newID)
	return newID, nil
}

// RolloverCount returns the group's rollover counter.
func (s *Store) RolloverCount(chatID int64) (int, error) {
	var count int
	err := s.db.Get(&count, `SELECT rollover_count FROM groups WHERE chat_id = $1`, chatID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rollover count for chat %d: %w", chatID, err)
	}
	return count, nil
}

// IncrementRollover bumps the group's rollover counter by one.
func (s *Store) IncrementRollover(chatID int64) error {
	_, err := s.db.Exec(`
		UPDATE groups SET rollover_count = rollover_count + 1 WHERE chat_id = $1
	`, chatID)
	if err != nil {
		return fmt.Errorf("increment rollover for chat %d: %w", chatID, err)
	}
	log.Printf("[STORE] Rollover incremented for group %d", chatID)
	return nil
}

// ResetRollover zeroes the group's rollover counter.
func (s *Store) ResetRollover(chatID int64) error {
	_, err := s.db.Exec(`
		UPDATE groups SET rollover_count = 0 WHERE chat_id = $1
	`, chatID)
	if err != nil {
		return fmt.Errorf("reset rollover for chat %d: %w", chatID, err)
	}
	return nil
}

// Pot returns the group's current pot, the active-player count, and the
// rollover count. Always computed fresh.
func (s *Store) Pot(chatID int64) (total, players, rollovers int, err error) {
	rollovers, err = s.RolloverCount(chatID)
	if err != nil {
		return 0, 0, 0, err
	}
	survivors, err := s.CurrentSurvivors(chatID)
	if err != nil {
		return 0, 0, 0, err
	}
	players = len(survivors)
	return pot.Total(rollovers, players), players, rollovers, nil
}

// GameweekProcessed reports whether results for the gameweek were already
// applied in this group. Deliberately not scoped to the active
// competition: a wipe or a win resets the competition right after the
// marker is written, and the marker must still block a re-run. The
// recency bound frees the same gameweek number for next season.
func (s *Store) GameweekProcessed(chatID int64, gameweek int) (bool, error) {
	var count int
	err := s.db.Get(&count, `
		SELECT COUNT(*) FROM processed_gameweeks
		WHERE chat_id = $1 AND gameweek = $2
		AND processed_at > NOW() - INTERVAL '90 days'
	`, chatID, gameweek)
	if err != nil {
		return false, fmt.Errorf("processed check: chat %d gw %d: %w", chatID, gameweek, err)
	}
	return count > 0, nil
}

// MarkGameweekProcessed writes the idempotence marker for the gameweek.
// The marker is keyed to the competition that was live when processing
// started, so a reset in the same tick does not hide it.
func (s *Store) MarkGameweekProcessed(chatID int64, competitionID, gameweek int, outcome string) error {
	_, err := s.db.Exec(`
		INSERT INTO processed_gameweeks (chat_id, competition_id, gameweek, outcome, processed_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (chat_id, competition_id, gameweek) DO NOTHING
	`, chatID, competitionID, gameweek, outcome)
	if err != nil {
		return fmt.Errorf("mark processed: chat %d gw %d: %w", chatID, gameweek, err)
	}
	return nil
}

// AllGroups returns every active group.
func (s *Store) AllGroups() ([]models.Group, error) {
	var groups []models.Group
	err := s.db.Select(&groups, `SELECT * FROM groups WHERE is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("all groups: %w", err)
	}
	return groups, nil
}
