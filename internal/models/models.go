package models

import (
	"database/sql"
	"fmt"
	"time"
)

// User is a global Telegram user profile. Created on first interaction,
// name fields refreshed on every interaction, never deleted.
type User struct {
	ID        int            `db:"id" json:"id"`
	UserID    int64          `db:"user_id" json:"user_id"`
	Username  sql.NullString `db:"username" json:"username,omitempty"`
	FirstName sql.NullString `db:"first_name" json:"first_name,omitempty"`
	LastName  sql.NullString `db:"last_name" json:"last_name,omitempty"`
	IsActive  bool           `db:"is_active" json:"is_active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Group is a chat running its own independent competition instance.
type Group struct {
	ID            int            `db:"id" json:"id"`
	ChatID        int64          `db:"chat_id" json:"chat_id"`
	ChatTitle     sql.NullString `db:"chat_title" json:"chat_title,omitempty"`
	ChatType      sql.NullString `db:"chat_type" json:"chat_type,omitempty"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	RolloverCount int            `db:"rollover_count" json:"rollover_count"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// GroupMember is a (user, group) pair carrying the per-group survival flag.
type GroupMember struct {
	ID       int       `db:"id" json:"id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	ChatID   int64     `db:"chat_id" json:"chat_id"`
	IsActive bool      `db:"is_active" json:"is_active"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// Competition is one season of play scoped to a group. Exactly one is
// active per group at a time.
type Competition struct {
	ID        int          `db:"id" json:"id"`
	ChatID    int64        `db:"chat_id" json:"chat_id"`
	IsActive  bool         `db:"is_active" json:"is_active"`
	StartedAt time.Time    `db:"started_at" json:"started_at"`
	EndedAt   sql.NullTime `db:"ended_at" json:"ended_at,omitempty"`
}

// Pick is a player's team selection for a gameweek within a competition.
type Pick struct {
	ID            int           `db:"id" json:"id"`
	UserID        int64         `db:"user_id" json:"user_id"`
	ChatID        int64         `db:"chat_id" json:"chat_id"`
	CompetitionID int           `db:"competition_id" json:"competition_id"`
	Gameweek      int           `db:"gameweek" json:"gameweek"`
	TeamName      string        `db:"team_name" json:"team_name"`
	TeamID        sql.NullInt64 `db:"team_id" json:"team_id,omitempty"`
	Result        string        `db:"result" json:"result"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// BlockedTeam is a team a user may never select again within a competition.
// Populated when a pick is changed.
type BlockedTeam struct {
	ID            int       `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	ChatID        int64     `db:"chat_id" json:"chat_id"`
	CompetitionID int       `db:"competition_id" json:"competition_id"`
	TeamID        int       `db:"team_id" json:"team_id"`
	TeamName      string    `db:"team_name" json:"team_name"`
	BlockedAt     time.Time `db:"blocked_at" json:"blocked_at"`
}

// Winner records a competition that concluded with exactly one survivor.
type Winner struct {
	ID            int       `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	ChatID        int64     `db:"chat_id" json:"chat_id"`
	CompetitionID int       `db:"competition_id" json:"competition_id"`
	WonAt         time.Time `db:"won_at" json:"won_at"`
}

// ProcessedGameweek marks a (group, competition, gameweek) whose results
// have already been applied. Guards the engine against double runs.
type ProcessedGameweek struct {
	ID            int       `db:"id" json:"id"`
	ChatID        int64     `db:"chat_id" json:"chat_id"`
	CompetitionID int       `db:"competition_id" json:"competition_id"`
	Gameweek      int       `db:"gameweek" json:"gameweek"`
	Outcome       string    `db:"outcome" json:"outcome"`
	ProcessedAt   time.Time `db:"processed_at" json:"processed_at"`
}

// LifelineUse records a one-per-season lifeline being spent.
type LifelineUse struct {
	ID           int            `db:"id" json:"id"`
	ChatID       int64          `db:"chat_id" json:"chat_id"`
	UserID       int64          `db:"user_id" json:"user_id"`
	LifelineType string         `db:"lifeline_type" json:"lifeline_type"`
	Season       string         `db:"season" json:"season"`
	TargetUserID sql.NullInt64  `db:"target_user_id" json:"target_user_id,omitempty"`
	Details      sql.NullString `db:"details" json:"details,omitempty"`
	UsedAt       time.Time      `db:"used_at" json:"used_at"`
}

// Survivor is an active group member joined with the user profile.
type Survivor struct {
	UserID    int64          `db:"user_id" json:"user_id"`
	Username  sql.NullString `db:"username" json:"username,omitempty"`
	FirstName sql.NullString `db:"first_name" json:"first_name,omitempty"`
	LastName  sql.NullString `db:"last_name" json:"last_name,omitempty"`
}

// DisplayName picks the best available handle: @username, then first
// name, then a numeric fallback.
func (s Survivor) DisplayName() string {
	return displayName(s.Username, s.FirstName, s.UserID)
}

// DisplayName mirrors Survivor.DisplayName for full user rows.
func (u User) DisplayName() string {
	return displayName(u.Username, u.FirstName, u.UserID)
}

func displayName(username, firstName sql.NullString, userID int64) string {
	if username.Valid && username.String != "" {
		return "@" + username.String
	}
	if firstName.Valid && firstName.String != "" {
		return firstName.String
	}
	return fmt.Sprintf("Player %d", userID)
}

// WinnerStat is a leaderboard row for a group's hall of fame.
type WinnerStat struct {
	UserID    int64          `db:"user_id" json:"user_id"`
	Username  sql.NullString `db:"username" json:"username,omitempty"`
	FirstName sql.NullString `db:"first_name" json:"first_name,omitempty"`
	LastName  sql.NullString `db:"last_name" json:"last_name,omitempty"`
	Wins      int            `db:"wins" json:"wins"`
}

// DisplayName mirrors Survivor.DisplayName for leaderboard rows.
func (s WinnerStat) DisplayName() string {
	return displayName(s.Username, s.FirstName, s.UserID)
}
