package store

import "errors"

// Domain errors returned as typed results. The Telegram layer is solely
// responsible for turning these into user-facing text.
var (
	// ErrDuplicatePick means a non-blocked pick already exists for the
	// (user, group, gameweek) in the active competition.
	ErrDuplicatePick = errors.New("pick already made for this gameweek")

	// ErrTeamAlreadyUsed means the team appears in the user's pick or
	// blocked-team history for the active competition in this group.
	ErrTeamAlreadyUsed = errors.New("team already used in this competition")

	// ErrNoExistingPick means a change was requested but there is no pick
	// to change.
	ErrNoExistingPick = errors.New("no existing pick for this gameweek")

	// ErrUserEliminated means an inactive member attempted a pick action.
	ErrUserEliminated = errors.New("user is eliminated in this group")
)
