// Package fpl talks to the public Fantasy Premier League API. It is the
// single source of truth for gameweeks, deadlines, fixtures and results.
package fpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable means the FPL API could not be reached or returned a bad
// response. Callers retry on the next tick rather than guessing.
var ErrUnavailable = errors.New("fpl api unavailable")

// Event is one gameweek as reported by bootstrap-static.
type Event struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DeadlineTime string `json:"deadline_time"`
	Finished     bool   `json:"finished"`
	IsCurrent    bool   `json:"is_current"`
	IsNext       bool   `json:"is_next"`
}

// Team is one Premier League club from bootstrap-static.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Strength  int    `json:"strength"`
}

// Fixture is one match within a gameweek. Scores are pointers because the
// API sends null until kickoff.
type Fixture struct {
	ID          int    `json:"id"`
	Event       int    `json:"event"`
	TeamH       int    `json:"team_h"`
	TeamA       int    `json:"team_a"`
	TeamHScore  *int   `json:"team_h_score"`
	TeamAScore  *int   `json:"team_a_score"`
	Finished    bool   `json:"finished"`
	KickoffTime string `json:"kickoff_time"`
}

type bootstrap struct {
	Events []Event `json:"events"`
	Teams  []Team  `json:"teams"`
}

// Client fetches FPL data over HTTP, caching raw payloads in Redis so the
// hourly scheduler ticks do not hammer the API. A nil or unreachable Redis
// degrades to direct calls.
type Client struct {
	baseURL  string
	http     *http.Client
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewClient builds a Client. rdb may be nil.
func NewClient(baseURL string, timeout, cacheTTL time.Duration, rdb *redis.Client) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		rdb:      rdb,
		cacheTTL: cacheTTL,
	}
}

// fetch returns the raw payload for path, consulting the Redis cache first.
func (c *Client) fetch(ctx context.Context, path, cacheKey string) ([]byte, error) {
	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode, path)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, cacheKey, body, c.cacheTTL).Err(); err != nil {
			log.Printf("[FPL] Cache write failed for %s: %v", cacheKey, err)
		}
	}
	return body, nil
}

func (c *Client) bootstrap(ctx context.Context) (*bootstrap, error) {
	body, err := c.fetch(ctx, "/bootstrap-static/", "fpl:bootstrap")
	if err != nil {
		return nil, err
	}
	var b bootstrap
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("%w: decode bootstrap: %v", ErrUnavailable, err)
	}
	return &b, nil
}

// CurrentGameweek returns the id of the current gameweek, falling back to
// the next one between seasons.
func (c *Client) CurrentGameweek(ctx context.Context) (int, error) {
	b, err := c.bootstrap(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range b.Events {
		if e.IsCurrent {
			return e.ID, nil
		}
	}
	for _, e := range b.Events {
		if e.IsNext {
			return e.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: no current or next gameweek in bootstrap", ErrUnavailable)
}

// Deadline returns the pick deadline for the gameweek.
func (c *Client) Deadline(ctx context.Context, gameweek int) (time.Time, error) {
	b, err := c.bootstrap(ctx)
	if err != nil {
		return time.Time{}, err
	}
	for _, e := range b.Events {
		if e.ID == gameweek {
			t, err := time.Parse(time.RFC3339, e.DeadlineTime)
			if err != nil {
				return time.Time{}, fmt.Errorf("%w: bad deadline %q: %v", ErrUnavailable, e.DeadlineTime, err)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unknown gameweek %d", ErrUnavailable, gameweek)
}

// IsActive reports whether the gameweek has started but not finished.
// Results must only be applied once this returns false for a started week.
func (c *Client) IsActive(ctx context.Context, gameweek int) (bool, error) {
	b, err := c.bootstrap(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range b.Events {
		if e.ID == gameweek {
			return e.IsCurrent && !e.Finished, nil
		}
	}
	return false, fmt.Errorf("%w: unknown gameweek %d", ErrUnavailable, gameweek)
}

// Finished reports whether the gameweek is fully finished.
func (c *Client) Finished(ctx context.Context, gameweek int) (bool, error) {
	b, err := c.bootstrap(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range b.Events {
		if e.ID == gameweek {
			return e.Finished, nil
		}
	}
	return false, fmt.Errorf("%w: unknown gameweek %d", ErrUnavailable, gameweek)
}

// PicksAllowed reports whether picks are still open for the gameweek,
// i.e. the deadline has not passed.
func (c *Client) PicksAllowed(ctx context.Context, gameweek int) (bool, error) {
	deadline, err := c.Deadline(ctx, gameweek)
	if err != nil {
		return false, err
	}
	return time.Now().Before(deadline), nil
}

// Fixtures returns the gameweek's fixtures.
func (c *Client) Fixtures(ctx context.Context, gameweek int) ([]Fixture, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("/fixtures/?event=%d", gameweek), fmt.Sprintf("fpl:fixtures:%d", gameweek))
	if err != nil {
		return nil, err
	}
	var fixtures []Fixture
	if err := json.Unmarshal(body, &fixtures); err != nil {
		return nil, fmt.Errorf("%w: decode fixtures: %v", ErrUnavailable, err)
	}
	return fixtures, nil
}

// Teams returns the season's clubs.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	b, err := c.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	return b.Teams, nil
}
