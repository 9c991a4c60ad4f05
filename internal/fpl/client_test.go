package fpl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testServer(t *testing.T, deadline time.Time, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap-static/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		fmt.Fprintf(w, `{
			"events": [
				{"id": 4, "name": "Gameweek 4", "deadline_time": %q, "finished": true, "is_current": false, "is_next": false},
				{"id": 5, "name": "Gameweek 5", "deadline_time": %q, "finished": false, "is_current": true, "is_next": false},
				{"id": 6, "name": "Gameweek 6", "deadline_time": %q, "finished": false, "is_current": false, "is_next": true}
			],
			"teams": [
				{"id": 1, "name": "Arsenal", "short_name": "ARS", "strength": 5},
				{"id": 7, "name": "Everton", "short_name": "EVE", "strength": 3}
			]
		}`,
			deadline.Add(-7*24*time.Hour).Format(time.RFC3339),
			deadline.Format(time.RFC3339),
			deadline.Add(7*24*time.Hour).Format(time.RFC3339))
	})
	mux.HandleFunc("/fixtures/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("event") != "5" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[
			{"id": 41, "event": 5, "team_h": 1, "team_a": 7, "team_h_score": 2, "team_a_score": 0, "finished": true, "kickoff_time": "2026-08-22T14:00:00Z"},
			{"id": 42, "event": 5, "team_h": 12, "team_a": 13, "team_h_score": null, "team_a_score": null, "finished": false, "kickoff_time": "2026-08-23T15:30:00Z"}
		]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCurrentGameweek(t *testing.T) {
	var hits int32
	srv := testServer(t, time.Now().Add(24*time.Hour), &hits)
	c := NewClient(srv.URL, 5*time.Second, time.Minute, nil)

	gw, err := c.CurrentGameweek(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gw != 5 {
		t.Fatalf("gameweek = %d, want 5", gw)
	}
}

func TestDeadlineAndPicksAllowed(t *testing.T) {
	var hits int32
	deadline := time.Now().Add(24 * time.Hour).Truncate(time.Second).UTC()
	srv := testServer(t, deadline, &hits)
	c := NewClient(srv.URL, 5*time.Second, time.Minute, nil)

	got, err := c.Deadline(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(deadline) {
		t.Fatalf("deadline = %v, want %v", got, deadline)
	}

	open, err := c.PicksAllowed(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if !open {
		t.Fatal("picks should be open 24h before deadline")
	}

	closed, err := c.PicksAllowed(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if closed {
		t.Fatal("picks should be closed for a past gameweek")
	}
}

func TestFixturesParsesNullScores(t *testing.T) {
	var hits int32
	srv := testServer(t, time.Now(), &hits)
	c := NewClient(srv.URL, 5*time.Second, time.Minute, nil)

	fixtures, err := c.Fixtures(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("got %d fixtures, want 2", len(fixtures))
	}
	if fixtures[0].TeamHScore == nil || *fixtures[0].TeamHScore != 2 {
		t.Fatal("finished fixture lost its score")
	}
	if fixtures[1].TeamHScore != nil {
		t.Fatal("unplayed fixture should have a nil score")
	}
}

func TestUnavailableWrapsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, time.Minute, nil)
	_, err := c.CurrentGameweek(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestIsActive(t *testing.T) {
	var hits int32
	srv := testServer(t, time.Now(), &hits)
	c := NewClient(srv.URL, 5*time.Second, time.Minute, nil)

	active, err := c.IsActive(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if !active {
		t.Fatal("current unfinished gameweek should be active")
	}
	done, err := c.IsActive(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Fatal("finished gameweek should not be active")
	}
}
