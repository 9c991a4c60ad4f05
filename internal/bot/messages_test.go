package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/laststanding/backend/internal/engine"
	"github.com/laststanding/backend/internal/models"
)

func player(id int64, name string) models.Survivor {
	s := models.Survivor{UserID: id}
	s.FirstName.String = name
	s.FirstName.Valid = true
	return s
}

func TestRenderOutcomeWipe(t *testing.T) {
	out := &engine.Outcome{
		ChatID:          -1,
		Gameweek:        5,
		Kind:            engine.OutcomeWipe,
		DeadlineMissers: []models.Survivor{player(1, "Alice")},
		Eliminated:      []models.Survivor{player(2, "Bob"), player(3, "Cara")},
		Pot:             60,
		Rollovers:       1,
	}
	text := renderOutcome(out)
	for _, want := range []string{"Alice", "Bob", "Cara", "NO JOINT WINNERS", "£60"} {
		if !strings.Contains(text, want) {
			t.Errorf("wipe announcement missing %q:\n%s", want, text)
		}
	}
}

func TestRenderOutcomeWinner(t *testing.T) {
	w := player(1, "Alice")
	out := &engine.Outcome{
		Gameweek:   5,
		Kind:       engine.OutcomeWinner,
		Eliminated: []models.Survivor{player(2, "Bob")},
		Winner:     &w,
		Pot:        20,
	}
	text := renderOutcome(out)
	if !strings.Contains(text, "Alice wins") || !strings.Contains(text, "£20") {
		t.Fatalf("winner announcement wrong:\n%s", text)
	}
	if !strings.Contains(text, "Bob") {
		t.Fatalf("eliminated player not roasted:\n%s", text)
	}
}

func TestRenderOutcomeContinueListsSurvivors(t *testing.T) {
	out := &engine.Outcome{
		Gameweek:  5,
		Kind:      engine.OutcomeContinue,
		Survivors: []models.Survivor{player(1, "Alice"), player(2, "Bob")},
	}
	text := renderOutcome(out)
	if !strings.Contains(text, "2 players survive") {
		t.Fatalf("continue announcement wrong:\n%s", text)
	}
}

func TestRoastSubstitutesName(t *testing.T) {
	got := roast(eliminationRoasts, "Alice")
	if strings.Contains(got, "{username}") {
		t.Fatalf("placeholder left in roast: %s", got)
	}
	if !strings.Contains(got, "Alice") {
		t.Fatalf("name missing from roast: %s", got)
	}
}

func TestRenderReminder(t *testing.T) {
	deadline := time.Date(2026, 8, 22, 17, 30, 0, 0, time.UTC)
	text := renderReminder(3, deadline, []models.Survivor{player(1, "Alice")})
	for _, want := range []string{"Gameweek 3", "Alice", "/pick"} {
		if !strings.Contains(text, want) {
			t.Errorf("reminder missing %q:\n%s", want, text)
		}
	}
}

func TestRenderPot(t *testing.T) {
	text := renderPot(60, 4, 2)
	for _, want := range []string{"£60", "4", "£15 per player"} {
		if !strings.Contains(text, want) {
			t.Errorf("pot message missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(renderPot(8, 4, 0), "£2 per player") {
		t.Error("base pot message missing the £2 stake")
	}
}
