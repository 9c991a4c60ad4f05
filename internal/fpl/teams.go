package fpl

import (
	"context"
	"sort"
	"strings"
)

// Match is a scored team lookup result. Confidence is 0-100; below the
// caller's floor the match should be surfaced for confirmation, never
// silently accepted.
type Match struct {
	Team         Team
	Confidence   int
	Alternatives []Team
}

// Aliases users actually type that neither full nor short names cover.
var teamAliases = map[string]string{
	"spurs":     "Spurs",
	"man u":     "Man Utd",
	"man utd":   "Man Utd",
	"united":    "Man Utd",
	"man city":  "Man City",
	"city":      "Man City",
	"wolves":    "Wolves",
	"forest":    "Nott'm Forest",
	"nottm":     "Nott'm Forest",
	"villa":     "Aston Villa",
	"brighton":  "Brighton",
	"palace":    "Crystal Palace",
	"hammers":   "West Ham",
	"toon":      "Newcastle",
	"newcastle": "Newcastle",
	"saints":    "Southampton",
}

// MatchTeam resolves free-text input to a club using the live team list.
func (c *Client) MatchTeam(ctx context.Context, input string) (*Match, error) {
	teams, err := c.Teams(ctx)
	if err != nil {
		return nil, err
	}
	return matchTeam(input, teams), nil
}

// matchTeam scores input against the team list. Pure, so it is testable
// without the API.
func matchTeam(input string, teams []Team) *Match {
	norm := normalize(input)
	if norm == "" {
		return &Match{Confidence: 0}
	}
	if alias, ok := teamAliases[norm]; ok {
		norm = normalize(alias)
	}

	type scored struct {
		team  Team
		score int
	}
	var candidates []scored
	for _, t := range teams {
		s := scoreAgainst(norm, t)
		if s > 0 {
			candidates = append(candidates, scored{t, s})
		}
	}
	if len(candidates) == 0 {
		return &Match{Confidence: 0}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].team.Name < candidates[j].team.Name
	})

	best := candidates[0]
	m := &Match{Team: best.team, Confidence: best.score}
	for _, c := range candidates[1:] {
		if len(m.Alternatives) == 3 {
			break
		}
		m.Alternatives = append(m.Alternatives, c.team)
	}
	// A second candidate at the same score makes the input ambiguous.
	if len(candidates) > 1 && candidates[1].score == best.score {
		m.Confidence = best.score / 2
	}
	return m
}

// scoreAgainst rates how well normalized input identifies one team.
func scoreAgainst(norm string, t Team) int {
	name := normalize(t.Name)
	short := normalize(t.ShortName)

	switch {
	case norm == name || norm == short:
		return 100
	case strings.HasPrefix(name, norm):
		return 85
	case strings.Contains(name, norm):
		return 70
	case strings.Contains(norm, name):
		return 60
	}

	// Word-level overlap for inputs like "nottingham forest".
	common := 0
	words := strings.Fields(norm)
	for _, w := range words {
		if strings.Contains(name, w) {
			common++
		}
	}
	if common > 0 && len(words) > 0 {
		return 40 * common / len(words)
	}
	return 0
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// BottomSix returns the six weakest clubs by the API's strength rating,
// used by the goodluck lifeline.
func (c *Client) BottomSix(ctx context.Context) ([]Team, error) {
	teams, err := c.Teams(ctx)
	if err != nil {
		return nil, err
	}
	sorted := make([]Team, len(teams))
	copy(sorted, teams)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Strength != sorted[j].Strength {
			return sorted[i].Strength < sorted[j].Strength
		}
		return sorted[i].Name < sorted[j].Name
	})
	if len(sorted) > 6 {
		sorted = sorted[:6]
	}
	return sorted, nil
}
