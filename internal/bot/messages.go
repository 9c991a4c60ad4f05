package bot

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/laststanding/backend/internal/engine"
	"github.com/laststanding/backend/internal/models"
)

// Roast templates. {username} is substituted; picked uniformly at random.
var eliminationRoasts = []string{
	"💀 {username} just got ELIMINATED! Your football knowledge is as weak as your team choice! 🤡",
	"🚮 {username} is OUT! Maybe stick to watching Netflix instead of football? 📺💔",
	"⚰️ RIP {username} - eliminated faster than your team's hopes and dreams! 😂💀",
	"🤦‍♂️ {username} picked a LOSER and became one! Better luck in the Championship! 📉",
	"💸 {username} just threw away their chances like their team threw away the match! 🗑️",
	"📉 {username} is DONE! Your football predictions are worse than the weather forecast! ⛈️",
	"🍅 {username} got REKT! Time to delete your football apps and take up knitting! 🧶",
	"🎯 {username} missed the target completely! Time to find a new hobby! 🎨",
	"🔥 {username} went down in FLAMES! Your pick was hotter garbage than a dumpster fire! 🔥🗑️",
}

var deadlineMissRoasts = []string{
	"🤦‍♂️ What a fool {username} didn't pick in time! Too busy watching paint dry? 🎨😴",
	"⏰ {username} missed the deadline! Did your alarm clock break or is your brain broken? 🧠💔",
	"🐌 {username} was slower than a snail! Maybe set 47 alarms next time? ⏰⏰⏰",
	"😴 {username} was probably napping while the deadline passed! Wake up, sleepyhead! 💤",
	"⚡ BREAKING: {username} discovered how to lose without even playing! Revolutionary! 📰",
	"📱 {username} probably saw the reminder and thought 'I'll do it later'... Famous last words! ⚰️",
	"🤖 {username} set a new record: eliminated without even trying! Efficiency at its finest! 🏆",
}

var roastRand = rand.New(rand.NewSource(time.Now().UnixNano()))

func roast(templates []string, name string) string {
	t := templates[roastRand.Intn(len(templates))]
	return strings.ReplaceAll(t, "{username}", name)
}

func names(players []models.Survivor) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.DisplayName()
	}
	return out
}

// renderOutcome turns an engine outcome into the group announcement.
func renderOutcome(out *engine.Outcome) string {
	var b strings.Builder

	for _, p := range out.DeadlineMissers {
		b.WriteString(roast(deadlineMissRoasts, p.DisplayName()))
		b.WriteString("\n\n")
	}
	for _, p := range out.Eliminated {
		b.WriteString(roast(eliminationRoasts, p.DisplayName()))
		b.WriteString("\n\n")
	}

	switch out.Kind {
	case engine.OutcomeWipe:
		fmt.Fprintf(&b, "☠️ NO JOINT WINNERS! Nobody survived gameweek %d - everyone is out!\n", out.Gameweek)
		fmt.Fprintf(&b, "💰 The pot of £%d rolls over (rollover #%d).\n", out.Pot, out.Rollovers)
		b.WriteString("🎯 A new competition has started - pick again and do better this time!")

	case engine.OutcomeWinner:
		fmt.Fprintf(&b, "🏆 WINNER FOUND!\n\n")
		fmt.Fprintf(&b, "👑 %s wins the competition and takes the pot of £%d!\n\n", out.Winner.DisplayName(), out.Pot)
		b.WriteString("🎯 A new competition has started with a fresh pot. Good luck!")

	case engine.OutcomeRollover:
		fmt.Fprintf(&b, "🔄 Automatic rollover applied!\n\n")
		fmt.Fprintf(&b, "👥 %d survivors remain: %s\n", len(out.Survivors), strings.Join(names(out.Survivors), ", "))
		fmt.Fprintf(&b, "💰 The pot rolls over (rollover #%d).\n", out.Rollovers)
		b.WriteString("🎯 New competition starting - good luck!")

	case engine.OutcomeContinue:
		if len(out.Survivors) > 0 {
			fmt.Fprintf(&b, "✅ Gameweek %d done. %d players survive: %s",
				out.Gameweek, len(out.Survivors), strings.Join(names(out.Survivors), ", "))
		}
	}

	return strings.TrimSpace(b.String())
}

// renderReminder builds the 24h deadline nudge.
func renderReminder(gameweek int, deadline time.Time, missing []models.Survivor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏰ Gameweek %d deadline is %s!\n\n", gameweek, deadline.UTC().Format("Mon 15:04 MST"))
	b.WriteString("Still no pick from:\n")
	for _, p := range missing {
		fmt.Fprintf(&b, "  • %s\n", p.DisplayName())
	}
	b.WriteString("\nUse /pick <team> before it's too late - no pick means elimination! 💀")
	return b.String()
}

// renderPot formats the pot breakdown.
func renderPot(total, players, rollovers int) string {
	var b strings.Builder
	b.WriteString("💰 PRIZE POT\n\n")
	fmt.Fprintf(&b, "🏆 Total pot: £%d\n", total)
	fmt.Fprintf(&b, "👥 Active players: %d\n", players)
	switch {
	case rollovers == 0:
		b.WriteString("💡 Base pot: £2 per player\n")
	default:
		fmt.Fprintf(&b, "🔄 Rollovers: %d\n", rollovers)
		fmt.Fprintf(&b, "💡 Current stake: £%d per player\n", total/max(players, 1))
	}
	return b.String()
}
