// Package bot is the Telegram glue: long-polling command dispatch that
// maps each command 1:1 onto a store, engine or lifeline operation and
// renders results and typed errors as text. It also implements the
// scheduler's Notifier.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/laststanding/backend/internal/config"
	"github.com/laststanding/backend/internal/engine"
	"github.com/laststanding/backend/internal/fpl"
	"github.com/laststanding/backend/internal/lifelines"
	"github.com/laststanding/backend/internal/models"
	"github.com/laststanding/backend/internal/store"
)

// App is the running bot.
type App struct {
	api       *tgbotapi.BotAPI
	store     *store.Store
	oracle    *fpl.Client
	lifelines *lifelines.Manager
	cfg       *config.Config
}

func New(cfg *config.Config, st *store.Store, oracle *fpl.Client, ll *lifelines.Manager) (*App, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = false
	log.Printf("[BOT] Authorized as @%s", api.Self.UserName)
	return &App{api: api, store: st, oracle: oracle, lifelines: ll, cfg: cfg}, nil
}

// Run long-polls until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := a.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			return ctx.Err()
		case upd := <-updates:
			if upd.Message == nil || !upd.Message.IsCommand() {
				continue
			}
			if err := a.handleCommand(ctx, upd.Message); err != nil {
				log.Printf("[BOT] /%s in chat %d: %v", upd.Message.Command(), upd.Message.Chat.ID, err)
			}
		}
	}
}

// SendText posts a plain message, swallowing nothing.
func (a *App) SendText(chatID int64, text string) error {
	_, err := a.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (a *App) reply(m *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(m.Chat.ID, text)
	msg.ReplyToMessageID = m.MessageID
	_, err := a.api.Send(msg)
	return err
}

func (a *App) isAdmin(m *tgbotapi.Message) bool {
	return m.From.UserName != "" && strings.EqualFold(m.From.UserName, a.cfg.AdminUsername)
}

func (a *App) handleCommand(ctx context.Context, m *tgbotapi.Message) error {
	// Every interaction refreshes the user and group rows.
	if err := a.store.RegisterUser(m.From.ID, m.From.UserName, m.From.FirstName, m.From.LastName); err != nil {
		return err
	}
	if m.Chat.IsGroup() || m.Chat.IsSuperGroup() {
		if err := a.store.RegisterGroup(m.Chat.ID, m.Chat.Title, m.Chat.Type); err != nil {
			return err
		}
	}

	switch m.Command() {
	case "start":
		return a.cmdStart(m)
	case "pick":
		return a.cmdPick(ctx, m)
	case "change":
		return a.cmdChange(ctx, m)
	case "mypicks":
		return a.cmdMyPicks(m)
	case "survivors":
		return a.cmdSurvivors(m)
	case "winners":
		return a.cmdWinners(m)
	case "pot":
		return a.cmdPot(m)
	case "round":
		return a.cmdRound(ctx, m)
	case "rollover":
		return a.cmdRollover(m)
	case "kill":
		return a.cmdKill(m)
	case "revive":
		return a.cmdRevive(m)
	case "lifelines":
		return a.cmdLifelines(m)
	case "uselifeline":
		return a.cmdUseLifeline(ctx, m)
	default:
		return nil
	}
}

func (a *App) cmdStart(m *tgbotapi.Message) error {
	if !m.Chat.IsGroup() && !m.Chat.IsSuperGroup() {
		return a.reply(m, "Add me to a group chat to start a Last Man Standing competition!")
	}
	if err := a.store.JoinGroup(m.From.ID, m.Chat.ID); err != nil {
		return err
	}
	if _, err := a.store.ActiveCompetition(m.Chat.ID); err != nil {
		return err
	}
	return a.reply(m, fmt.Sprintf(
		"⚽ Welcome to Last Man Standing, %s!\n\n"+
			"Pick one team each gameweek with /pick <team>. If they win, you survive. "+
			"Lose or draw and you're out. You can never pick the same team twice. "+
			"Last one standing takes the pot! 💰", m.From.FirstName))
}

// resolveTeam runs the fuzzy matcher and rejects low-confidence input with
// alternatives instead of silently accepting a guess.
func (a *App) resolveTeam(ctx context.Context, m *tgbotapi.Message, input string) (*fpl.Match, error) {
	if strings.TrimSpace(input) == "" {
		return nil, a.reply(m, "Tell me the team, e.g. /pick Arsenal")
	}
	match, err := a.oracle.MatchTeam(ctx, input)
	if err != nil {
		return nil, a.reply(m, "⚠️ Can't reach the fixtures service right now, try again in a minute.")
	}
	if match.Confidence < a.cfg.MatchConfidenceFloor {
		text := fmt.Sprintf("🤔 Not sure which team you mean by %q.", input)
		if match.Confidence > 0 {
			alts := []string{match.Team.Name}
			for _, t := range match.Alternatives {
				alts = append(alts, t.Name)
			}
			text += " Did you mean: " + strings.Join(alts, ", ") + "?"
		}
		return nil, a.reply(m, text)
	}
	return match, nil
}

func (a *App) cmdPick(ctx context.Context, m *tgbotapi.Message) error {
	match, err := a.resolveTeam(ctx, m, m.CommandArguments())
	if match == nil {
		return err
	}

	gw, err := a.oracle.CurrentGameweek(ctx)
	if err != nil {
		return a.reply(m, "⚠️ Can't reach the fixtures service right now, try again in a minute.")
	}
	open, err := a.oracle.PicksAllowed(ctx, gw)
	if err != nil {
		return a.reply(m, "⚠️ Can't reach the fixtures service right now, try again in a minute.")
	}
	if !open {
		return a.reply(m, fmt.Sprintf("🔒 Picks for gameweek %d are closed. Wait for the next round!", gw))
	}

	err = a.store.RecordPick(m.From.ID, m.Chat.ID, gw, match.Team.ID, match.Team.Name)
	switch {
	case errors.Is(err, store.ErrDuplicatePick):
		return a.reply(m, "You've already picked this gameweek. Use /change <team> to switch.")
	case errors.Is(err, store.ErrTeamAlreadyUsed):
		return a.reply(m, fmt.Sprintf("🚫 You've already used %s this competition. Pick someone else!", match.Team.Name))
	case errors.Is(err, store.ErrUserEliminated):
		return a.reply(m, "💀 You're eliminated. Wait for the next competition (or try a /uselifeline coinflip).")
	case err != nil:
		return err
	}
	return a.reply(m, fmt.Sprintf("✅ %s locked in for gameweek %d. Good luck!", match.Team.Name, gw))
}

func (a *App) cmdChange(ctx context.Context, m *tgbotapi.Message) error {
	match, err := a.resolveTeam(ctx, m, m.CommandArguments())
	if match == nil {
		return err
	}

	gw, err := a.oracle.CurrentGameweek(ctx)
	if err != nil {
		return a.reply(m, "⚠️ Can't reach the fixtures service right now, try again in a minute.")
	}
	open, err := a.oracle.PicksAllowed(ctx, gw)
	if err != nil {
		return a.reply(m, "⚠️ Can't reach the fixtures service right now, try again in a minute.")
	}
	if !open {
		return a.reply(m, fmt.Sprintf("🔒 Picks for gameweek %d are closed, no changes allowed.", gw))
	}

	oldTeam, err := a.store.ChangePick(m.From.ID, m.Chat.ID, gw, match.Team.ID, match.Team.Name)
	switch {
	case errors.Is(err, store.ErrNoExistingPick):
		return a.reply(m, "You have no pick to change. Use /pick <team> first.")
	case errors.Is(err, store.ErrTeamAlreadyUsed):
		return a.reply(m, fmt.Sprintf("🚫 %s is blocked for you this competition.", match.Team.Name))
	case errors.Is(err, store.ErrUserEliminated):
		return a.reply(m, "💀 You're eliminated, nothing left to change.")
	case err != nil:
		return err
	}
	return a.reply(m, fmt.Sprintf(
		"🔄 Changed to %s for gameweek %d.\n⚠️ %s is now permanently blocked for you this competition!",
		match.Team.Name, gw, oldTeam))
}

func (a *App) cmdMyPicks(m *tgbotapi.Message) error {
	picks, err := a.store.UserPicks(m.From.ID, m.Chat.ID)
	if err != nil {
		return err
	}
	if len(picks) == 0 {
		return a.reply(m, "No picks yet this competition. Start with /pick <team>.")
	}
	var b strings.Builder
	b.WriteString("📋 Your picks this competition:\n")
	for _, p := range picks {
		icon := "⏳"
		switch p.Result {
		case "won":
			icon = "✅"
		case "lost":
			icon = "❌"
		case "void":
			icon = "➖"
		}
		fmt.Fprintf(&b, "GW%d: %s %s\n", p.Gameweek, p.TeamName, icon)
	}
	return a.reply(m, b.String())
}

func (a *App) cmdSurvivors(m *tgbotapi.Message) error {
	survivors, err := a.store.CurrentSurvivors(m.Chat.ID)
	if err != nil {
		return err
	}
	if len(survivors) == 0 {
		return a.reply(m, "Nobody is in the competition yet. /start to join!")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🛡️ %d survivors:\n", len(survivors))
	for _, s := range survivors {
		fmt.Fprintf(&b, "  • %s\n", s.DisplayName())
	}
	return a.reply(m, b.String())
}

func (a *App) cmdWinners(m *tgbotapi.Message) error {
	stats, err := a.store.WinnerStats(m.Chat.ID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return a.reply(m, "No winners yet. The pot is still up for grabs! 💰")
	}
	var b strings.Builder
	b.WriteString("🏆 Hall of fame:\n")
	for i, s := range stats {
		medal := "🏅"
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		fmt.Fprintf(&b, "%s %s - %d wins\n", medal, s.DisplayName(), s.Wins)
	}
	return a.reply(m, b.String())
}

func (a *App) cmdPot(m *tgbotapi.Message) error {
	total, players, rollovers, err := a.store.Pot(m.Chat.ID)
	if err != nil {
		return err
	}
	return a.reply(m, renderPot(total, players, rollovers))
}

func (a *App) cmdRound(ctx context.Context, m *tgbotapi.Message) error {
	gw, err := a.oracle.CurrentGameweek(ctx)
	if err != nil {
		return a.reply(m, "⚠️ Can't reach the fixtures service right now.")
	}
	deadline, err := a.oracle.Deadline(ctx, gw)
	if err != nil {
		return a.reply(m, "⚠️ Can't reach the fixtures service right now.")
	}
	open, err := a.oracle.PicksAllowed(ctx, gw)
	if err != nil {
		return a.reply(m, "⚠️ Can't reach the fixtures service right now.")
	}
	status := "🔒 closed"
	if open {
		status = fmt.Sprintf("🟢 open until %s", deadline.UTC().Format("Mon 2 Jan 15:04 MST"))
	}
	return a.reply(m, fmt.Sprintf("⚽ Gameweek %d\nPicks: %s", gw, status))
}

func (a *App) cmdRollover(m *tgbotapi.Message) error {
	if !a.isAdmin(m) {
		return a.reply(m, "🚫 Admin only.")
	}
	if err := a.store.IncrementRollover(m.Chat.ID); err != nil {
		return err
	}
	total, players, rollovers, err := a.store.Pot(m.Chat.ID)
	if err != nil {
		return err
	}
	return a.reply(m, fmt.Sprintf("🔄 Rollover applied (now %d).\n\n%s", rollovers, renderPot(total, players, rollovers)))
}

// targetUser resolves the player an admin command acts on: a reply to
// their message, or a numeric id argument. Known ids render with their
// stored display name.
func (a *App) targetUser(m *tgbotapi.Message) (int64, string, error) {
	if m.ReplyToMessage != nil && m.ReplyToMessage.From != nil {
		from := m.ReplyToMessage.From
		return from.ID, from.FirstName, nil
	}
	arg := strings.TrimSpace(m.CommandArguments())
	if arg == "" {
		return 0, "", errors.New("no target")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "@"), 10, 64)
	if err != nil {
		return 0, "", errors.New("no target")
	}
	name := arg
	if u, uerr := a.store.GetUser(id); uerr == nil && u != nil {
		name = u.DisplayName()
	}
	return id, name, nil
}

func (a *App) cmdKill(m *tgbotapi.Message) error {
	if !a.isAdmin(m) {
		return a.reply(m, "🚫 Admin only.")
	}
	id, name, err := a.targetUser(m)
	if err != nil {
		return a.reply(m, "Reply to the player's message or pass their id: /kill 12345")
	}
	if err := a.store.Eliminate(id, m.Chat.ID); err != nil {
		return err
	}
	return a.reply(m, fmt.Sprintf("⚰️ %s has been eliminated by the admin. Brutal.", name))
}

func (a *App) cmdRevive(m *tgbotapi.Message) error {
	if !a.isAdmin(m) {
		return a.reply(m, "🚫 Admin only.")
	}
	id, name, err := a.targetUser(m)
	if err != nil {
		return a.reply(m, "Reply to the player's message or pass their id: /revive 12345")
	}
	if err := a.store.Revive(id, m.Chat.ID); err != nil {
		return err
	}
	return a.reply(m, fmt.Sprintf("✨ %s is back from the dead!", name))
}

func (a *App) cmdLifelines(m *tgbotapi.Message) error {
	season := lifelines.Season(time.Now())
	avail, err := a.lifelines.Available(m.Chat.ID, m.From.ID, season)
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🛟 Your lifelines for %s:\n", season)
	for _, l := range lifelines.All {
		state := "✅ available"
		if !avail[l.Type] {
			state = "❌ used"
		}
		fmt.Fprintf(&b, "  • %s (%s): %s - %s\n", l.Name, l.Type, state, l.Description)
	}
	b.WriteString("\nUse one with /uselifeline <type>, e.g. /uselifeline coinflip")
	return a.reply(m, b.String())
}

func (a *App) cmdUseLifeline(ctx context.Context, m *tgbotapi.Message) error {
	args := strings.Fields(m.CommandArguments())
	if len(args) == 0 {
		return a.reply(m, "Which one? /uselifeline coinflip | goodluck | forcechange")
	}
	kind, err := lifelines.Parse(args[0])
	if err != nil {
		return a.reply(m, fmt.Sprintf("Unknown lifeline %q. Try /lifelines.", args[0]))
	}
	season := lifelines.Season(time.Now())

	switch kind {
	case lifelines.Coinflip:
		revived, err := a.lifelines.UseCoinflip(m.Chat.ID, m.From.ID, season)
		if errors.Is(err, lifelines.ErrAlreadyUsed) {
			return a.reply(m, "❌ You've already burned your coinflip this season.")
		}
		if err != nil {
			return err
		}
		if revived {
			return a.reply(m, "🪙 HEADS! You've been revived and re-enter the current round! 🎉")
		}
		return a.reply(m, "🪙 Tails. The coin has spoken - you stay eliminated. 😢")

	case lifelines.GoodLuck:
		targetID, targetName, terr := a.targetUser(m)
		if terr != nil {
			return a.reply(m, "Reply to the target's message: /uselifeline goodluck")
		}
		bottom, err := a.oracle.BottomSix(ctx)
		if err != nil {
			return a.reply(m, "⚠️ Can't fetch the table right now, try again in a minute.")
		}
		teamNames := make([]string, len(bottom))
		for i, t := range bottom {
			teamNames[i] = t.Name
		}
		err = a.lifelines.UseGoodLuck(m.Chat.ID, m.From.ID, targetID, season, teamNames)
		if errors.Is(err, lifelines.ErrAlreadyUsed) {
			return a.reply(m, "❌ You've already used Good Luck this season.")
		}
		if err != nil {
			return err
		}
		return a.reply(m, fmt.Sprintf("🎯 %s must pick from the bottom 6 next round: %s. Good luck! 😈",
			targetName, strings.Join(teamNames, ", ")))

	case lifelines.ForceChange:
		targetID, targetName, terr := a.targetUser(m)
		if terr != nil {
			return a.reply(m, "Reply to the target's message: /uselifeline forcechange")
		}
		gw, err := a.oracle.CurrentGameweek(ctx)
		if err != nil {
			return a.reply(m, "⚠️ Can't reach the fixtures service right now.")
		}
		pick, err := a.store.PickForRound(targetID, m.Chat.ID, gw)
		if err != nil {
			return err
		}
		if pick == nil {
			return a.reply(m, fmt.Sprintf("%s has no pick to force-change yet.", targetName))
		}
		err = a.lifelines.UseForceChange(m.Chat.ID, m.From.ID, targetID, season, pick.TeamName)
		if errors.Is(err, lifelines.ErrAlreadyUsed) {
			return a.reply(m, "❌ You've already used Force Change this season.")
		}
		if err != nil {
			return err
		}
		return a.reply(m, fmt.Sprintf("🔄 %s is forced to abandon %s and /change before the deadline!",
			targetName, pick.TeamName))
	}
	return nil
}

// NotifyOutcome implements scheduler.Notifier: engine results become a
// group announcement, roasts included.
func (a *App) NotifyOutcome(out *engine.Outcome) {
	text := renderOutcome(out)
	if text == "" {
		return
	}
	if err := a.SendText(out.ChatID, text); err != nil {
		log.Printf("[BOT] Announce to %d failed: %v", out.ChatID, err)
	}
}

// NotifyReminder implements scheduler.Notifier.
func (a *App) NotifyReminder(chatID int64, gameweek int, deadline time.Time, missing []models.Survivor) {
	if err := a.SendText(chatID, renderReminder(gameweek, deadline, missing)); err != nil {
		log.Printf("[BOT] Reminder to %d failed: %v", chatID, err)
	}
}
