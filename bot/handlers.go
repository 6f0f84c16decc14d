/* handlers.go
 * Contains testable handler methods that accept DiscordSession interface
 */

package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"
	"github.com/homebackend/gnome-live-tennis-sub000/api/api"
	"github.com/homebackend/gnome-live-tennis-sub000/api/liveview"
)

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Live Tennis Bot\n")
	res.WriteString("`$matches`: lists the matches of all tracked tournaments. Selected matches are marked with [x]\n")
	res.WriteString("`$select <player or match id>`: adds or removes a match from the live view. Matches are found by fuzzy matching on the player names, names with spaces need to be encased in \" (e.g. \"de Minaur\")\n")
	res.WriteString("`$auto <tournament>`: toggles automatic selection of every new match of a tournament\n")
	res.WriteString("`$status`: shows when the scores were last refreshed and what the live view is showing\n")
	res.WriteString("`$refresh`: refreshes the scores now\n")
	session.ChannelMessageSend(message.ChannelID, res.String())
}

// matchesHandler handles the $matches command with a DiscordSession interface
func (b *Bot) matchesHandler(session DiscordSession, message *discordgo.MessageCreate) {
	matches := b.APIPtr.Matches()
	if len(matches) == 0 {
		session.ChannelMessageSend(message.ChannelID, "No matches are being tracked")
		return
	}

	var res strings.Builder
	event := ""
	for _, m := range matches {
		if m.Event != event || event == "" {
			event = m.Event
			res.WriteString(fmt.Sprintf("**%s** (%s)\n", m.Event, m.Tour))
		}
		mark := "[ ]"
		if m.Selected {
			mark = "[x]"
		}
		details := m.Status
		if m.Score != "" {
			details += " " + m.Score
		}
		res.WriteString(fmt.Sprintf("%s %s, %s: %s `%s`\n", mark, m.Name, m.Round, strings.TrimSpace(details), m.ID))
	}
	if err := sendChunked(session, message.ChannelID, res.String()); err != nil {
		b.log.WithError(err).Warn("Error sending match list")
	}
}

// selectHandler handles the $select command with a DiscordSession interface
func (b *Bot) selectHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	query, err := commandArgument(message.Content)
	if err != nil || query == "" {
		session.ChannelMessageSend(message.ChannelID, "Usage: `$select <player or match id>`")
		return
	}

	match, selected, err := b.APIPtr.ToggleMatch(ctx, query)
	var res string
	switch {
	case errors.Is(err, api.ErrNoMatch):
		res = fmt.Sprintf("No match found for \"%s\". Use $matches to see the tracked matches", query)
	case errors.Is(err, api.ErrAmbiguous):
		res = fmt.Sprintf("\"%s\" matches more than one match, use the match id instead", query)
	case err != nil && match == nil:
		b.log.WithError(err).Error("Error toggling match")
		res = "An error occured selecting the match"
	case selected:
		res = fmt.Sprintf("%s will be shown in the live view", match.DisplayName)
	default:
		res = fmt.Sprintf("%s will no longer be shown in the live view", match.DisplayName)
	}
	session.ChannelMessageSend(message.ChannelID, res)
}

// autoHandler handles the $auto command with a DiscordSession interface
func (b *Bot) autoHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	query, err := commandArgument(message.Content)
	if err != nil || query == "" {
		session.ChannelMessageSend(message.ChannelID, "Usage: `$auto <tournament>`")
		return
	}

	event, on, err := b.APIPtr.ToggleAutoView(ctx, query)
	var res string
	switch {
	case errors.Is(err, api.ErrNoMatch):
		res = fmt.Sprintf("No tournament found for \"%s\"", query)
	case errors.Is(err, api.ErrAmbiguous):
		res = fmt.Sprintf("\"%s\" matches more than one tournament, use the tournament id instead", query)
	case err != nil:
		b.log.WithError(err).Error("Error toggling auto view")
		res = "An error occured updating the tournament"
	case on:
		res = fmt.Sprintf("New matches of %s will be shown automatically", event.Title)
	default:
		res = fmt.Sprintf("New matches of %s will no longer be shown automatically", event.Title)
	}
	session.ChannelMessageSend(message.ChannelID, res)
}

// statusHandler handles the $status command with a DiscordSession interface
func (b *Bot) statusHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if err := sendChunked(session, message.ChannelID, b.formatStatus(b.APIPtr.Status())); err != nil {
		b.log.WithError(err).Warn("Error sending status")
	}
}

// refreshHandler handles the $refresh command with a DiscordSession interface
func (b *Bot) refreshHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	status := b.APIPtr.Refresh(ctx)
	if err := sendChunked(session, message.ChannelID, "Scores refreshed\n"+b.formatStatus(status)); err != nil {
		b.log.WithError(err).Warn("Error sending status")
	}
}

func (b *Bot) formatStatus(status liveview.Status) string {
	var res strings.Builder
	if status.LastRefresh.IsZero() {
		res.WriteString("Scores have not been refreshed yet\n")
	} else {
		state := "ok"
		if !status.OK {
			state = "failed"
		}
		res.WriteString(fmt.Sprintf("Last refresh: %s (%s)\n", status.LastRefresh.Format("15:04:05"), state))
	}

	sources := make([]string, 0, len(status.Sources))
	for name, s := range status.Sources {
		sources = append(sources, fmt.Sprintf("%s: %s", name, s))
	}
	sort.Strings(sources)
	if len(sources) > 0 {
		res.WriteString("Sources: " + strings.Join(sources, ", ") + "\n")
	}

	if status.Hidden || len(status.Windows) == 0 {
		res.WriteString("Live view: nothing to show\n")
		return res.String()
	}
	res.WriteString("Live view:\n")
	for _, id := range status.Windows {
		if m, ok := b.APIPtr.Runner.Match(id); ok {
			res.WriteString("```\n" + liveview.Card(m, 40) + "\n```\n")
		}
	}
	return res.String()
}

// commandArgument returns everything after the command word, with quotes removed
func commandArgument(content string) (string, error) {
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return "", err
	}
	parts, err := spaceSplitter.Split(content)
	if err != nil {
		return "", err
	}
	var args []string
	for _, p := range parts[1:] {
		p = strings.TrimSpace(strings.NewReplacer("\"", "", "“", "", "”", "").Replace(p))
		if p != "" {
			args = append(args, p)
		}
	}
	return strings.Join(args, " "), nil
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author.ID == botUserID {
		return
	}

	// Route to appropriate handler
	switch {
	case startsWith(message.Content, "$help"):
		b.helpMessageHandler(session, message)

	case startsWith(message.Content, "$matches"):
		b.matchesHandler(session, message)

	case startsWith(message.Content, "$select"):
		b.selectHandler(ctx, session, message)

	case startsWith(message.Content, "$auto"):
		b.autoHandler(ctx, session, message)

	case startsWith(message.Content, "$status"):
		b.statusHandler(session, message)

	case startsWith(message.Content, "$refresh"):
		b.refreshHandler(ctx, session, message)
	}
}
