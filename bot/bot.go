/* bot.go
 * Contains the Discord host. The bot renders the runner's menu as channel notifications and answers the commands
 * handled in handlers.go. Requires a discord bot token and the id of the channel notifications go to, both of which
 * are passed in from main.go
 */

package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/homebackend/gnome-live-tennis-sub000/api/api"
	"github.com/homebackend/gnome-live-tennis-sub000/api/runner"
	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"github.com/sirupsen/logrus"
)

// Discord rejects messages longer than 2000 characters
const maxMessageLength = 1900

type Bot struct {
	BotToken  string
	ChannelID string
	APIPtr    *api.API

	log logrus.FieldLogger

	mu      sync.Mutex
	ctx     context.Context
	session DiscordSession
	// names of the known matches by composite id, used for removal and selection notices
	names      map[string]string
	lastStatus *bool
}

func NewBot(botToken string, channelID string, log logrus.FieldLogger) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if channelID == "" {
		return nil, fmt.Errorf("channelID is required but none was provided")
	}

	return &Bot{
		BotToken:  botToken,
		ChannelID: channelID,
		log:       log.WithField("component", "discord"),
		ctx:       context.Background(),
		names:     make(map[string]string),
	}, nil
}

func (b *Bot) setSession(ctx context.Context, session DiscordSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctx = ctx
	b.session = session
}

func (b *Bot) requestContext() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx
}

// notify posts to the notification channel. Dropped while the bot is not connected
func (b *Bot) notify(content string) {
	b.mu.Lock()
	session := b.session
	b.mu.Unlock()
	if session == nil {
		b.log.WithField("content", content).Debug("Not connected, dropping notification")
		return
	}
	if _, err := session.ChannelMessageSend(b.ChannelID, content); err != nil {
		b.log.WithError(err).Warn("Error sending notification")
	}
}

func (b *Bot) name(matchID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if name, ok := b.names[matchID]; ok {
		return name
	}
	return matchID
}

// region Menu

func (b *Bot) AddEventItem(event *shared.Event, text string, _ int, isAuto bool) {
	msg := fmt.Sprintf("Now tracking %s (%s)", text, event.Tour)
	if isAuto {
		msg += ", new matches are shown automatically"
	}
	b.notify(msg)
}

func (b *Bot) RemoveEventItem(event *shared.Event) {
	b.notify(fmt.Sprintf("No longer tracking %s", event.Title))
}

func (b *Bot) AddMatchItem(event *shared.Event, match *shared.Match, selected bool) {
	id := shared.UniqMatchID(event.ID, match.ID)
	b.mu.Lock()
	b.names[id] = match.DisplayName
	b.mu.Unlock()
	if selected {
		b.notify(fmt.Sprintf("Match added to live view: %s (%s, %s)", match.DisplayName, event.Title, match.RoundName))
	}
}

func (b *Bot) UpdateMatchItem(matchID string, match *shared.Match) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.names[matchID] = match.DisplayName
}

func (b *Bot) RemoveMatchItem(matchID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.names, matchID)
}

func (b *Bot) SetMatchSelection(matchID string, selected bool) {
	if selected {
		b.notify(fmt.Sprintf("Match added to live view: %s", b.name(matchID)))
		return
	}
	b.notify(fmt.Sprintf("Match removed from live view: %s", b.name(matchID)))
}

func (b *Bot) SetLastRefreshTime(time.Time) {}

// SetUpdateStatus only posts when the status flips
func (b *Bot) SetUpdateStatus(ok bool) {
	b.mu.Lock()
	changed := (b.lastStatus == nil && !ok) || (b.lastStatus != nil && *b.lastStatus != ok)
	b.lastStatus = &ok
	b.mu.Unlock()
	if !changed {
		return
	}
	if ok {
		b.notify("Score updates are back to normal")
	} else {
		b.notify("Score update failed for at least one source, showing the last known scores")
	}
}

var _ runner.Menu = (*Bot)(nil)

// endregion

// Function to send a long text as several messages, splitting at line boundaries
// Preconditions: Receives the session, the channel and the text
// Postconditions: Every chunk is sent in order. Returns the first send error
func sendChunked(session DiscordSession, channelID string, text string) error {
	var chunk strings.Builder
	flush := func() error {
		if chunk.Len() == 0 {
			return nil
		}
		_, err := session.ChannelMessageSend(channelID, chunk.String())
		chunk.Reset()
		return err
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		if chunk.Len()+len(line) > maxMessageLength {
			if err := flush(); err != nil {
				return err
			}
		}
		for len(line) > maxMessageLength {
			cut := maxMessageLength
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			chunk.WriteString(line[:cut])
			line = line[cut:]
			if err := flush(); err != nil {
				return err
			}
		}
		chunk.WriteString(line)
	}
	return flush()
}

// Helper function to check if a string starts with a given substring
// Preconditions: Recieves an input string and a substring
// Postconditions: Returns true if the substring is at the start of the string, else returns false
func startsWith(inputString string, substring string) bool {
	return strings.HasPrefix(inputString, substring)
}
