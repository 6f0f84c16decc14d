//go:build !test

/* bot_runtime.go
 * Contains runtime-only Discord bot methods that use *discordgo.Session directly.
 * Delegates to testable handlers in handlers.go to avoid code duplication.
 */

package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Run connects the bot and answers commands until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	if b.APIPtr == nil {
		return fmt.Errorf("bot has no API attached")
	}

	// create a session
	discord, err := discordgo.New("Bot " + b.BotToken)
	if err != nil {
		return fmt.Errorf("error creating discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	// add a event handler
	discord.AddHandler(b.newMessage)

	if err := discord.Open(); err != nil {
		return fmt.Errorf("error opening discord session: %w", err)
	}
	defer discord.Close() // close session, after function termination
	b.setSession(ctx, discord)
	defer b.setSession(context.Background(), nil)

	b.log.Info("Live tennis bot started")
	<-ctx.Done()
	b.log.Info("Live tennis bot stopping")
	return nil
}

// newMessage delegates to the testable newMessageHandler
// *discordgo.Session implements DiscordSession interface
func (b *Bot) newMessage(discord *discordgo.Session, message *discordgo.MessageCreate) {
	b.newMessageHandler(b.requestContext(), discord, message, discord.State.User.ID)
}
