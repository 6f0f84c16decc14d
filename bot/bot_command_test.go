/* bot_command_test.go
 * Contains unit tests for bot.go
 */

package bot

import (
	"testing"

	"github.com/homebackend/gnome-live-tennis-sub000/api/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// region NewBot tests

func TestNewBot_Success(t *testing.T) {
	bot, err := NewBot("test_token", "channel123", logger.Discard())

	require.NoError(t, err)
	assert.Equal(t, "test_token", bot.BotToken)
	assert.Equal(t, "channel123", bot.ChannelID)
	assert.Nil(t, bot.APIPtr)
}

func TestNewBot_MissingParameters(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		channel string
		wantErr string
	}{
		{"missing token", "", "channel123", "botToken is required"},
		{"missing channel", "test_token", "", "channelID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBot(tt.token, tt.channel, logger.Discard())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

// endregion
