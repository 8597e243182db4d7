package notifier

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Discord posts registration announcements to a Discord channel.
type Discord struct {
	session   *discordgo.Session
	channelID string
	logger    *zap.Logger
}

// NewDiscord opens a bot session for the given token. The session is only
// used for outbound channel messages, no gateway connection is opened.
func NewDiscord(botToken, channelID string, logger *zap.Logger) (*Discord, error) {
	if botToken == "" || channelID == "" {
		return nil, fmt.Errorf("discord notifier requires a bot token and channel id")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID, logger: logger}, nil
}

// RegistrationConfirmed implements Notifier.
func (d *Discord) RegistrationConfirmed(ctx context.Context, eventTitle, attendeeName, attendeeEmail string) error {
	message := fmt.Sprintf("🎟️ **New registration confirmed**\n**Event:** %s\n**Attendee:** %s (%s)",
		eventTitle, attendeeName, attendeeEmail)
	_, err := d.session.ChannelMessageSend(d.channelID, message, discordgo.WithContext(ctx))
	if err != nil {
		d.logger.Warn("discord notification failed", zap.String("event", eventTitle), zap.Error(err))
		return err
	}
	return nil
}
