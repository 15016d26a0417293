package discord

import "context"

// Button is one selectable target rendered under a prompt message.
type Button struct {
	Label    string
	CustomID string
}

type SlashCommandOptionDefinition struct {
	Name        string
	Description string
	Required    bool
}

type SlashCommandDefinition struct {
	Name        string
	Description string
	// IntOptions are optional integer arguments of the command.
	IntOptions []SlashCommandOptionDefinition
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	UserDisplayName  string
	UserIsAdmin      bool
	IntOptions       map[string]int64
	RespondEphemeral func(content string) error
}

// ComponentEvent is a button press on a vote keyboard.
type ComponentEvent struct {
	GuildID          string
	ChannelID        string
	CustomID         string
	UserID           string
	UserDisplayName  string
	RespondEphemeral func(content string) error
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	SendChannelMessage(channelID, content string) error
	SendChannelButtons(channelID, content string, buttons []Button) error
	SendDirectMessage(userID, content string) error
	SendDirectButtons(userID, content string, buttons []Button) error
	// SendWinnerAnnouncement posts the end-of-game embed; the color encodes
	// the winning faction (mafia/maniac dark, town light).
	SendWinnerAnnouncement(channelID, title, description string, color int) error
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	RegisterComponentHandler(handler func(ComponentEvent))
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error
	Run() error
}
