package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/clockworklab/mafiagram/internal/discord"
)

const (
	maxButtonsPerRow = 5
	maxButtonRows    = 5
)

type Client struct {
	session   *discordgo.Session
	token     string
	botUserID string
}

func NewClient(token string) discordpkg.Client {
	return &Client{
		token: token,
	}
}

func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	s.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsGuilds | discordgo.IntentsGuildMessages)
	if err := s.Open(); err != nil {
		return err
	}
	userID, err := c.GetBotUserID()
	if err != nil {
		return err
	}
	c.botUserID = userID
	return nil
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) SendChannelMessage(channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content)
	return err
}

func (c *Client) SendChannelButtons(channelID, content string, buttons []discordpkg.Button) error {
	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    content,
		Components: buttonRows(buttons),
	})
	return err
}

func (c *Client) SendDirectMessage(userID, content string) error {
	ch, err := c.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = c.session.ChannelMessageSend(ch.ID, content)
	return err
}

func (c *Client) SendDirectButtons(userID, content string, buttons []discordpkg.Button) error {
	ch, err := c.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = c.session.ChannelMessageSendComplex(ch.ID, &discordgo.MessageSend{
		Content:    content,
		Components: buttonRows(buttons),
	})
	return err
}

func (c *Client) SendWinnerAnnouncement(channelID, title, description string, color int) error {
	_, err := c.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	})
	return err
}

// buttonRows lays buttons out in action rows of five. Discord caps a message
// at five rows, so at most 25 targets fit on one keyboard.
func buttonRows(buttons []discordpkg.Button) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, maxButtonRows)
	var row []discordgo.MessageComponent
	for _, b := range buttons {
		row = append(row, discordgo.Button{
			Label:    b.Label,
			Style:    discordgo.SecondaryButton,
			CustomID: b.CustomID,
		})
		if len(row) == maxButtonsPerRow {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
			if len(rows) == maxButtonRows {
				break
			}
		}
	}
	if len(row) > 0 && len(rows) < maxButtonRows {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows
}

func (c *Client) RegisterSlashCommandHandler(handler func(discordpkg.SlashCommandEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := ic.ApplicationCommandData()
		if data.Name == "" {
			return
		}
		userID, displayName := interactionUser(ic)
		if userID == "" {
			return
		}
		intOptions := make(map[string]int64, len(data.Options))
		for _, opt := range data.Options {
			if opt == nil || opt.Type != discordgo.ApplicationCommandOptionInteger {
				continue
			}
			intOptions[opt.Name] = opt.IntValue()
		}
		slog.Info("slash command interaction received", "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "command", data.Name, "user_id", userID)
		handler(discordpkg.SlashCommandEvent{
			GuildID:          ic.GuildID,
			ChannelID:        ic.ChannelID,
			CommandName:      data.Name,
			UserID:           userID,
			UserDisplayName:  displayName,
			UserIsAdmin:      interactionUserIsAdmin(ic),
			IntOptions:       intOptions,
			RespondEphemeral: ephemeralResponder(s, ic),
		})
	})
}

func (c *Client) RegisterComponentHandler(handler func(discordpkg.ComponentEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionMessageComponent {
			return
		}
		data := ic.MessageComponentData()
		if data.CustomID == "" {
			return
		}
		userID, displayName := interactionUser(ic)
		if userID == "" {
			return
		}
		handler(discordpkg.ComponentEvent{
			GuildID:          ic.GuildID,
			ChannelID:        ic.ChannelID,
			CustomID:         data.CustomID,
			UserID:           userID,
			UserDisplayName:  displayName,
			RespondEphemeral: ephemeralResponder(s, ic),
		})
	})
}

func ephemeralResponder(s *discordgo.Session, ic *discordgo.InteractionCreate) func(content string) error {
	return func(content string) error {
		return s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
	}
}

func interactionUser(ic *discordgo.InteractionCreate) (userID, displayName string) {
	if ic.Member != nil && ic.Member.User != nil {
		u := ic.Member.User
		name := ic.Member.Nick
		if name == "" {
			name = preferredDiscordName(u.GlobalName, u.Username, u.ID)
		}
		return u.ID, name
	}
	if ic.User != nil {
		return ic.User.ID, preferredDiscordName(ic.User.GlobalName, ic.User.Username, ic.User.ID)
	}
	return "", ""
}

func interactionUserIsAdmin(ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil {
		return false
	}
	return ic.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func preferredDiscordName(globalName, username, fallback string) string {
	if globalName != "" {
		return globalName
	}
	if username != "" {
		return username
	}
	return fallback
}

func (c *Client) UpsertGuildSlashCommands(guildID string, defs []discordpkg.SlashCommandDefinition) error {
	appID := c.applicationID()
	if appID == "" {
		return fmt.Errorf("discord application id is not available")
	}
	existing, err := c.session.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}
	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		if cmd == nil || cmd.Name == "" {
			continue
		}
		existingByName[cmd.Name] = cmd
	}
	for _, def := range defs {
		if err := c.upsertGuildSlashCommand(appID, guildID, def, existingByName); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) upsertGuildSlashCommand(appID, guildID string, def discordpkg.SlashCommandDefinition, existingByName map[string]*discordgo.ApplicationCommand) error {
	if def.Name == "" {
		return nil
	}
	payload := &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
		Options:     commandOptionsPayload(def.IntOptions),
	}
	cmd, ok := existingByName[def.Name]
	if !ok {
		_, err := c.session.ApplicationCommandCreate(appID, guildID, payload)
		return err
	}
	if cmd.Description == def.Description && len(cmd.Options) == len(payload.Options) {
		return nil
	}
	_, err := c.session.ApplicationCommandEdit(appID, guildID, cmd.ID, payload)
	return err
}

func commandOptionsPayload(opts []discordpkg.SlashCommandOptionDefinition) []*discordgo.ApplicationCommandOption {
	if len(opts) == 0 {
		return nil
	}
	payload := make([]*discordgo.ApplicationCommandOption, 0, len(opts))
	for _, opt := range opts {
		payload = append(payload, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
		})
	}
	return payload
}

func (c *Client) GetBotUserID() (string, error) {
	if c.botUserID != "" {
		return c.botUserID, nil
	}
	if c.session == nil {
		return "", fmt.Errorf("discord session is not initialized")
	}
	if c.session.State != nil && c.session.State.User != nil && c.session.State.User.ID != "" {
		c.botUserID = c.session.State.User.ID
		return c.botUserID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	c.botUserID = u.ID
	return c.botUserID, nil
}

func (c *Client) applicationID() string {
	if c.session == nil || c.session.State == nil {
		return ""
	}
	if c.session.State.Application != nil && c.session.State.Application.ID != "" {
		return c.session.State.Application.ID
	}
	if c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}

func (c *Client) Run() error {
	select {}
}
