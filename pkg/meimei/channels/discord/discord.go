// Package discord implements the messaging gateway for Mei Mei using
// discordgo.
//
// Responsibilities:
//   - Gateway connection and message-create events
//   - Per-message delivery operations for the router (reply/edit/send/typing)
//   - Prefix commands: !hello, !ping, !help
//   - Slash commands: /delete, /cmd
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"meimei/pkg/meimei/brain"
	"meimei/pkg/meimei/persona"
	"meimei/pkg/meimei/router"
)

// purgeMaxScan caps how many recent messages /delete will scan.
const purgeMaxScan = 1000

// Config holds Discord gateway configuration.
type Config struct {
	// Token is the Discord bot token.
	Token string `yaml:"token"`
}

// Discord bridges the Discord gateway and the message router.
type Discord struct {
	cfg     Config
	logger  *slog.Logger
	session *discordgo.Session
	router  *router.Router
	engine  *brain.ReplyEngine

	// connected tracks connection state.
	connected atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Discord gateway instance.
func New(cfg Config, rt *router.Router, engine *brain.ReplyEngine, logger *slog.Logger) *Discord {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discord{
		cfg:    cfg,
		logger: logger.With("component", "discord"),
		router: rt,
		engine: engine,
	}
}

// Connect opens the Discord gateway WebSocket connection.
func (d *Discord) Connect(ctx context.Context) error {
	if d.cfg.Token == "" {
		return fmt.Errorf("discord: bot token is required")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	session, err := discordgo.New("Bot " + d.cfg.Token)
	if err != nil {
		return fmt.Errorf("discord: creating session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	session.AddHandler(d.onReady)
	session.AddHandler(d.onMessageCreate)
	session.AddHandler(d.onInteractionCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord: opening gateway: %w", err)
	}

	d.session = session
	d.connected.Store(true)

	user := session.State.User
	d.logger.Info("discord: connected", "bot", user.Username, "id", user.ID)
	return nil
}

// Disconnect closes the gateway connection.
func (d *Discord) Disconnect() error {
	if d.cancel != nil {
		d.cancel()
	}
	if d.session != nil {
		d.session.Close()
	}
	d.connected.Store(false)
	d.logger.Info("discord: disconnected")
	return nil
}

// IsConnected returns true if the bot is connected.
func (d *Discord) IsConnected() bool { return d.connected.Load() }

// ---------- Event Handlers ----------

// onReady registers the slash commands once the session is identified.
func (d *Discord) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "delete",
			Description: "Delete recent messages from you and the bot in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "How many recent messages to scan (max 1000)",
					Required:    false,
				},
			},
		},
		{
			Name:        "cmd",
			Description: "Show available commands and usage",
		},
	}

	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd); err != nil {
			d.logger.Warn("discord: failed to register slash command", "command", cmd.Name, "error", err)
		}
	}
	d.logger.Info("discord: slash commands registered", "count", len(commands))
}

// onMessageCreate dispatches inbound messages: prefix commands are handled
// here, everything else goes to the router in its own goroutine.
func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore the bot's own messages.
	if m.Author.ID == s.State.User.ID {
		return
	}

	content := strings.TrimSpace(m.Content)
	if strings.HasPrefix(content, "!") && !m.Author.Bot {
		d.handlePrefixCommand(s, m, content)
		return
	}

	ev := router.Event{
		ID:           m.ID,
		ChannelID:    m.ChannelID,
		Author:       authorName(m),
		AuthorBot:    m.Author.Bot,
		Content:      m.Content,
		BotMentioned: mentionsBot(s, m),
	}

	delivery := &messageDelivery{
		session:   s,
		channelID: m.ChannelID,
		ref:       m.Reference(),
	}

	go d.router.Handle(d.ctx, ev, delivery)
}

// onInteractionCreate handles slash-command invocations.
func (d *Discord) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "delete":
		d.handleDelete(s, i)
	case "cmd":
		d.handleCmd(s, i)
	}
}

// ---------- Prefix Commands ----------

func (d *Discord) handlePrefixCommand(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	name := content
	if idx := strings.IndexAny(content, " \t"); idx > 0 {
		name = content[:idx]
	}

	switch name {
	case "!hello":
		_ = s.ChannelTyping(m.ChannelID)
		reply := d.engine.Generate(d.ctx, m.ChannelID, "", "Greet the user.", persona.RandomGreeting())
		d.reply(s, m, reply)

	case "!ping":
		ms := s.HeartbeatLatency().Milliseconds()
		d.reply(s, m, persona.Say(fmt.Sprintf("Latency? %dms. Time is money, after all.", ms)))

	case "!help":
		lines := []string{
			"Here’s what you can afford right now:",
			"- !hello — A proper greeting, if your balance allows",
			"- !ping — Check latency; time is billable",
			"- !help — This menu, priced generously at zero",
		}
		d.reply(s, m, strings.Join(lines, "\n"))
	}
}

func (d *Discord) reply(s *discordgo.Session, m *discordgo.MessageCreate, text string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, text, m.Reference()); err != nil {
		d.logger.Warn("discord: failed to reply", "channel_id", m.ChannelID, "error", err)
	}
}

// ---------- Slash Commands ----------

// handleDelete purges recent messages authored by the invoker or the bot.
func (d *Discord) handleDelete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	limit := 100
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > purgeMaxScan {
		limit = purgeMaxScan
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		d.logger.Warn("discord: failed to defer /delete", "error", err)
		return
	}

	invoker := interactionUser(i)
	deleted, err := d.purge(s, i.ChannelID, invoker, s.State.User.ID, limit)
	if err != nil {
		d.logger.Error("discord: /delete failed", "channel_id", i.ChannelID, "error", err)
		d.followup(s, i, "Couldn’t delete messages due to an error.")
		return
	}

	d.followup(s, i, fmt.Sprintf("Deleted %d message(s).", deleted))
}

func (d *Discord) handleCmd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	lines := []string{
		"Commands you can afford right now:",
		"- /cmd — Show this help",
		"- /delete [limit] — Delete your messages and mine in this channel (needs Manage Messages)",
		"- !hello — Greet in Mei Mei’s voice",
		"- !ping — Show latency",
		"- !help — Text help for prefix commands",
		"Chat mode: I reply to normal messages by default (toggle with MEIMEI_REPLY_ALL)",
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: strings.Join(lines, "\n"),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		d.logger.Warn("discord: failed to respond to /cmd", "error", err)
	}
}

// purge scans up to limit recent messages and deletes the ones authored by
// either of the two given user ids. Returns the number deleted.
func (d *Discord) purge(s *discordgo.Session, channelID, invokerID, botID string, limit int) (int, error) {
	var ids []string
	beforeID := ""

	for len(ids) < limit {
		page := limit - len(ids)
		if page > 100 {
			page = 100
		}
		msgs, err := s.ChannelMessages(channelID, page, beforeID, "", "")
		if err != nil {
			return 0, fmt.Errorf("listing messages: %w", err)
		}
		if len(msgs) == 0 {
			break
		}
		for _, msg := range msgs {
			if msg.Author.ID == invokerID || msg.Author.ID == botID {
				ids = append(ids, msg.ID)
			}
		}
		beforeID = msgs[len(msgs)-1].ID
		if len(msgs) < page {
			break
		}
	}

	var deleted int
	for start := 0; start < len(ids); start += 100 {
		end := start + 100
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		if len(chunk) == 1 {
			if err := s.ChannelMessageDelete(channelID, chunk[0]); err != nil {
				return deleted, err
			}
		} else if err := s.ChannelMessagesBulkDelete(channelID, chunk); err != nil {
			return deleted, err
		}
		deleted += len(chunk)
	}

	return deleted, nil
}

func (d *Discord) followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		d.logger.Warn("discord: failed to send followup", "error", err)
	}
}

// ---------- Delivery ----------

// messageDelivery implements router.Delivery for one triggering message.
type messageDelivery struct {
	session   *discordgo.Session
	channelID string
	ref       *discordgo.MessageReference
}

func (d *messageDelivery) Reply(text string) (string, error) {
	msg, err := d.session.ChannelMessageSendReply(d.channelID, text, d.ref)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (d *messageDelivery) Edit(messageID, text string) error {
	_, err := d.session.ChannelMessageEdit(d.channelID, messageID, text)
	return err
}

func (d *messageDelivery) Send(text string) error {
	_, err := d.session.ChannelMessageSend(d.channelID, text)
	return err
}

func (d *messageDelivery) Typing() {
	_ = d.session.ChannelTyping(d.channelID)
}

var _ router.Delivery = (*messageDelivery)(nil)

// ---------- Helpers ----------

// authorName picks the most human-friendly name available for the sender.
func authorName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

// mentionsBot reports whether the bot appears in the message's mention list.
func mentionsBot(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if s.State.User == nil {
		return false
	}
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			return true
		}
	}
	return false
}

// interactionUser returns the invoking user's id for guild and DM contexts.
func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
