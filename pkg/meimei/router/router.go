// Package router orchestrates one inbound message end to end:
// trigger gate → cooldown → recall interception → generation → delivery →
// persistence. A failure while handling one message is contained here and
// never affects subsequent messages.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"meimei/pkg/meimei/trigger"
)

// Event is one inbound message from the gateway.
type Event struct {
	// ID is the gateway message identifier.
	ID string

	// ChannelID is the conversation the message arrived in.
	ChannelID string

	// Author is the sender's display name.
	Author string

	// AuthorBot is true for bot/automated senders.
	AuthorBot bool

	// Content is the raw message text.
	Content string

	// BotMentioned is true when the bot appears in the mention list.
	BotMentioned bool
}

// Delivery is the per-message slice of the gateway the router drives.
type Delivery interface {
	// Reply sends text as a reply to the triggering message and returns the
	// sent message's id, used later as the placeholder to edit.
	Reply(text string) (string, error)

	// Edit replaces the content of a previously sent message.
	Edit(messageID, text string) error

	// Send posts text as a fresh message, used when editing fails.
	Send(text string) error

	// Typing signals a composing indicator; best-effort.
	Typing()
}

// Generator produces reply text; it never fails (see brain.ReplyEngine).
type Generator interface {
	Generate(ctx context.Context, channelID, author, userText, fallback string) string
}

// MemoryLog is the slice of the memory store the router uses.
type MemoryLog interface {
	Append(channelID, author, userText, reply string) error
	FirstUserMessage(channelID string) (string, bool)
}

// Outcome is the terminal state of handling one event.
type Outcome string

const (
	// Ignored means a gate declined to act. Not an error; no log needed.
	Ignored Outcome = "ignored"

	// Recalled means the event was answered from the memory log without
	// invoking the backend.
	Recalled Outcome = "recalled"

	// Replied means the placeholder was edited into the final reply.
	Replied Outcome = "replied"

	// RepliedDeliveryFallback means editing failed and the reply was sent as
	// a fresh message instead.
	RepliedDeliveryFallback Outcome = "replied-with-delivery-fallback"

	// Failed means an unexpected failure ended processing for this event.
	Failed Outcome = "failed"
)

// recallPhrases trigger the first-message recall path. Matched as lowercased
// substrings.
var recallPhrases = []string{
	"what was the first chat",
	"what was my first chat",
	"what was the first message",
	"first thing i said",
	"first message i sent",
	"what did i say first",
}

// placeholderText is the transient acknowledgment edited into the final reply.
const placeholderText = "…"

// Texts are the canned sentences the router composes around replies.
type Texts struct {
	// MentionSuffix is appended when the bot was mentioned.
	MentionSuffix string

	// RecallFound formats the recalled first message. One %s argument.
	RecallFound string

	// RecallEmpty answers a recall query with no prior records.
	RecallEmpty string
}

// Router wires the trigger policy, memory log, and reply engine together.
type Router struct {
	policy *trigger.Policy
	memory MemoryLog
	engine Generator
	texts  Texts
	logger *slog.Logger
}

// New creates a Router.
func New(policy *trigger.Policy, mem MemoryLog, engine Generator, texts Texts, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		policy: policy,
		memory: mem,
		engine: engine,
		texts:  texts,
		logger: logger.With("component", "router"),
	}
}

// Handle processes one inbound message to a terminal state. Safe to call
// from concurrent goroutines; never panics.
func (r *Router) Handle(ctx context.Context, ev Event, d Delivery) (outcome Outcome) {
	logger := r.logger.With(
		"channel_id", ev.ChannelID,
		"msg_id", ev.ID,
		"trace_id", uuid.NewString()[:8],
	)

	// Last line of defense: one message's failure must never crash the
	// router or block the ones behind it.
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("message handling panicked",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			outcome = Failed
		}
	}()

	start := time.Now()

	if !r.policy.ShouldTrigger(trigger.Message{
		AuthorBot:    ev.AuthorBot,
		Content:      ev.Content,
		BotMentioned: ev.BotMentioned,
	}) {
		return Ignored
	}

	if !r.policy.CooldownAllows(ev.ChannelID) {
		return Ignored
	}

	// Recall interception: answered straight from the log, no generation and
	// no memory append for this turn.
	if isRecallQuery(ev.Content) {
		text := r.texts.RecallEmpty
		if first, ok := r.memory.FirstUserMessage(ev.ChannelID); ok {
			text = fmt.Sprintf(r.texts.RecallFound, first)
		}
		if _, err := d.Reply(text); err != nil {
			logger.Error("failed to deliver recall reply", "error", err)
			return Failed
		}
		logger.Info("recall served", "duration_ms", time.Since(start).Milliseconds())
		return Recalled
	}

	// Transient acknowledgment; if it cannot be sent the final reply goes
	// out as a fresh message instead.
	placeholderID, err := d.Reply(placeholderText)
	if err != nil {
		logger.Warn("failed to send placeholder", "error", err)
		placeholderID = ""
	}
	d.Typing()

	reply := r.engine.Generate(ctx, ev.ChannelID, ev.Author, ev.Content, "")

	if ev.BotMentioned {
		reply += r.texts.MentionSuffix
	}

	outcome = Replied
	if placeholderID == "" || d.Edit(placeholderID, reply) != nil {
		if err := d.Send(reply); err != nil {
			logger.Error("failed to deliver reply", "error", err)
			return Failed
		}
		outcome = RepliedDeliveryFallback
	}

	if err := r.memory.Append(ev.ChannelID, ev.Author, ev.Content, reply); err != nil {
		logger.Warn("failed to append memory", "error", err)
	}

	logger.Info("message processed",
		"outcome", string(outcome),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome
}

// isRecallQuery reports whether the text asks for the first recorded message.
func isRecallQuery(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, p := range recallPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}
