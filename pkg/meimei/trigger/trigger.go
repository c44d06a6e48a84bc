// Package trigger decides whether an inbound message deserves a generated
// response. Two gates apply in order: content rules (ShouldTrigger) and the
// per-channel cooldown (CooldownAllows).
package trigger

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Message carries the message attributes the policy inspects.
type Message struct {
	// AuthorBot is true when the sender is a bot/automated account.
	AuthorBot bool

	// Content is the raw message text.
	Content string

	// BotMentioned is true when the bot's own identity appears in the
	// message's mention list.
	BotMentioned bool
}

// Config is the policy configuration, fixed at process start.
type Config struct {
	// ReplyAll makes the bot respond to every normal message.
	ReplyAll bool

	// Cooldown is the minimum interval between two accepted replies in the
	// same channel. Zero means unconstrained.
	Cooldown time.Duration

	// Greetings are prefix tokens that trigger a reply (lowercased match).
	Greetings []string

	// Keywords are substring tokens that trigger a reply (lowercased match).
	Keywords []string
}

// DefaultGreetings are the greeting prefixes the bot reacts to.
var DefaultGreetings = []string{"hi", "hello", "hey", "yo"}

// DefaultKeywords are persona-related tokens the bot reacts to anywhere in
// the text.
var DefaultKeywords = []string{"money", "pay", "payment", "profit", "rich", "fee", "fight", "training", "mission"}

// Policy evaluates trigger rules and owns the per-channel cooldown state.
type Policy struct {
	cfg    Config
	logger *slog.Logger

	// mu guards lastReply so the cooldown check-and-set is atomic per call.
	mu        sync.Mutex
	lastReply map[string]time.Time

	// now is swappable in tests.
	now func() time.Time
}

// NewPolicy creates a Policy with the given configuration. Empty trigger
// lists fall back to the defaults.
func NewPolicy(cfg Config, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Greetings) == 0 {
		cfg.Greetings = DefaultGreetings
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords
	}
	return &Policy{
		cfg:       cfg,
		logger:    logger.With("component", "trigger"),
		lastReply: make(map[string]time.Time),
		now:       time.Now,
	}
}

// ShouldTrigger reports whether the message warrants a generated reply.
// Rules are evaluated in order; the first match decides.
func (p *Policy) ShouldTrigger(msg Message) bool {
	if msg.AuthorBot {
		return false
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return false
	}

	// Command-style messages belong to the command dispatchers.
	if strings.HasPrefix(content, "!") || strings.HasPrefix(content, "/") {
		return false
	}

	if p.cfg.ReplyAll {
		return true
	}

	if msg.BotMentioned {
		return true
	}

	lowered := strings.ToLower(content)
	for _, g := range p.cfg.Greetings {
		if strings.HasPrefix(lowered, g) {
			return true
		}
	}
	for _, k := range p.cfg.Keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}

	return false
}

// CooldownAllows reports whether the channel's cooldown has elapsed. On
// success it records the acceptance time, so the check-and-set is a single
// atomic step: two near-simultaneous messages cannot both pass the gate.
func (p *Policy) CooldownAllows(channelID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Sub(p.lastReply[channelID]) >= p.cfg.Cooldown {
		p.lastReply[channelID] = now
		return true
	}
	return false
}
