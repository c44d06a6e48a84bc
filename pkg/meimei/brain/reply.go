package brain

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// maxInputRunes bounds the text submitted to the backend.
	maxInputRunes = 4000

	// maxReplyRunes keeps replies terse; longer output is cut and marked
	// with an ellipsis.
	maxReplyRunes = 280

	// ellipsis marks a truncated reply. 277 runes + marker = exactly 280.
	ellipsis = "..."

	// defaultTimeout bounds one generation call so a hung backend resolves
	// to the fallback instead of blocking the channel.
	defaultTimeout = 60 * time.Second
)

// ReplyEngine turns user text into displayable reply text. It never fails:
// any backend problem degrades to the fallback string.
type ReplyEngine struct {
	sessions *SessionManager
	fallback string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewReplyEngine creates a reply engine over the given session registry.
// fallback is the static text returned on any failure; timeout bounds each
// backend call (zero picks the default).
func NewReplyEngine(sessions *SessionManager, fallback string, timeout time.Duration, logger *slog.Logger) *ReplyEngine {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplyEngine{
		sessions: sessions,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger.With("component", "reply"),
	}
}

// Generate produces a reply for the user's text in the channel's session.
// fallback overrides the engine default when non-empty. Always returns
// displayable text.
func (e *ReplyEngine) Generate(ctx context.Context, channelID, author, userText, fallback string) string {
	if fallback == "" {
		fallback = e.fallback
	}

	if !e.sessions.Enabled() {
		return fallback
	}

	session := e.sessions.GetOrCreate(ctx, channelID)
	if session == nil {
		return fallback
	}

	if author == "" {
		author = "User"
	}
	// Author prefix disambiguates speakers in multi-user channels.
	content := author + ": " + truncateRunes(userText, maxInputRunes)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	text, err := session.Send(callCtx, content)
	if err != nil {
		e.logger.Warn("generation failed",
			"channel_id", channelID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return fallback
	}

	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return fallback
	}
	if utf8.RuneCountInString(cleaned) > maxReplyRunes {
		cleaned = truncateRunes(cleaned, maxReplyRunes-len(ellipsis)) + ellipsis
	}
	return cleaned
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
