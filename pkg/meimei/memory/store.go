// Package memory implements the durable exchange log: one append-only
// newline-delimited JSON file per channel. Records are immutable once
// written; append order is chronological order.
package memory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is a single logged exchange.
type Record struct {
	// TS is seconds since epoch, fractional.
	TS float64 `json:"ts"`

	// Author is the display name of the message sender.
	Author string `json:"author"`

	// UserText is the original user input.
	UserText string `json:"user_text"`

	// Reply is the delivered reply text.
	Reply string `json:"reply"`
}

// Store abstracts persistence of exchanges. Implementations must be safe for
// concurrent use.
type Store interface {
	// Append adds one record with the current timestamp to the channel's log.
	Append(channelID, author, userText, reply string) error

	// FirstUserMessage returns the user text of the earliest record with
	// non-empty user text. The second return is false when the channel has
	// no such record; absence is not an error.
	FirstUserMessage(channelID string) (string, bool)
}

// FileStore implements Store using one JSONL file per channel under a base
// directory.
type FileStore struct {
	dir    string
	logger *slog.Logger

	// mu serializes appends so concurrent writes never interleave lines.
	mu sync.Mutex

	// now is swappable in tests.
	now func() time.Time
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating memory directory: %w", err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With("component", "memory"),
		now:    time.Now,
	}, nil
}

// Append writes one record to the channel's log file.
func (s *FileStore) Append(channelID, author, userText, reply string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{
		TS:       float64(s.now().UnixNano()) / float64(time.Second),
		Author:   author,
		UserText: userText,
		Reply:    reply,
	}

	f, err := os.OpenFile(s.path(channelID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening memory log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("encoding memory record: %w", err)
	}
	return nil
}

// FirstUserMessage scans the channel's log from the start and returns the
// first non-empty user text. Malformed lines are skipped.
func (s *FileStore) FirstUserMessage(channelID string) (string, bool) {
	f, err := os.Open(s.path(channelID))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to open memory log", "channel_id", channelID, "error", err)
		}
		return "", false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.UserText != "" {
			return rec.UserText, true
		}
	}
	if err := sc.Err(); err != nil {
		s.logger.Warn("failed to scan memory log", "channel_id", channelID, "error", err)
	}
	return "", false
}

// path returns the log file for a channel.
func (s *FileStore) path(channelID string) string {
	return filepath.Join(s.dir, "memory_"+channelID+".jsonl")
}

var _ Store = (*FileStore)(nil)
