package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return s
}

func TestAppendThenFirstUserMessage(t *testing.T) {
	s := newTestStore(t)

	msgs := []string{"sell me a sword", "second message", "third message"}
	for _, m := range msgs {
		if err := s.Append("123", "Yuji", m, "reply"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, ok := s.FirstUserMessage("123")
	if !ok {
		t.Fatal("expected a first message")
	}
	if got != "sell me a sword" {
		t.Errorf("got %q, want the first record, not the last", got)
	}
}

func TestFirstUserMessage_NoRecords(t *testing.T) {
	s := newTestStore(t)

	if got, ok := s.FirstUserMessage("nope"); ok {
		t.Errorf("expected no result for unknown channel, got %q", got)
	}
}

func TestFirstUserMessage_SkipsMalformedAndEmpty(t *testing.T) {
	s := newTestStore(t)

	lines := []string{
		"{not json at all",
		`{"ts": 1.0, "author": "a", "user_text": "", "reply": "r"}`,
		`{"ts": 2.0, "author": "a", "user_text": "the real one", "reply": "r"}`,
	}
	path := filepath.Join(s.dir, "memory_42.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, ok := s.FirstUserMessage("42")
	if !ok || got != "the real one" {
		t.Errorf("got (%q, %v), want the first valid non-empty record", got, ok)
	}
}

func TestAppend_ChannelsIsolated(t *testing.T) {
	s := newTestStore(t)

	if err := s.Append("a", "u", "message in a", "r"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append("b", "u", "message in b", "r"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if got, _ := s.FirstUserMessage("a"); got != "message in a" {
		t.Errorf("channel a got %q", got)
	}
	if got, _ := s.FirstUserMessage("b"); got != "message in b" {
		t.Errorf("channel b got %q", got)
	}
}

func TestAppend_RecordShape(t *testing.T) {
	s := newTestStore(t)

	if err := s.Append("7", "Nobara", "hi", "hello, investor"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, "memory_7.jsonl"))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	for _, key := range []string{"ts", "author", "user_text", "reply"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("record missing key %q", key)
		}
	}
	if _, ok := raw["ts"].(float64); !ok {
		t.Error("ts should be a float")
	}
}
