package trigger

import (
	"testing"
	"time"
)

func newTestPolicy(cfg Config) *Policy {
	return NewPolicy(cfg, nil)
}

func TestShouldTrigger_RejectsBots(t *testing.T) {
	p := newTestPolicy(Config{ReplyAll: true})

	if p.ShouldTrigger(Message{AuthorBot: true, Content: "hello there"}) {
		t.Error("expected bot messages to be rejected")
	}
}

func TestShouldTrigger_RejectsBlankContent(t *testing.T) {
	p := newTestPolicy(Config{ReplyAll: true})

	for _, content := range []string{"", "   ", "\n\t "} {
		if p.ShouldTrigger(Message{Content: content}) {
			t.Errorf("expected blank content %q to be rejected", content)
		}
	}
}

func TestShouldTrigger_RejectsCommandPrefixes(t *testing.T) {
	p := newTestPolicy(Config{ReplyAll: true})

	for _, content := range []string{"!hello", "/delete", "  !ping", "/cmd money profit"} {
		if p.ShouldTrigger(Message{Content: content}) {
			t.Errorf("expected command-style %q to be rejected", content)
		}
	}
}

func TestShouldTrigger_ReplyAllAcceptsAnything(t *testing.T) {
	p := newTestPolicy(Config{ReplyAll: true})

	if !p.ShouldTrigger(Message{Content: "completely unrelated text"}) {
		t.Error("expected reply-all to accept a normal message")
	}
}

func TestShouldTrigger_MentionAccepts(t *testing.T) {
	p := newTestPolicy(Config{ReplyAll: false})

	if !p.ShouldTrigger(Message{Content: "unrelated", BotMentioned: true}) {
		t.Error("expected mention to trigger")
	}
}

func TestShouldTrigger_GreetingsAndKeywords(t *testing.T) {
	p := newTestPolicy(Config{ReplyAll: false})

	tests := []struct {
		content string
		want    bool
	}{
		{"Hi everyone", true},             // greeting prefix, case-insensitive
		{"HELLO", true},                   // greeting prefix
		{"so... about the payment", true}, // keyword substring
		{"big PROFIT today", true},        // keyword, case-insensitive
		{"nothing relevant here", false},
		{"say hi", false}, // greeting must be a prefix, not a substring
	}
	for _, tt := range tests {
		if got := p.ShouldTrigger(Message{Content: tt.content}); got != tt.want {
			t.Errorf("ShouldTrigger(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestCooldownAllows_Sequence(t *testing.T) {
	p := newTestPolicy(Config{ReplyAll: true, Cooldown: 15 * time.Second})

	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }

	if !p.CooldownAllows("chan-1") {
		t.Fatal("first call should pass")
	}
	if p.CooldownAllows("chan-1") {
		t.Fatal("immediate second call should be blocked")
	}

	clock = clock.Add(15 * time.Second)
	if !p.CooldownAllows("chan-1") {
		t.Fatal("call after the interval should pass")
	}
}

func TestCooldownAllows_ZeroIntervalUnconstrained(t *testing.T) {
	p := newTestPolicy(Config{ReplyAll: true})

	for i := 0; i < 5; i++ {
		if !p.CooldownAllows("chan-1") {
			t.Fatalf("call %d blocked with zero cooldown", i)
		}
	}
}

func TestCooldownAllows_ChannelsIndependent(t *testing.T) {
	p := newTestPolicy(Config{Cooldown: time.Minute})

	if !p.CooldownAllows("a") {
		t.Fatal("channel a first call should pass")
	}
	if !p.CooldownAllows("b") {
		t.Fatal("channel b should not be affected by channel a")
	}
	if p.CooldownAllows("a") {
		t.Fatal("channel a second call should be blocked")
	}
}
