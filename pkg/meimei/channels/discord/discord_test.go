package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestAuthorName(t *testing.T) {
	tests := []struct {
		name string
		msg  *discordgo.MessageCreate
		want string
	}{
		{
			"nick wins",
			&discordgo.MessageCreate{Message: &discordgo.Message{
				Author: &discordgo.User{Username: "user1", GlobalName: "Global"},
				Member: &discordgo.Member{Nick: "Nicky"},
			}},
			"Nicky",
		},
		{
			"global name next",
			&discordgo.MessageCreate{Message: &discordgo.Message{
				Author: &discordgo.User{Username: "user1", GlobalName: "Global"},
			}},
			"Global",
		},
		{
			"username last",
			&discordgo.MessageCreate{Message: &discordgo.Message{
				Author: &discordgo.User{Username: "user1"},
			}},
			"user1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authorName(tt.msg); got != tt.want {
				t.Errorf("authorName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInteractionUser(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "42"}},
	}}
	if got := interactionUser(guild); got != "42" {
		t.Errorf("guild invoker = %q, want 42", got)
	}

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "7"},
	}}
	if got := interactionUser(dm); got != "7" {
		t.Errorf("dm invoker = %q, want 7", got)
	}

	empty := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}
	if got := interactionUser(empty); got != "" {
		t.Errorf("empty invoker = %q, want empty", got)
	}
}
