package models_test

import (
	"strings"
	"testing"

	"github.com/codychat/chat-web-ui/internal/models"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text kept as-is", "hello", "hello"},
		{"exactly thirty runes kept as-is", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"forty characters truncated", strings.Repeat("x", 40), strings.Repeat("x", 30) + "..."},
		{"multibyte runes counted as runes", strings.Repeat("ä", 31), strings.Repeat("ä", 30) + "..."},
		{"empty text", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.DeriveTitle(tt.text); got != tt.want {
				t.Errorf("DeriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConversationClone(t *testing.T) {
	c := models.Conversation{
		ID:       "1",
		Messages: []models.Message{{ID: "m1", Text: "hello"}},
	}

	clone := c.Clone()
	clone.Messages[0].Text = "changed"

	if c.Messages[0].Text != "hello" {
		t.Errorf("Clone() shares the message slice with the original")
	}
}

func TestCatalogModelByID(t *testing.T) {
	catalog := models.SampleCatalog()

	m, ok := catalog.ModelByID(models.DefaultModelID)
	if !ok {
		t.Fatalf("ModelByID(%q) not found; the default model must exist in the catalog", models.DefaultModelID)
	}
	if m.Name != "GPT-4o" {
		t.Errorf("default model name = %q, want %q", m.Name, "GPT-4o")
	}

	if _, ok := catalog.ModelByID("no-such-model"); ok {
		t.Error("ModelByID() found a model for an unknown id")
	}
}
