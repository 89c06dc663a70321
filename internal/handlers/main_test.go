package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codychat/chat-web-ui/internal/conversation"
	"github.com/codychat/chat-web-ui/internal/handlers"
	"github.com/codychat/chat-web-ui/internal/models"
	"github.com/codychat/chat-web-ui/internal/services"
)

type memMirror struct {
	mu            sync.Mutex
	conversations []models.Conversation
}

func (m *memMirror) LoadConversations(context.Context) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Conversation, len(m.conversations))
	for i, c := range m.conversations {
		out[i] = c.Clone()
	}
	return out, nil
}

func (m *memMirror) SaveConversations(_ context.Context, conversations []models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations = make([]models.Conversation, len(conversations))
	for i, c := range conversations {
		m.conversations[i] = c.Clone()
	}
	return nil
}

type memThemes struct {
	mu    sync.Mutex
	theme string
}

func (m *memThemes) Theme(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme, nil
}

func (m *memThemes) SaveTheme(_ context.Context, theme string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.theme = theme
	return nil
}

func newTestMain(t *testing.T, mirror *memMirror, themes *memThemes) (handlers.Main, *conversation.Store, *conversation.Pipeline) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := models.SampleCatalog()

	store := conversation.NewStore(mirror, catalog, models.DefaultModelID, logger)
	store.Load(context.Background())
	pipeline := conversation.NewPipeline(store, services.NewSimulated(time.Millisecond, logger), logger)

	m, err := handlers.NewMain(store, pipeline, themes, catalog, logger)
	if err != nil {
		t.Fatalf("NewMain() error = %v", err)
	}
	return m, store, pipeline
}

func TestNewMain(t *testing.T) {
	m, _, _ := newTestMain(t, &memMirror{}, &memThemes{})

	if m.Shutdown(context.Background()) != nil {
		t.Error("Shutdown() should not return error")
	}
}

func TestHandleHome(t *testing.T) {
	mirror := &memMirror{conversations: []models.Conversation{
		{
			ID:    "1",
			Title: "Test Chat",
			Messages: []models.Message{
				{ID: "m1", Text: "Hello", Sender: models.SenderUser, Timestamp: time.Now()},
			},
			LastActivity: time.Now(),
		},
	}}
	m, _, _ := newTestMain(t, mirror, &memThemes{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	m.HandleHome(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("HandleHome() status = %v, want %v", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	for _, want := range []string{"Test Chat", "Hello", "GPT-4o"} {
		if !strings.Contains(body, want) {
			t.Errorf("HandleHome() body does not contain %q", want)
		}
	}
}

func TestHandleChats(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		message    string
		wantStatus int
	}{
		{
			name:       "Invalid method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "Empty message",
			method:     http.MethodPost,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Whitespace message",
			method:     http.MethodPost,
			message:    "   ",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Valid message",
			method:     http.MethodPost,
			message:    "Hello",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, pipeline := newTestMain(t, &memMirror{}, &memThemes{})

			form := url.Values{}
			form.Set("message", tt.message)
			req := httptest.NewRequest(tt.method, "/chats", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()

			m.HandleChats(w, req)
			pipeline.Wait()

			if w.Code != tt.wantStatus {
				t.Errorf("HandleChats() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && !strings.Contains(w.Body.String(), tt.message) {
				t.Errorf("HandleChats() body does not contain the submitted message")
			}
		})
	}
}

func TestHandleChatsWhilePending(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := models.SampleCatalog()
	store := conversation.NewStore(&memMirror{}, catalog, models.DefaultModelID, logger)
	store.Load(context.Background())
	// A long latency keeps the first response pending for the whole test.
	pipeline := conversation.NewPipeline(store, services.NewSimulated(time.Hour, logger), logger)
	m, err := handlers.NewMain(store, pipeline, &memThemes{}, catalog, logger)
	if err != nil {
		t.Fatal(err)
	}

	submit := func() *httptest.ResponseRecorder {
		form := url.Values{}
		form.Set("message", "hello")
		req := httptest.NewRequest(http.MethodPost, "/chats", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		m.HandleChats(w, req)
		return w
	}

	if w := submit(); w.Code != http.StatusOK {
		t.Fatalf("first submission status = %v, want %v", w.Code, http.StatusOK)
	}
	if w := submit(); w.Code != http.StatusConflict {
		t.Errorf("second submission status = %v, want %v", w.Code, http.StatusConflict)
	}

	// Discard the pending response so the test doesn't wait out the latency.
	store.StartNew()
	pipeline.Wait()
}

func TestHandleNewChat(t *testing.T) {
	m, store, _ := newTestMain(t, &memMirror{}, &memThemes{})
	before := store.Active().ID

	req := httptest.NewRequest(http.MethodPost, "/chats/new", nil)
	w := httptest.NewRecorder()

	m.HandleNewChat(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("HandleNewChat() status = %v, want %v", w.Code, http.StatusSeeOther)
	}
	if store.Active().ID == before {
		t.Error("HandleNewChat() did not activate a fresh conversation")
	}
}

func TestHandleLoadChat(t *testing.T) {
	mirror := &memMirror{conversations: []models.Conversation{
		{
			ID:    "1",
			Title: "Old Chat",
			Messages: []models.Message{
				{ID: "m1", Text: "old message", Sender: models.SenderUser, Timestamp: time.Now().Add(-time.Hour)},
			},
			LastActivity: time.Now().Add(-time.Hour),
		},
	}}
	m, store, _ := newTestMain(t, mirror, &memThemes{})
	store.StartNew()

	req := httptest.NewRequest(http.MethodGet, "/chats/load?chat_id=1", nil)
	w := httptest.NewRecorder()

	m.HandleLoadChat(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("HandleLoadChat() status = %v, want %v", w.Code, http.StatusSeeOther)
	}
	if store.Active().ID != "1" {
		t.Errorf("active conversation = %q, want %q", store.Active().ID, "1")
	}
}

func TestHandleSelectModel(t *testing.T) {
	m, store, _ := newTestMain(t, &memMirror{}, &memThemes{})

	form := url.Values{}
	form.Set("model_id", "claude-3-opus")
	req := httptest.NewRequest(http.MethodPost, "/models/select", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	m.HandleSelectModel(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("HandleSelectModel() status = %v, want %v", w.Code, http.StatusSeeOther)
	}
	if mdl, _ := store.SelectedModel(); mdl.ID != "claude-3-opus" {
		t.Errorf("selected model = %q, want %q", mdl.ID, "claude-3-opus")
	}
}

func TestHandleTheme(t *testing.T) {
	themes := &memThemes{theme: "midnight"}
	m, _, _ := newTestMain(t, &memMirror{}, themes)

	req := httptest.NewRequest(http.MethodPost, "/theme", nil)
	w := httptest.NewRecorder()

	m.HandleTheme(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("HandleTheme() status = %v, want %v", w.Code, http.StatusSeeOther)
	}
	if themes.theme != "light" {
		t.Errorf("theme after toggle = %q, want %q (midnight cycles to light)", themes.theme, "light")
	}
}
