package handlers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	chatwebui "github.com/codychat/chat-web-ui"
	"github.com/codychat/chat-web-ui/internal/conversation"
	"github.com/codychat/chat-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
)

// ThemeStore persists the visual theme preference between sessions.
type ThemeStore interface {
	Theme(ctx context.Context) (string, error)
	SaveTheme(ctx context.Context, theme string) error
}

// Main handles the core functionality of the chat application, managing server-sent events,
// HTML templates, and interactions between the conversation store and the message pipeline.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template
	markdown  goldmark.Markdown

	store    *conversation.Store
	pipeline *conversation.Pipeline
	themes   ThemeStore
	catalog  models.Catalog

	logger *slog.Logger
}

const (
	chatsSSETopic = "chats"

	errLoggerKey = "err"
)

// SSE event types for real-time updates.
var (
	chatsSSEType    = sse.Type("chats")
	messagesSSEType = sse.Type("messages")
)

// NewMain creates a new Main instance wired to the given conversation store, message pipeline,
// theme store, and model catalog. It parses the embedded HTML templates and configures the SSE
// server so every client receives history-list updates, while clients watching a particular
// conversation additionally receive its assistant replies. The pipeline's reply notification is
// hooked up here so completed responses reach connected clients.
func NewMain(
	store *conversation.Store,
	pipeline *conversation.Pipeline,
	themes ThemeStore,
	catalog models.Catalog,
	logger *slog.Logger,
) (Main, error) {
	// We parse templates from three distinct directories to separate layout, pages, and partial views
	tmpl, err := template.ParseFS(
		chatwebui.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return Main{}, err
	}

	m := Main{
		sseSrv: &sse.Server{
			OnSession: func(s *sse.Session) (sse.Subscription, bool) {
				// We start with default topics that all clients should subscribe to
				topics := []string{sse.DefaultTopic, chatsSSETopic}

				// We add a conversation-specific topic if the client watches a particular conversation
				chatID := s.Req.URL.Query().Get("chat_id")
				if chatID != "" {
					topics = append(topics, conversationTopic(chatID))
				}

				return sse.Subscription{
					Client:      s,
					LastEventID: s.LastEventID,
					Topics:      topics,
				}, true
			},
		},
		templates: tmpl,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(highlighting.WithStyle("monokai")),
			),
		),
		store:    store,
		pipeline: pipeline,
		themes:   themes,
		catalog:  catalog,
		logger:   logger.With(slog.String("module", "handlers")),
	}

	pipeline.Notify(m.publishAssistantMessage)

	return m, nil
}

func conversationTopic(chatID string) string {
	return fmt.Sprintf("conversation-%s", chatID)
}

// Shutdown gracefully terminates the Main instance's SSE server. It waits for in-flight simulated
// completions, broadcasts a close message to all connected clients, and waits up to 5 seconds for
// connections to terminate. After the timeout, any remaining connections are forcefully closed.
func (m Main) Shutdown(ctx context.Context) error {
	m.pipeline.Wait()

	e := &sse.Message{Type: sse.Type("closeChat")}
	// We create a close event that complies with SSE spec requiring data
	e.AppendData("bye")

	// We ignore the error here since we're shutting down anyway
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}

// renderMessageHTML converts message text into safe HTML for template insertion. Assistant text is
// treated as markdown; user text is escaped verbatim.
func (m Main) renderMessageHTML(msg models.Message) (template.HTML, error) {
	if msg.Sender != models.SenderAssistant {
		return template.HTML(template.HTMLEscapeString(msg.Text)), nil
	}

	var buf bytes.Buffer
	if err := m.markdown.Convert([]byte(msg.Text), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark output of assistant text
}
