package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codychat/chat-web-ui/internal/conversation"
	"github.com/codychat/chat-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
)

// HandleChats processes message submissions through HTTP POST requests. It expects a "message"
// form field, appends the user message synchronously through the pipeline, and renders the
// user-message partial as the response. The assistant reply arrives later over SSE once the
// simulated latency elapsed.
//
// Empty input and a missing model selection map to 400, a conversation already awaiting a
// response to 409, and persistence failures to 500 so the user learns that history may not
// survive a reload.
func (m Main) HandleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	msg := r.FormValue("message")

	userMsg, err := m.pipeline.Submit(r.Context(), msg)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrEmptyMessage):
			http.Error(w, "Message is required", http.StatusBadRequest)
		case errors.Is(err, conversation.ErrNoModel):
			http.Error(w, "Select a model first", http.StatusBadRequest)
		case errors.Is(err, conversation.ErrResponsePending):
			http.Error(w, "A response is still pending", http.StatusConflict)
		default:
			m.logger.Error("Failed to submit message", slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	// The submission may have created or retitled a conversation, so refresh the sidebar.
	m.publishChatList()

	content, err := m.renderMessageHTML(userMsg)
	if err != nil {
		m.logger.Error("Failed to render message", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	err = m.templates.ExecuteTemplate(w, "user_message", message{
		ID:        userMsg.ID,
		Role:      string(userMsg.Sender),
		Content:   content,
		Timestamp: userMsg.Timestamp,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleNewChat starts a fresh empty conversation and redirects back to the chat page. The new
// conversation is not persisted until its first message.
func (m Main) HandleNewChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m.store.StartNew()
	m.publishChatList()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLoadChat activates the conversation named by the chat_id query parameter. An unknown id
// silently falls back to a fresh conversation.
func (m Main) HandleLoadChat(w http.ResponseWriter, r *http.Request) {
	m.store.LoadExisting(r.URL.Query().Get("chat_id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSelectModel changes the selected model from the model_id form field. An unknown model id
// is treated as a no-op rather than an error.
func (m Main) HandleSelectModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if mdl, ok := m.catalog.ModelByID(r.FormValue("model_id")); ok {
		if err := m.store.SelectModel(r.Context(), mdl); err != nil {
			m.logger.Error("Failed to persist model selection", slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDeleteMessage removes a message from the active conversation. Removing the last message
// deletes the conversation from the history entirely.
func (m Main) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := m.store.RemoveMessage(r.Context(), r.FormValue("message_id")); err != nil {
		m.logger.Error("Failed to remove message", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.publishChatList()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSSE serves the server-sent events stream.
func (m Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// publishAssistantMessage pushes a completed assistant reply to clients watching its conversation.
// It runs on the pipeline's completion goroutine.
func (m Main) publishAssistantMessage(conversationID string, msg models.Message) {
	content, err := m.renderMessageHTML(msg)
	if err != nil {
		m.logger.Error("Failed to render assistant message", slog.String(errLoggerKey, err.Error()))
		return
	}

	var sb strings.Builder
	err = m.templates.ExecuteTemplate(&sb, "ai_message", message{
		ID:        msg.ID,
		Role:      string(msg.Sender),
		Content:   content,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		m.logger.Error("Failed to execute ai_message template", slog.String(errLoggerKey, err.Error()))
		return
	}

	e := sse.Message{Type: messagesSSEType}
	e.AppendData(sb.String())
	if err := m.sseSrv.Publish(&e, conversationTopic(conversationID)); err != nil {
		m.logger.Error("Failed to publish assistant message", slog.String(errLoggerKey, err.Error()))
	}

	m.publishChatList()
}

func (m Main) publishChatList() {
	divs, err := m.chatDivs(m.store.Active().ID)
	if err != nil {
		m.logger.Error("Failed to generate chat divs", slog.String(errLoggerKey, err.Error()))
		return
	}

	e := sse.Message{Type: chatsSSEType}
	e.AppendData(divs)
	if err := m.sseSrv.Publish(&e, chatsSSETopic); err != nil {
		m.logger.Error("Failed to publish chats", slog.String(errLoggerKey, err.Error()))
	}
}

func (m Main) chatDivs(activeID string) (string, error) {
	var sb strings.Builder
	for _, ch := range m.chatList(activeID) {
		if err := m.templates.ExecuteTemplate(&sb, "chat_title", ch); err != nil {
			return "", fmt.Errorf("failed to execute chat_title template: %w", err)
		}
	}
	return sb.String(), nil
}
