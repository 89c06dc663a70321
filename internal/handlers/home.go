package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/codychat/chat-web-ui/internal/models"
)

type chat struct {
	ID    string
	Title string

	Active bool
}

type message struct {
	ID        string
	Role      string
	Content   template.HTML
	Timestamp time.Time
}

type messageGroup struct {
	ShowDateDivider bool
	DateLabel       string
	Messages        []message
}

type modelOption struct {
	ID       string
	Name     string
	Provider string
	Color    string
	Selected bool
}

type homePageData struct {
	Theme         string
	ChatStarted   bool
	CurrentChatID string

	Groups []messageGroup
	Chats  []chat
	Models []modelOption

	SelectedModelName string
	Loading           bool
	LoadingType       string
}

// HandleHome renders the main chat page: the active conversation's message groups, the history
// sidebar sorted by last activity, the model picker, and the current loading state.
func (m Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	active := m.store.Active()

	groups, err := m.messageGroups(active.Messages)
	if err != nil {
		m.logger.Error("Failed to render message groups", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	selected, hasModel := m.store.SelectedModel()
	loadingType, loading := m.store.Awaiting()

	data := homePageData{
		Theme:         m.currentTheme(r.Context()),
		ChatStarted:   m.store.ChatStarted(),
		CurrentChatID: active.ID,
		Groups:        groups,
		Chats:         m.chatList(active.ID),
		Models:        m.modelOptions(selected.ID),
		Loading:       loading,
		LoadingType:   string(loadingType),
	}
	if hasModel {
		data.SelectedModelName = selected.Name
	}

	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (m Main) messageGroups(msgs []models.Message) ([]messageGroup, error) {
	now := time.Now()

	raw := models.GroupMessages(msgs)
	groups := make([]messageGroup, len(raw))
	for i, g := range raw {
		view := messageGroup{
			ShowDateDivider: g.DateDivider,
			DateLabel:       models.FormatDividerDate(g.Messages[0].Timestamp, now),
			Messages:        make([]message, len(g.Messages)),
		}
		for j, msg := range g.Messages {
			content, err := m.renderMessageHTML(msg)
			if err != nil {
				return nil, err
			}
			view.Messages[j] = message{
				ID:        msg.ID,
				Role:      string(msg.Sender),
				Content:   content,
				Timestamp: msg.Timestamp,
			}
		}
		groups[i] = view
	}
	return groups, nil
}

func (m Main) chatList(activeID string) []chat {
	conversations := m.store.Conversations()
	chats := make([]chat, len(conversations))
	for i, c := range conversations {
		chats[i] = chat{
			ID:     c.ID,
			Title:  c.Title,
			Active: c.ID == activeID,
		}
	}
	return chats
}

func (m Main) modelOptions(selectedID string) []modelOption {
	options := make([]modelOption, 0, len(m.catalog))
	for _, mdl := range m.catalog {
		if !mdl.IsConfigured {
			continue
		}
		options = append(options, modelOption{
			ID:       mdl.ID,
			Name:     mdl.Name,
			Provider: mdl.Provider,
			Color:    mdl.Color,
			Selected: mdl.ID == selectedID,
		})
	}
	return options
}
