// Package conversation implements the conversation state and persistence model: the authoritative
// set of conversations, the active-conversation pointer, and the message pipeline that turns user
// input into simulated assistant replies. Every in-memory mutation is mirrored to a persisted slot
// holding the full serialized conversation set.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/codychat/chat-web-ui/internal/models"
	"github.com/google/uuid"
)

// Mirror is the durable key-value slot holding the serialized conversation set. Implementations
// must treat a missing slot as empty, discard malformed content, and replace the entire set on
// every save.
type Mirror interface {
	LoadConversations(ctx context.Context) ([]models.Conversation, error)
	SaveConversations(ctx context.Context, conversations []models.Conversation) error
}

// Registry resolves model ids against the immutable model catalog.
type Registry interface {
	ModelByID(id string) (models.AIModel, bool)
}

var (
	// ErrEmptyMessage is returned when a submitted message is empty or whitespace-only.
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrNoModel is returned when a message is submitted without a selected model.
	ErrNoModel = errors.New("no model is selected")
	// ErrResponsePending is returned when a conversation already awaits an assistant response.
	ErrResponsePending = errors.New("a response is already pending for this conversation")
)

// pendingResponse tracks an in-flight simulated completion for one conversation.
type pendingResponse struct {
	cancel         context.CancelFunc
	processingType models.ProcessingType
}

// Store owns the conversation list and the active-conversation pointer, and keeps the persisted
// mirror consistent with every mutation. All methods are safe for concurrent use; mutation is
// serialized through a single mutex since HTTP handlers may run in parallel.
type Store struct {
	mu sync.Mutex

	mirror   Mirror
	registry Registry
	logger   *slog.Logger

	conversations []models.Conversation
	active        models.Conversation
	selectedModel models.AIModel
	chatStarted   bool

	pending map[string]pendingResponse

	now   func() time.Time
	newID func() string
}

// NewStore creates a Store backed by the given mirror and model registry. The default model is
// resolved from the registry; an unknown default leaves no model selected, which blocks submissions
// until one is picked.
func NewStore(mirror Mirror, registry Registry, defaultModelID string, logger *slog.Logger) *Store {
	s := &Store{
		mirror:   mirror,
		registry: registry,
		logger:   logger.With(slog.String("module", "conversation")),
		pending:  make(map[string]pendingResponse),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	if m, ok := registry.ModelByID(defaultModelID); ok {
		s.selectedModel = m
	}
	return s
}

// Load initializes the store from the persisted mirror. Read failures are non-fatal: the store
// falls back to an empty history and keeps going, since loss of persistence must degrade to an
// in-memory-only session. The conversation with the greatest lastActivity becomes active; an empty
// set yields a fresh, unpersisted active conversation.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations, err := s.mirror.LoadConversations(ctx)
	if err != nil {
		s.logger.Error("Falling back to empty conversation history",
			slog.String("err", err.Error()))
		conversations = nil
	}
	s.conversations = conversations

	if len(s.conversations) == 0 {
		s.startNewLocked()
		return
	}

	idx := 0
	for i, c := range s.conversations {
		if c.LastActivity.After(s.conversations[idx].LastActivity) {
			idx = i
		}
	}
	s.activateLocked(s.conversations[idx])
}

// StartNew makes a fresh empty conversation active. The new conversation is not written to the
// mirror until its first message is appended. A pending response of the conversation being left is
// discarded.
func (s *Store) StartNew() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPendingLocked(s.active.ID)
	s.startNewLocked()
}

// LoadExisting makes the conversation with the given id active, restoring its messages and its
// last-used model. An unknown id behaves as StartNew. A pending response of the conversation being
// left is discarded.
func (s *Store) LoadExisting(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPendingLocked(s.active.ID)

	idx := slices.IndexFunc(s.conversations, func(c models.Conversation) bool { return c.ID == id })
	if idx == -1 {
		s.startNewLocked()
		return
	}
	s.activateLocked(s.conversations[idx])
}

// SelectModel changes the selected model and syncs the active conversation.
func (s *Store) SelectModel(ctx context.Context, model models.AIModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedModel = model
	s.active.ModelID = model.ID
	return s.syncLocked(ctx)
}

// AppendMessage appends a message to the conversation with the given id and syncs the mirror. The
// target is usually the active conversation, but a completion that fires after the user switched
// away still lands in the conversation it was submitted to. An unknown id is a no-op, which covers
// a conversation deleted while its completion was pending.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conversationID == s.active.ID {
		s.active.Messages = append(s.active.Messages, msg)
		s.chatStarted = true
		return s.syncLocked(ctx)
	}

	idx := slices.IndexFunc(s.conversations, func(c models.Conversation) bool { return c.ID == conversationID })
	if idx == -1 {
		s.logger.Warn("Dropping message for unknown conversation",
			slog.String("conversationID", conversationID))
		return nil
	}

	c := s.conversations[idx]
	c.Messages = append(slices.Clone(c.Messages), msg)
	c.Title = models.DeriveTitle(c.Messages[0].Text)
	c.LastActivity = s.now()
	if msg.ModelID != "" {
		c.ModelID = msg.ModelID
	}
	s.conversations[idx] = c
	return s.mirror.SaveConversations(ctx, s.conversations)
}

// RemoveMessage deletes a message from the active conversation by id and syncs. Removing the last
// message deletes the conversation from the persisted set entirely and activates a replacement. An
// unknown message id is a no-op.
func (s *Store) RemoveMessage(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.active.Messages, func(m models.Message) bool { return m.ID == messageID })
	if idx == -1 {
		return nil
	}
	s.active.Messages = slices.Delete(s.active.Messages, idx, idx+1)
	return s.syncLocked(ctx)
}

// Sync reconciles the persisted mirror with the active conversation. It is invoked internally
// after every mutation; the exported form exists for callers that changed nothing but want to force
// a write, e.g. after recovering from a mirror failure.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncLocked(ctx)
}

// Active returns a copy of the active conversation.
func (s *Store) Active() models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone()
}

// Conversations returns copies of the persisted conversations sorted by last activity, most
// recent first, the order the history listing shows them in.
func (s *Store) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	slices.SortStableFunc(out, func(a, b models.Conversation) int {
		return b.LastActivity.Compare(a.LastActivity)
	})
	return out
}

// SelectedModel returns the currently selected model, reporting false when none is selected.
func (s *Store) SelectedModel() (models.AIModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedModel, s.selectedModel.ID != ""
}

// ChatStarted reports whether the active conversation has received any message this session. The
// presentation layer uses it to switch between the centered welcome input and the bottom input bar.
func (s *Store) ChatStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatStarted
}

// Awaiting reports whether the active conversation has a pending assistant response, and with
// which processing type, so the presentation layer can pick a loading animation.
func (s *Store) Awaiting() (models.ProcessingType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[s.active.ID]
	return p.processingType, ok
}

// beginSubmit validates a submission against the active conversation, appends the user message,
// syncs, and registers the pending response. It returns everything the pipeline needs to complete
// the response later: a cancellable context, the target conversation id, and the selected model.
func (s *Store) beginSubmit(ctx context.Context, text string, pt models.ProcessingType) (models.Message, context.Context, string, models.AIModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedModel.ID == "" {
		return models.Message{}, nil, "", models.AIModel{}, ErrNoModel
	}
	if _, ok := s.pending[s.active.ID]; ok {
		return models.Message{}, nil, "", models.AIModel{}, ErrResponsePending
	}

	msg := models.Message{
		ID:             s.newID(),
		Text:           text,
		Sender:         models.SenderUser,
		Timestamp:      s.now(),
		ProcessingType: pt,
	}
	s.active.Messages = append(s.active.Messages, msg)
	s.chatStarted = true
	if err := s.syncLocked(ctx); err != nil {
		return models.Message{}, nil, "", models.AIModel{}, err
	}

	// The completion outlives the submitting request, so it gets its own context. Its cancel
	// function doubles as the cancellation token discarded on conversation switch.
	respCtx, cancel := context.WithCancel(context.Background())
	s.pending[s.active.ID] = pendingResponse{cancel: cancel, processingType: pt}

	return msg, respCtx, s.active.ID, s.selectedModel, nil
}

// endResponse clears the pending marker once a completion finished or was discarded.
func (s *Store) endResponse(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[conversationID]; ok {
		p.cancel()
		delete(s.pending, conversationID)
	}
}

func (s *Store) cancelPendingLocked(conversationID string) {
	if p, ok := s.pending[conversationID]; ok {
		p.cancel()
		delete(s.pending, conversationID)
	}
}

func (s *Store) startNewLocked() {
	s.active = models.Conversation{ID: s.newID(), ModelID: s.selectedModel.ID}
	s.chatStarted = false
}

func (s *Store) activateLocked(c models.Conversation) {
	s.active = c.Clone()
	s.chatStarted = len(s.active.Messages) > 0
	if m, ok := s.registry.ModelByID(c.ModelID); ok {
		s.selectedModel = m
	}
}

// syncLocked is the three-case sync of the persistence model: a non-empty active conversation is
// upserted into the set and the whole set written out; an emptied, previously persisted one is
// deleted from the set and a replacement activated; an empty, never-persisted one is left alone.
func (s *Store) syncLocked(ctx context.Context) error {
	if len(s.active.Messages) > 0 {
		s.active.Title = models.DeriveTitle(s.active.Messages[0].Text)
		s.active.LastActivity = s.now()
		if s.selectedModel.ID != "" {
			s.active.ModelID = s.selectedModel.ID
		}

		idx := slices.IndexFunc(s.conversations, func(c models.Conversation) bool { return c.ID == s.active.ID })
		if idx == -1 {
			s.conversations = append(s.conversations, s.active.Clone())
		} else {
			s.conversations[idx] = s.active.Clone()
		}
		return s.mirror.SaveConversations(ctx, s.conversations)
	}

	idx := slices.IndexFunc(s.conversations, func(c models.Conversation) bool { return c.ID == s.active.ID })
	if idx == -1 {
		return nil
	}

	s.conversations = slices.Delete(s.conversations, idx, idx+1)
	if err := s.mirror.SaveConversations(ctx, s.conversations); err != nil {
		return err
	}

	if len(s.conversations) == 0 {
		s.startNewLocked()
		return nil
	}
	next := 0
	for i, c := range s.conversations {
		if c.LastActivity.After(s.conversations[next].LastActivity) {
			next = i
		}
	}
	s.activateLocked(s.conversations[next])
	return nil
}
