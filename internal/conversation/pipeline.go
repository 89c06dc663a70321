package conversation

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/codychat/chat-web-ui/internal/models"
)

// Responder produces the simulated assistant reply for a submitted input. Respond blocks for the
// simulated inference time and honors context cancellation.
type Responder interface {
	Respond(ctx context.Context, input string, pt models.ProcessingType, modelName string) (string, error)
}

// Pipeline turns raw user input into messages: it appends the user message synchronously, then
// completes the conversation with an assistant message once the responder's simulated latency
// elapsed. Each pending completion is tagged with the conversation id captured at submission time,
// so it lands in the right conversation even if the user has switched away; switching away cancels
// it instead.
type Pipeline struct {
	store     *Store
	responder Responder
	logger    *slog.Logger

	mu       sync.Mutex
	onReply  func(conversationID string, msg models.Message)
	inflight sync.WaitGroup
}

// NewPipeline creates a Pipeline writing through the given store.
func NewPipeline(store *Store, responder Responder, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		responder: responder,
		logger:    logger.With(slog.String("module", "pipeline")),
	}
}

// Notify registers a callback invoked after an assistant message has been appended. The
// presentation layer uses it to push the reply to connected clients.
func (p *Pipeline) Notify(fn func(conversationID string, msg models.Message)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReply = fn
}

// Submit validates and appends a user message, then schedules the simulated assistant completion.
// The returned message is already persisted when Submit returns; the assistant reply follows
// asynchronously. Whitespace-only input yields ErrEmptyMessage, a missing model selection
// ErrNoModel, and a conversation already awaiting a response ErrResponsePending.
func (p *Pipeline) Submit(ctx context.Context, text string) (models.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Message{}, ErrEmptyMessage
	}

	pt := models.ClassifyInput(trimmed)

	userMsg, respCtx, conversationID, model, err := p.store.beginSubmit(ctx, trimmed, pt)
	if err != nil {
		return models.Message{}, err
	}

	p.inflight.Add(1)
	go p.complete(respCtx, conversationID, trimmed, pt, model)

	return userMsg, nil
}

// Wait blocks until all scheduled completions have finished or been discarded. Used on shutdown
// and in tests.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

func (p *Pipeline) complete(ctx context.Context, conversationID, input string, pt models.ProcessingType, model models.AIModel) {
	defer p.inflight.Done()
	defer p.store.endResponse(conversationID)

	reply, err := p.responder.Respond(ctx, input, pt, model.Name)
	if err != nil {
		// The pending response was discarded, typically because the user switched conversations.
		p.logger.Debug("Discarding pending response",
			slog.String("conversationID", conversationID),
			slog.String("err", err.Error()))
		return
	}

	msg := models.Message{
		ID:             p.store.newID(),
		Text:           reply,
		Sender:         models.SenderAssistant,
		Timestamp:      p.store.now(),
		ModelID:        model.ID,
		ProcessingType: pt,
	}
	if err := p.store.AppendMessage(context.Background(), conversationID, msg); err != nil {
		p.logger.Error("Failed to append assistant message",
			slog.String("conversationID", conversationID),
			slog.String("err", err.Error()))
		return
	}

	p.mu.Lock()
	fn := p.onReply
	p.mu.Unlock()
	if fn != nil {
		fn(conversationID, msg)
	}
}
