package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codychat/chat-web-ui/internal/models"
)

// defaultLatency stands in for real inference time when no delay is configured.
const defaultLatency = 3 * time.Second

// Simulated provides an assistant backend that produces canned replies after a fixed latency. It
// fills the role a real model provider would, without performing any inference.
type Simulated struct {
	latency time.Duration

	logger *slog.Logger
}

// NewSimulated creates a Simulated responder with the given latency. A non-positive latency falls
// back to the default, since the delay must stay observable to the caller.
func NewSimulated(latency time.Duration, logger *slog.Logger) Simulated {
	if latency <= 0 {
		latency = defaultLatency
	}
	return Simulated{
		latency: latency,
		logger:  logger.With(slog.String("module", "simulated")),
	}
}

// Respond waits out the simulated inference time and returns the reply for the given input. It
// returns early with the context error when the pending response is cancelled, e.g. because the
// user switched conversations.
func (s Simulated) Respond(ctx context.Context, input string, pt models.ProcessingType, modelName string) (string, error) {
	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.logger.Debug("Simulated response cancelled",
			slog.String("processingType", string(pt)))
		return "", ctx.Err()
	case <-timer.C:
	}
	return Reply(input, pt, modelName), nil
}

// Reply is the pure response function: the assistant text depends only on the input, its
// processing type, and the name of the selected model.
func Reply(input string, pt models.ProcessingType, modelName string) string {
	switch pt {
	case models.ProcessingEmbedding:
		return fmt.Sprintf("I've generated vector embeddings for your input. "+
			"The embedding has 1536 dimensions and has been optimized for semantic search.\n\n"+
			"Your query: %q has been processed successfully.", input)
	case models.ProcessingAudio:
		return fmt.Sprintf("I've generated audio for your text. "+
			"The audio file is 12 seconds long and has been generated using a realistic voice model.\n\n"+
			"Audio content: %q", input)
	default:
		return fmt.Sprintf("%s response: %s", modelName, input)
	}
}
