package models

import (
	"strings"
	"time"
)

// Sender identifies which side of a conversation produced a message.
type Sender string

// ProcessingType classifies how a message was processed by the assistant.
type ProcessingType string

const (
	// SenderUser marks a message typed by the user.
	SenderUser Sender = "user"
	// SenderAssistant marks a message produced by the assistant.
	SenderAssistant Sender = "assistant"

	// ProcessingText is the default handling strategy for plain chat input.
	ProcessingText ProcessingType = "text"
	// ProcessingEmbedding marks input that asks for vector embeddings.
	ProcessingEmbedding ProcessingType = "embedding"
	// ProcessingAudio marks input that asks for audio generation.
	ProcessingAudio ProcessingType = "audio"
)

// Message represents an individual communication entry within a conversation. The ID is assigned at
// creation time and stays stable for the message's lifetime; Text is immutable after creation. ModelID
// is only filled for assistant messages and references the model that produced the reply.
type Message struct {
	ID             string         `json:"id"`
	Text           string         `json:"text"`
	Sender         Sender         `json:"sender"`
	Timestamp      time.Time      `json:"timestamp"`
	ModelID        string         `json:"modelId,omitempty"`
	ProcessingType ProcessingType `json:"processingType"`
}

// ClassifyInput picks the processing type for a raw input string by case-insensitive substring
// matching. Embedding keywords take precedence over audio keywords; the first matching rule wins
// and anything else falls through to text.
func ClassifyInput(input string) ProcessingType {
	lowered := strings.ToLower(input)
	switch {
	case strings.Contains(lowered, "embed") || strings.Contains(lowered, "vector"):
		return ProcessingEmbedding
	case strings.Contains(lowered, "audio") || strings.Contains(lowered, "sound") || strings.Contains(lowered, "speak"):
		return ProcessingAudio
	default:
		return ProcessingText
	}
}
