package models

import "slices"

// AIModel describes an entry of the immutable model catalog. The conversation core only relies on
// ID and Name; the remaining fields exist for the presentation layer.
type AIModel struct {
	ID           string
	Name         string
	Provider     string
	Category     string
	Description  string
	Color        string
	IsReasoner   bool
	IsConfigured bool
}

// DefaultModelID is the model selected when no conversation restores a different one.
const DefaultModelID = "gpt-4o"

// Catalog is an immutable list of AI models the user can pick from.
type Catalog []AIModel

// ModelByID looks up a catalog entry by its id.
func (c Catalog) ModelByID(id string) (AIModel, bool) {
	idx := slices.IndexFunc(c, func(m AIModel) bool { return m.ID == id })
	if idx == -1 {
		return AIModel{}, false
	}
	return c[idx], true
}

// SampleCatalog returns the built-in model catalog.
func SampleCatalog() Catalog {
	return Catalog{
		{
			ID: "gpt-4o", Name: "GPT-4o", Provider: "openai", Category: "chat",
			Description: "The latest GPT-4 model with improved capabilities",
			Color:       "#6a44d9", IsReasoner: true, IsConfigured: true,
		},
		{
			ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Provider: "openai", Category: "chat",
			Description: "Faster and more economical model with good capabilities",
			Color:       "#19c37d", IsReasoner: false, IsConfigured: true,
		},
		{
			ID: "claude-3-opus", Name: "Claude 3 Opus", Provider: "anthropic", Category: "chat",
			Description: "Most powerful Claude model with excellent reasoning",
			Color:       "#e37e40", IsReasoner: true, IsConfigured: true,
		},
		{
			ID: "claude-3-sonnet", Name: "Claude 3 Sonnet", Provider: "anthropic", Category: "chat",
			Description: "Balanced Claude model",
			Color:       "#e37e40", IsReasoner: true, IsConfigured: true,
		},
		{
			ID: "claude-3-haiku", Name: "Claude 3 Haiku", Provider: "anthropic", Category: "chat",
			Description: "Fast and efficient Claude model",
			Color:       "#e37e40", IsReasoner: false, IsConfigured: true,
		},
		{
			ID: "gemini-pro", Name: "Gemini Pro", Provider: "gemini", Category: "chat",
			Description: "Google's advanced multimodal model",
			Color:       "#4285f4", IsReasoner: true, IsConfigured: true,
		},
		{
			ID: "gemini-flash", Name: "Gemini Flash", Provider: "gemini", Category: "chat",
			Description: "Fast and efficient Gemini model",
			Color:       "#4285f4", IsReasoner: false, IsConfigured: true,
		},
		{
			ID: "grok-1", Name: "Grok-1", Provider: "grok", Category: "chat",
			Description: "xAI's conversational AI model",
			Color:       "#ff0080", IsReasoner: true, IsConfigured: true,
		},
		{
			ID: "mistral-medium", Name: "Mistral Medium", Provider: "ollama", Category: "chat",
			Description: "Balanced open source model with great capabilities",
			Color:       "#5a66d1", IsReasoner: false, IsConfigured: true,
		},
		{
			ID: "llama3-8b", Name: "Llama 3 8B", Provider: "ollama", Category: "chat",
			Description: "Meta's 8B parameter open source model",
			Color:       "#5a66d1", IsReasoner: false, IsConfigured: true,
		},
		{
			ID: "llava", Name: "LLaVA", Provider: "ollama", Category: "image",
			Description: "Multimodal model for processing images",
			Color:       "#5a66d1", IsReasoner: false, IsConfigured: true,
		},
		{
			ID: "pplx-online", Name: "Perplexity Online", Provider: "perplexity", Category: "search",
			Description: "Model with real-time web search capabilities",
			Color:       "#00bfff", IsReasoner: true, IsConfigured: true,
		},
	}
}
