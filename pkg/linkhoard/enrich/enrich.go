package enrich

import (
	"context"
	"encoding/json"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	// maxInputChars bounds how much extracted text is sent upstream.
	maxInputChars = 15000

	defaultModel   = "gpt-4o-mini"
	requestTimeout = 30 * time.Second

	systemPrompt = "You are a helpful assistant that summarizes web content. " +
		"Output ONLY valid JSON with keys: 'summary' (string, max 3 sentences) " +
		"and 'tags' (array of strings, max 5 relevant tags)."
)

// Result is the outcome of an enrichment call. Degraded is set when the
// upstream output could not be parsed as structured JSON and Raw carries
// the unparsed text, so callers can tell a trusted summary from a
// best-effort fallback.
type Result struct {
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Degraded bool     `json:"-"`
	Raw      string   `json:"-"`
}

// chatCompleter is the slice of the OpenAI client the summarizer needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Summarizer produces an AI summary and tag suggestions for extracted
// page text. A Summarizer with no API key is valid and degrades to a
// fixed notice instead of calling upstream.
type Summarizer struct {
	client chatCompleter
	model  string
	log    *logrus.Logger
}

// New creates a Summarizer. An empty apiKey disables upstream calls.
// baseURL may point at any OpenAI-compatible endpoint; empty uses the
// library default.
func New(apiKey, baseURL, model string, log *logrus.Logger) *Summarizer {
	if model == "" {
		model = defaultModel
	}
	s := &Summarizer{model: model, log: log}
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		s.client = openai.NewClientWithConfig(cfg)
	}
	return s
}

// Summarize generates a summary and tags for text. It never returns an
// error: enrichment is a quality concern, not a correctness one, so
// unavailability and malformed upstream output both degrade.
func (s *Summarizer) Summarize(ctx context.Context, text string) Result {
	if s.client == nil {
		return Result{Summary: "AI Summary unavailable (No API Key)", Tags: []string{}}
	}

	// The ceiling is in characters; slicing runes keeps the cut from
	// landing inside a multibyte sequence.
	if runes := []rune(text); len(runes) > maxInputChars {
		text = string(runes[:maxInputChars])
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   300,
		Temperature: 0.5,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Please summarize the following text:\n\n" + text},
		},
	})
	if err != nil {
		s.log.WithError(err).Error("enrichment call failed")
		return Result{Summary: "Error generating summary.", Tags: []string{}}
	}
	if len(resp.Choices) == 0 {
		s.log.Warn("enrichment returned no choices")
		return Result{Summary: "Error generating summary.", Tags: []string{}}
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

// parseResponse pulls the first balanced JSON object out of content.
// The model is instructed to emit strict JSON but is not guaranteed to,
// so anything unparseable becomes a degraded result carrying the raw
// text as the summary.
func parseResponse(content string) Result {
	obj, ok := firstJSONObject(content)
	if ok {
		var r Result
		if err := json.Unmarshal([]byte(obj), &r); err == nil {
			if r.Tags == nil {
				r.Tags = []string{}
			}
			return r
		}
	}
	return Result{Summary: content, Tags: []string{}, Degraded: true, Raw: content}
}

// firstJSONObject scans for the first balanced top-level {...} substring,
// honoring string literals and escapes.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}
	return "", false
}
