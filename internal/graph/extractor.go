package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const systemPrompt = `You are an expert entity and relation extractor.
Extract (Subject, Predicate, Object) triples from the user's text.
The predicate must be a single verb in ALL_CAPS.
Output *only* a valid JSON list of lists. Do not add any other text, explanation, or markdown.
If no triples are found, output an empty list [].`

// jsonListPattern scrapes the JSON list out of a completion that wraps it in
// markdown fences or prose. (?s) lets the list span lines.
var jsonListPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ChatClient is the LLM surface the extractor needs.
type ChatClient interface {
	Chat(ctx context.Context, system, prompt string) (string, error)
}

// Extractor asks a local chat model for knowledge-graph triples per chunk.
type Extractor struct {
	llm    ChatClient
	logger *slog.Logger
}

func New(llm ChatClient, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Extract returns the valid triples found in one chunk's text. Malformed
// model output yields zero triples, never an error: a noisy completion
// skips the chunk, not the run.
func (e *Extractor) Extract(ctx context.Context, chunkID, text string) ([]Triple, error) {
	raw, err := e.llm.Chat(ctx, systemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("llm extraction: %w", err)
	}

	triples := ParseTriples(raw)
	e.logger.Info("triples extracted", "chunk_id", chunkID, "triples", len(triples))
	return triples, nil
}

// ParseTriples recovers triples from a raw completion. It scans for the
// outermost JSON list, parses it as a list of 3-element lists, and drops
// anything malformed.
func ParseTriples(raw string) []Triple {
	match := jsonListPattern.FindString(raw)
	if match == "" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return nil
	}

	var triples []Triple
	for _, rawItem := range items {
		var item []any
		if err := json.Unmarshal(rawItem, &item); err != nil || len(item) != 3 {
			continue
		}
		triples = append(triples, Triple{
			Subject:   fmt.Sprint(item[0]),
			Predicate: NormalizePredicate(fmt.Sprint(item[1])),
			Object:    fmt.Sprint(item[2]),
		})
	}
	return triples
}

// NormalizePredicate upper-cases a predicate and collapses spaces and
// hyphens to underscores, e.g. "lives in" -> "LIVES_IN".
func NormalizePredicate(p string) string {
	p = strings.ToUpper(p)
	p = strings.ReplaceAll(p, " ", "_")
	p = strings.ReplaceAll(p, "-", "_")
	return p
}
