package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/convomap/convomap/internal/store"
)

const entityPrompt = `You are an entity extractor. Extract up to 2 key entities (people, places, topics) from the following query. Format your response as a comma-separated list.

Query: %s
Entities:`

const synthesisSystemPrompt = `You are a helpful assistant. Answer the user's question based *only* on the provided context, which is composed of relevant chat messages.
If the context is empty or does not contain the answer, just say "I'm sorry, I don't have enough information from your chats to answer that."`

const synthesisPrompt = `CONTEXT:
%s

QUERY:
%s

ANSWER:`

const contextDivider = "\n\n---\n\n"

// LLM is the model surface the engine needs: entity extraction and answer
// synthesis via chat, query embedding for semantic search.
type LLM interface {
	Chat(ctx context.Context, system, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever is the store surface the engine needs.
type Retriever interface {
	ChunkIDsForEntity(ctx context.Context, entity string) ([]string, error)
	ChunkIDsBetweenEntities(ctx context.Context, entityA, entityB string) ([]string, error)
	GetChunkTexts(ctx context.Context, chunkIDs []string) ([]string, error)
	SearchChunks(ctx context.Context, queryVec []float32, limit int) ([]store.ScoredChunk, error)
}

// Engine answers questions over the indexed chat history by combining
// graph-linked chunks with semantic neighbours, then synthesizing an answer.
type Engine struct {
	llm    LLM
	store  Retriever
	topK   int
	logger *slog.Logger
}

func NewEngine(llm LLM, st Retriever, topK int, logger *slog.Logger) *Engine {
	if topK <= 0 {
		topK = 3
	}
	return &Engine{llm: llm, store: st, topK: topK, logger: logger}
}

// Answer runs the full hybrid retrieval and synthesis for one question.
func (e *Engine) Answer(ctx context.Context, question string) (string, error) {
	graphCtx := e.graphContext(ctx, question)

	vectorCtx, err := e.vectorContext(ctx, question)
	if err != nil {
		return "", fmt.Errorf("vector retrieval: %w", err)
	}

	combined := fmt.Sprintf("--- GRAPH-BASED CONTEXT ---\n%s\n\n--- SEMANTIC-BASED CONTEXT ---\n%s",
		graphCtx, vectorCtx)

	answer, err := e.llm.Chat(ctx, synthesisSystemPrompt, fmt.Sprintf(synthesisPrompt, combined, question))
	if err != nil {
		return "", fmt.Errorf("synthesis: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// graphContext retrieves chunks linked through the knowledge graph. Any
// failure along the way degrades to an empty context rather than failing
// the query.
func (e *Engine) graphContext(ctx context.Context, question string) string {
	entities, err := e.extractEntities(ctx, question)
	if err != nil {
		e.logger.Warn("entity extraction failed", "error", err)
		return ""
	}
	if len(entities) == 0 {
		e.logger.Info("no key entities found in query")
		return ""
	}
	e.logger.Info("entities extracted", "entities", entities)

	var chunkIDs []string
	if len(entities) == 1 {
		chunkIDs, err = e.store.ChunkIDsForEntity(ctx, entities[0])
	} else {
		chunkIDs, err = e.store.ChunkIDsBetweenEntities(ctx, entities[0], entities[1])
	}
	if err != nil {
		e.logger.Warn("graph lookup failed", "error", err)
		return ""
	}
	if len(chunkIDs) == 0 {
		e.logger.Info("no graph-linked chunks for entities", "entities", entities)
		return ""
	}

	texts, err := e.store.GetChunkTexts(ctx, chunkIDs)
	if err != nil {
		e.logger.Warn("chunk fetch failed", "error", err)
		return ""
	}

	e.logger.Info("graph context assembled", "chunks", len(texts))
	return strings.Join(texts, contextDivider)
}

// vectorContext retrieves the top-k semantic neighbours of the question.
func (e *Engine) vectorContext(ctx context.Context, question string) (string, error) {
	vec, err := e.llm.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	results, err := e.store.SearchChunks(ctx, vec, e.topK)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.RawText
	}
	return strings.Join(texts, contextDivider), nil
}

// extractEntities asks the chat model for up to two key entities and keeps
// comma-separated values longer than two characters.
func (e *Engine) extractEntities(ctx context.Context, question string) ([]string, error) {
	raw, err := e.llm.Chat(ctx, "", fmt.Sprintf(entityPrompt, question))
	if err != nil {
		return nil, err
	}

	var entities []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if len(part) > 2 {
			entities = append(entities, part)
		}
		if len(entities) == 2 {
			break
		}
	}
	return entities, nil
}
