package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/convomap/convomap/internal/events"
	"github.com/convomap/convomap/internal/segment"
	"github.com/convomap/convomap/internal/transcript"
)

const transcriptExt = ".txt"

// Config holds the ingest run configuration.
type Config struct {
	ChatDir    string
	ChunksFile string
}

// FileSummary records per-file ingest results for the final report.
type FileSummary struct {
	Name     string
	Messages int
	Chunks   int
}

// Summary is the result of a full ingest run.
type Summary struct {
	Files  []FileSummary
	Chunks int
}

// Runner scans a directory of exported transcripts, parses and segments each
// file, and persists the accumulated chunk collection as one JSON document.
type Runner struct {
	cfg    Config
	events *events.Client
	logger *slog.Logger
}

// NewRunner creates an ingest runner. The events client is optional; when
// nil, no completion event is published.
func NewRunner(cfg Config, ev *events.Client, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, events: ev, logger: logger}
}

// Run processes every transcript in the chat directory and writes the chunk
// collection. A missing directory ends the run with no output file written;
// per-file failures skip the file and continue.
func (r *Runner) Run() (*Summary, error) {
	entries, err := os.ReadDir(r.cfg.ChatDir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Error("chat directory not found", "dir", r.cfg.ChatDir)
			return &Summary{}, nil
		}
		return nil, fmt.Errorf("read chat dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), transcriptExt) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		r.logger.Warn("no transcript files found", "dir", r.cfg.ChatDir)
		return &Summary{}, nil
	}

	r.logger.Info("transcripts discovered", "dir", r.cfg.ChatDir, "files", len(names))

	summary := &Summary{}
	allChunks := make([]segment.Chunk, 0)

	for _, name := range names {
		path := filepath.Join(r.cfg.ChatDir, name)
		sourceName := strings.TrimSuffix(name, transcriptExt)

		msgs, err := transcript.ParseFile(path)
		if err != nil {
			r.logger.Warn("failed to parse transcript", "path", path, "error", err)
			continue
		}
		if len(msgs) == 0 {
			r.logger.Warn("no usable messages, skipping", "path", path)
			continue
		}

		chunks := segment.Segment(msgs, sourceName)
		allChunks = append(allChunks, chunks...)

		r.logger.Info("transcript processed", "file", name, "messages", len(msgs), "chunks", len(chunks))
		summary.Files = append(summary.Files, FileSummary{Name: name, Messages: len(msgs), Chunks: len(chunks)})
	}

	summary.Chunks = len(allChunks)

	if err := r.writeCollection(allChunks); err != nil {
		return nil, err
	}

	r.logger.Info("ingest complete",
		"files", len(summary.Files),
		"chunks", summary.Chunks,
		"output", r.cfg.ChunksFile,
	)

	r.publishStored(summary)

	return summary, nil
}

// writeCollection serializes the full collection in memory first, so a
// marshalling failure leaves any previous output file untouched.
func (r *Runner) writeCollection(chunks []segment.Chunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	if err := os.WriteFile(r.cfg.ChunksFile, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", r.cfg.ChunksFile, err)
	}
	return nil
}

func (r *Runner) publishStored(summary *Summary) {
	if r.events == nil {
		return
	}
	ev := events.ChunksStored{
		ChunksFile: r.cfg.ChunksFile,
		Files:      len(summary.Files),
		Chunks:     summary.Chunks,
		StoredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.events.PublishChunksStored(ev); err != nil {
		r.logger.Warn("failed to publish chunks.stored event", "error", err)
	}
}

// LoadCollection reads a previously written chunk collection.
func LoadCollection(path string) ([]segment.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var chunks []segment.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return chunks, nil
}
