package segment

import (
	"fmt"
	"time"
)

// SourceType identifies the transcript grammar all chunks originate from.
const SourceType = "whatsapp"

// Timestamp serializes as canonical RFC 3339 UTC text, independent of any
// encoder default. Downstream consumers parse this format back verbatim.
type Timestamp time.Time

func (t Timestamp) Time() time.Time { return time.Time(t) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Time(t).UTC().Format(time.RFC3339))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp is not a JSON string: %s", data)
	}
	parsed, err := time.Parse(time.RFC3339, string(data[1:len(data)-1]))
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	*t = Timestamp(parsed)
	return nil
}

// Chunk is one contiguous run of messages from a single source file, the
// unit every downstream stage (embedding, graph extraction, retrieval)
// operates on. ChunkID is globally unique because source names are distinct
// file base names and the sequence counter is scoped per source.
type Chunk struct {
	ChunkID        string    `json:"chunk_id"`
	SourceType     string    `json:"source_type"`
	SourceFile     string    `json:"source_file"`
	Participants   []string  `json:"participants"`
	StartTimestamp Timestamp `json:"start_timestamp"`
	EndTimestamp   Timestamp `json:"end_timestamp"`
	RawText        string    `json:"raw_text"`
}
