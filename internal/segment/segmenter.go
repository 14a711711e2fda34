package segment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/convomap/convomap/internal/transcript"
)

// TimeGap is the fixed threshold separating conversations: a gap strictly
// greater than this closes the open chunk.
const TimeGap = 60 * time.Minute

// accumulator carries the open chunk while folding messages. It is a plain
// value threaded through the loop, never shared.
type accumulator struct {
	msgs    []transcript.Message
	authors map[string]struct{}
	start   time.Time
	last    time.Time
}

func newAccumulator(msg transcript.Message) accumulator {
	return accumulator{
		msgs:    []transcript.Message{msg},
		authors: map[string]struct{}{msg.Author: {}},
		start:   msg.Timestamp,
		last:    msg.Timestamp,
	}
}

func (a *accumulator) fold(msg transcript.Message) {
	a.msgs = append(a.msgs, msg)
	a.authors[msg.Author] = struct{}{}
	a.last = msg.Timestamp
}

// Segment groups one file's ordered messages into conversation chunks.
// Chunk ids are a pure function of sourceName and arrival order, so re-runs
// over unchanged input reproduce them exactly.
func Segment(msgs []transcript.Message, sourceName string) []Chunk {
	if len(msgs) == 0 {
		return nil
	}

	var chunks []Chunk
	acc := newAccumulator(msgs[0])

	for _, msg := range msgs[1:] {
		if msg.Timestamp.Sub(acc.last) > TimeGap {
			chunks = append(chunks, buildChunk(acc, sourceName, len(chunks)))
			acc = newAccumulator(msg)
			continue
		}
		acc.fold(msg)
	}

	return append(chunks, buildChunk(acc, sourceName, len(chunks)))
}

func buildChunk(acc accumulator, sourceName string, seq int) Chunk {
	participants := make([]string, 0, len(acc.authors))
	for author := range acc.authors {
		participants = append(participants, author)
	}
	sort.Strings(participants)

	lines := make([]string, len(acc.msgs))
	for i, msg := range acc.msgs {
		lines[i] = fmt.Sprintf("[%s]: %s", msg.Author, msg.Text)
	}

	return Chunk{
		ChunkID:        fmt.Sprintf("%s_chunk_%d", sourceName, seq),
		SourceType:     SourceType,
		SourceFile:     sourceName + ".txt",
		Participants:   participants,
		StartTimestamp: Timestamp(acc.start),
		EndTimestamp:   Timestamp(acc.last),
		RawText:        strings.Join(lines, "\n"),
	}
}
