package transcript

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// WhatsApp exports look like "9/2/23, 1:34 PM - Author: Message". Lines
// without the "Author:" segment are service notices; lines without any
// timestamp prefix are wrapped continuations of the previous message.
var (
	userLinePattern   = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}\s[AP]M) - ([^:]+): (.+)`)
	systemLinePattern = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}\s[AP]M) - (.+)`)
)

const (
	timestampLayout      = "1/2/06, 3:04 PM"
	timestampLayoutLong  = "1/2/2006, 3:04 PM"
	encryptionNoticeText = "Messages and calls are end-to-end encrypted"
	fileAttachedSuffix   = "(file attached)"
)

var mediaPlaceholders = map[string]bool{
	"<Media omitted>":   true,
	"<image omitted>":   true,
	"<video omitted>":   true,
	"<audio omitted>":   true,
	"<sticker omitted>": true,
}

type lineKind int

const (
	lineUser lineKind = iota
	lineSystem
	lineContinuation
)

// lineEvent is the classified form of one raw line. Classification is
// ordered: user match first, then system, then continuation as the catch-all.
type lineEvent struct {
	kind      lineKind
	timestamp time.Time
	author    string
	text      string
}

// classifyLine maps one trimmed raw line to a line event. A line whose
// timestamp prefix matches the grammar but parses under neither layout is
// demoted to a continuation rather than promoted to a message.
func classifyLine(line string) lineEvent {
	if m := userLinePattern.FindStringSubmatch(line); m != nil {
		if ts, ok := parseTimestamp(m[1]); ok {
			return lineEvent{kind: lineUser, timestamp: ts, author: m[2], text: m[3]}
		}
		return lineEvent{kind: lineContinuation, text: line}
	}
	if m := systemLinePattern.FindStringSubmatch(line); m != nil {
		if ts, ok := parseTimestamp(m[1]); ok {
			return lineEvent{kind: lineSystem, timestamp: ts, author: SystemAuthor, text: m[2]}
		}
		return lineEvent{kind: lineContinuation, text: line}
	}
	return lineEvent{kind: lineContinuation, text: line}
}

// parseTimestamp attempts the 2-digit-year layout first, then the
// 4-digit-year variant.
func parseTimestamp(raw string) (time.Time, bool) {
	if ts, err := time.Parse(timestampLayout, raw); err == nil {
		return ts, true
	}
	if ts, err := time.Parse(timestampLayoutLong, raw); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

// isFilteredUser reports whether a user message body is a media placeholder
// or a file attachment stub.
func isFilteredUser(text string) bool {
	return mediaPlaceholders[text] || strings.HasSuffix(text, fileAttachedSuffix)
}

// foldEvents folds classified line events into messages. A filtered match
// (media placeholder, attachment stub, encryption notice) emits nothing and
// closes the continuation target, so trailing continuation lines are dropped
// rather than attached to an earlier message.
func foldEvents(events []lineEvent) []Message {
	var msgs []Message
	open := false

	for _, ev := range events {
		switch ev.kind {
		case lineUser:
			if isFilteredUser(ev.text) {
				open = false
				continue
			}
			msgs = append(msgs, Message{Timestamp: ev.timestamp, Author: ev.author, Text: ev.text})
			open = true
		case lineSystem:
			if strings.Contains(ev.text, encryptionNoticeText) {
				open = false
				continue
			}
			msgs = append(msgs, Message{Timestamp: ev.timestamp, Author: SystemAuthor, Text: ev.text})
			open = true
		case lineContinuation:
			if !open || len(msgs) == 0 {
				continue
			}
			msgs[len(msgs)-1].Text += "\n" + ev.text
		}
	}

	return msgs
}

// Parse classifies and folds raw transcript lines into ordered messages.
// Messages come out in file order; timestamps are trusted as given and
// never re-sorted.
func Parse(lines []string) []Message {
	events := make([]lineEvent, 0, len(lines))
	for _, line := range lines {
		events = append(events, classifyLine(strings.TrimSpace(line)))
	}
	return foldEvents(events)
}

// ParseFile reads and parses one exported transcript. A missing or unreadable
// file yields an error and no messages, never a partial sequence.
func ParseFile(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return Parse(lines), nil
}
