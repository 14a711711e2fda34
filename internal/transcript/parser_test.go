package transcript

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_UserMessage(t *testing.T) {
	msgs := Parse([]string{"9/2/23, 1:34 PM - Divyanshu: Heyy"})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Author != "Divyanshu" {
		t.Errorf("author = %q, want Divyanshu", msgs[0].Author)
	}
	if msgs[0].Text != "Heyy" {
		t.Errorf("text = %q, want Heyy", msgs[0].Text)
	}
	want := time.Date(2023, 9, 2, 13, 34, 0, 0, time.UTC)
	if !msgs[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", msgs[0].Timestamp, want)
	}
}

func TestParse_FourDigitYear(t *testing.T) {
	msgs := Parse([]string{"10/19/2023, 8:30 PM - Ana: hello"})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	want := time.Date(2023, 10, 19, 20, 30, 0, 0, time.UTC)
	if !msgs[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", msgs[0].Timestamp, want)
	}
}

func TestParse_SystemMessage(t *testing.T) {
	msgs := Parse([]string{"9/2/23, 1:34 PM - Divyanshu is a contact"})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Author != SystemAuthor {
		t.Errorf("author = %q, want %q", msgs[0].Author, SystemAuthor)
	}
	if msgs[0].Text != "Divyanshu is a contact" {
		t.Errorf("text = %q", msgs[0].Text)
	}
}

func TestParse_Continuation(t *testing.T) {
	msgs := Parse([]string{
		"9/2/23, 1:34 PM - A: first line",
		"second line",
		"third line",
	})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != "first line\nsecond line\nthird line" {
		t.Errorf("text = %q", msgs[0].Text)
	}
}

func TestParse_ContinuationWithoutPrior(t *testing.T) {
	msgs := Parse([]string{
		"orphan line with no prefix",
		"9/2/23, 1:34 PM - A: hi",
	})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != "hi" {
		t.Errorf("text = %q, orphan line must be dropped", msgs[0].Text)
	}
}

func TestParse_MediaPlaceholdersDropped(t *testing.T) {
	msgs := Parse([]string{
		"9/2/23, 1:34 PM - A: <Media omitted>",
		"9/2/23, 1:35 PM - A: <image omitted>",
		"9/2/23, 1:36 PM - A: <video omitted>",
		"9/2/23, 1:37 PM - A: <audio omitted>",
		"9/2/23, 1:38 PM - A: <sticker omitted>",
		"9/2/23, 1:39 PM - A: IMG-1234.jpg (file attached)",
		"9/2/23, 1:40 PM - A: a real message",
	})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != "a real message" {
		t.Errorf("text = %q", msgs[0].Text)
	}
}

func TestParse_ContinuationAfterDroppedMedia(t *testing.T) {
	msgs := Parse([]string{
		"9/2/23, 1:34 PM - A: keep me",
		"9/2/23, 1:35 PM - B: <Media omitted>",
		"caption for the dropped media",
	})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	// The caption's target was dropped, so it is discarded — not appended to
	// the message before the media placeholder.
	if msgs[0].Text != "keep me" {
		t.Errorf("text = %q, want 'keep me'", msgs[0].Text)
	}
}

func TestParse_EncryptionNoticeDropped(t *testing.T) {
	msgs := Parse([]string{
		"9/2/23, 1:34 PM - Messages and calls are end-to-end encrypted. No one outside of this chat can read them.",
		"9/2/23, 1:35 PM - A: hi",
	})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Author != "A" {
		t.Errorf("author = %q", msgs[0].Author)
	}
}

func TestParse_InvalidTimestampIsContinuation(t *testing.T) {
	// Well-formed prefix but an impossible date: must not be promoted to a
	// message, folds into the previous one instead.
	msgs := Parse([]string{
		"9/2/23, 1:34 PM - A: real",
		"2/30/23, 1:34 PM - B: bogus date",
	})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != "real\n2/30/23, 1:34 PM - B: bogus date" {
		t.Errorf("text = %q", msgs[0].Text)
	}
}

func TestParse_FileOrderPreserved(t *testing.T) {
	// Clock data is trusted as given; out-of-order timestamps stay in file order.
	msgs := Parse([]string{
		"9/2/23, 2:00 PM - A: later clock",
		"9/2/23, 1:00 PM - B: earlier clock",
	})

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Author != "A" || msgs[1].Author != "B" {
		t.Errorf("order = %q, %q", msgs[0].Author, msgs[1].Author)
	}
}

func TestParse_TrimsSurroundingWhitespace(t *testing.T) {
	msgs := Parse([]string{"  9/2/23, 1:34 PM - A: hello  "})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Text != "hello" {
		t.Errorf("text = %q", msgs[0].Text)
	}
}

func TestParseFile_Basic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.txt")

	content := "9/2/23, 1:34 PM - A: hello\n9/2/23, 1:35 PM - B: hi back\nwrapped line\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	msgs, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[1].Text != "hi back\nwrapped line" {
		t.Errorf("msg[1] text = %q", msgs[1].Text)
	}
}

func TestParseFile_NotFound(t *testing.T) {
	msgs, err := ParseFile("/nonexistent/chat.txt")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
}

func TestParseFile_Empty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	msgs, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected 0 messages, got %d", len(msgs))
	}
}
