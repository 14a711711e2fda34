package transcript

import "time"

// SystemAuthor is the synthesized author for lines carrying no "Author:" segment.
const SystemAuthor = "System"

// Message is a single parsed transcript message. Text may span several raw
// lines when the export wrapped a long message.
type Message struct {
	Timestamp time.Time
	Author    string
	Text      string
}
