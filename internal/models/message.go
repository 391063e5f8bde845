package models

// ReplyRef is a snapshot of the message being replied to, captured at send
// time. It is not a live link: the referenced message may have been deleted.
type ReplyRef struct {
	MessageID string `json:"message_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
}

// AttachmentRef points at a file already stored in the file catalog.
type AttachmentRef struct {
	FileID       string `json:"file_id"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
}

// Message is a chat entry kept in the room history.
type Message struct {
	ID         string         `json:"id"`
	Author     string         `json:"author"`
	Body       string         `json:"body"`
	CreatedAt  int64          `json:"created_at"`
	ReplyTo    *ReplyRef      `json:"reply_to,omitempty"`
	Attachment *AttachmentRef `json:"attachment,omitempty"`
}
