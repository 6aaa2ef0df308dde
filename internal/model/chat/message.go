package chat

import "time"

// 消息来源。
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one immutable turn in the conversation log.
type Message struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
	Files     []AttachmentRef `json:"files,omitempty"`
}

// AttachmentRef describes a file that was sent with a message. URL carries a
// renderable data URL for image attachments so the log can show previews.
type AttachmentRef struct {
	Name     string `json:"name"`
	MimeType string `json:"type"`
	URL      string `json:"url,omitempty"`
}

// Attachment 随单条用户消息一起发送的二进制文件。
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"type"`
	Data     []byte `json:"data"`
}
