// Package conversation 驱动一次发送的完整流程：落用户消息、请求生成式后端、
// 落助手回复并触发语音播报。后端任何失败都被吸收为固定的致歉回复。
package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	knowledgemodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/knowledge"
	"github.com/hamzasiddiq/dost-ai/backend/internal/service/ai"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
)

// 生成失败时返回给用户的固定致歉语。
const apologyText = "Sorry, I encountered an error while generating a response. Please try again."

// ErrEmptyMessage 表示既无文本也无附件的发送请求。
var ErrEmptyMessage = errors.New("message text or attachments required")

// Generator 是生成式后端的抽象，便于测试替换。
type Generator interface {
	GenerateReply(ctx context.Context, history []chat.Message, text string, settings chat.Settings, attachments []chat.Attachment, docs []knowledgemodel.Document) (string, error)
}

// Speaker 播报一段助手文本，语音失败不得影响会话。
type Speaker interface {
	Speak(ctx context.Context, text string, settings chat.Settings) error
}

// Service orchestrates one send at a time against the session state.
type Service struct {
	state     *session.State
	generator Generator
	speaker   Speaker
}

// NewService 创建会话编排服务；generator 或 speaker 可为 nil（功能降级）。
func NewService(state *session.State, generator Generator, speaker Speaker) *Service {
	return &Service{state: state, generator: generator, speaker: speaker}
}

// Send appends the user turn, obtains the assistant reply and appends it.
// The assistant reply for a send is always appended strictly after that
// send's user message. Backend failures never escape: the apology text is
// appended as a normal assistant message and the conversation stays usable.
func (s *Service) Send(ctx context.Context, text string, attachments []chat.Attachment) (chat.Message, chat.Message, error) {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return chat.Message{}, chat.Message{}, ErrEmptyMessage
	}

	// 历史快照在落新消息之前取得：生成请求包含既往日志加新一轮。
	history := s.state.Messages()
	settings := s.state.Settings()
	docs := s.state.KnowledgeDocuments()

	userMsg := chat.Message{
		ID:        uuid.NewString(),
		Sender:    chat.SenderUser,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Files:     attachmentRefs(attachments),
	}
	s.state.AppendMessage(userMsg)

	reply := apologyText
	if s.generator == nil {
		log.Printf("[conversation] generator unavailable, sending apology")
	} else if generated, err := s.generator.GenerateReply(ctx, history, text, settings, attachments, docs); err != nil {
		// 不重试、不崩溃：吸收后端异常，会话继续可用。
		log.Printf("[conversation] generate reply: %v", err)
	} else {
		reply = generated
	}

	assistantMsg := chat.Message{
		ID:        uuid.NewString(),
		Sender:    chat.SenderAssistant,
		Text:      reply,
		CreatedAt: time.Now().UTC(),
	}
	s.state.AppendMessage(assistantMsg)

	if s.speaker != nil {
		go func() {
			if err := s.speaker.Speak(context.WithoutCancel(ctx), reply, settings); err != nil {
				log.Printf("[conversation] speak reply: %v", err)
			}
		}()
	}

	return userMsg, assistantMsg, nil
}

// History 返回完整会话日志。
func (s *Service) History() []chat.Message {
	return s.state.Messages()
}

// Clear 清空会话日志及其持久化副本。
func (s *Service) Clear() {
	s.state.ClearMessages()
	log.Printf("[conversation] history cleared")
}

// attachmentRefs 保留消息上的附件描述；图片附带可渲染的 data URL。
func attachmentRefs(attachments []chat.Attachment) []chat.AttachmentRef {
	if len(attachments) == 0 {
		return nil
	}

	refs := make([]chat.AttachmentRef, 0, len(attachments))
	for _, att := range attachments {
		ref := chat.AttachmentRef{Name: att.Name, MimeType: att.MimeType}
		if strings.HasPrefix(att.MimeType, "image/") {
			ref.URL = ai.DataURI(att.MimeType, att.Data)
		}
		refs = append(refs, ref)
	}
	return refs
}
