// Package ai 封装对生成式后端的编排：系统指令、知识上下文与多模态轮次。
package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/hamzasiddiq/dost-ai/backend/internal/config"
	"github.com/hamzasiddiq/dost-ai/backend/internal/knowledge"
	"github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	knowledgemodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/knowledge"
)

// 上下文截断后附加在回答末尾的固定说明。
const truncationNotice = "\n\n*(Note: The provided documents were too long and had to be partially used. The answer is based on the beginning of the content.)*"

// Service runs the conversation chain against the configured chat models.
type Service struct {
	cfg             config.AIConfig
	contextBudget   int
	textChain       compose.Runnable[map[string]any, *schema.Message]
	multimodalChain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles one chain per model variant. When the multimodal
// identifier equals the text identifier the compiled chain is shared, but
// selection stays attachment-conditioned.
func NewService(ctx context.Context, cfg config.AIConfig, contextBudget int) (*Service, error) {
	textChain, err := buildChain(ctx, cfg, cfg.Model)
	if err != nil {
		return nil, err
	}

	multimodalChain := textChain
	if cfg.MultimodalModel != cfg.Model {
		multimodalChain, err = buildChain(ctx, cfg, cfg.MultimodalModel)
		if err != nil {
			return nil, err
		}
	}

	if contextBudget <= 0 {
		contextBudget = knowledge.DefaultContextBudget
	}

	return &Service{
		cfg:             cfg,
		contextBudget:   contextBudget,
		textChain:       textChain,
		multimodalChain: multimodalChain,
	}, nil
}

func buildChain(ctx context.Context, cfg config.AIConfig, modelID string) (compose.Runnable[map[string]any, *schema.Message], error) {
	chatModel, err := cfg.NewChatModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("create chat model %s: %w", modelID, err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.MessagesPlaceholder("incoming", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}
	return runnable, nil
}

// GenerateReply sends the prior log plus the new user turn to the backend and
// returns the assistant text. When grounding documents are supplied the
// system instruction is extended with the assembled context; a truncated
// context appends the fixed disclaimer to the reply.
func (s *Service) GenerateReply(ctx context.Context, history []chat.Message, text string, settings chat.Settings, attachments []chat.Attachment, docs []knowledgemodel.Document) (string, error) {
	system, truncated := s.buildSystemInstruction(settings, docs)

	input := map[string]any{
		"system":   system,
		"history":  buildHistoryMessages(history),
		"incoming": []*schema.Message{buildUserTurn(text, attachments)},
	}

	chain := s.textChain
	if len(attachments) > 0 {
		chain = s.multimodalChain
	}

	response, err := chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("run chat chain: %w", err)
	}

	log.Printf("[ai] generated response, grounded=%t truncated=%t length=%d", len(docs) > 0, truncated, len(response.Content))

	return decorateReply(response.Content, truncated), nil
}

// decorateReply 在上下文被截断时给回答附加固定的说明。
func decorateReply(content string, truncated bool) string {
	if truncated {
		return content + truncationNotice
	}
	return content
}

// buildSystemInstruction 生成系统指令；提供知识文档时附加严格的引用约束。
func (s *Service) buildSystemInstruction(settings chat.Settings, docs []knowledgemodel.Document) (string, bool) {
	system := fmt.Sprintf(
		"You are an AI assistant named %s. Your personality is: %s. You are chatting with a user who might speak English or Urdu. Respond in the language of the user's last message.",
		settings.Name, settings.Personality,
	)

	if len(docs) == 0 {
		return system, false
	}

	contextText, truncated := knowledge.Assemble(docs, s.contextBudget)
	if truncated {
		log.Printf("[ai] knowledge context truncated to %d characters", s.contextBudget)
	}

	system += "\n\nCRITICAL INSTRUCTIONS:\n" +
		"You will answer the user's question based *only* on the provided context from the documents below. " +
		"When you use information from a document, you MUST cite the source document's name (e.g., \"[Source: contract.pdf]\"). " +
		"If the information is not in the documents, you MUST state that you cannot answer from the given context. " +
		"Do not use any external knowledge.\n\n### CONTEXT FROM DOCUMENTS ###\n" + contextText

	return system, truncated
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}
	return history
}

// buildUserTurn 构造新一轮用户消息，附件部分排在文本之前。
func buildUserTurn(text string, attachments []chat.Attachment) *schema.Message {
	if len(attachments) == 0 {
		return schema.UserMessage(text)
	}

	parts := make([]schema.ChatMessagePart, 0, len(attachments)+1)
	for _, att := range attachments {
		parts = append(parts, attachmentPart(att))
	}
	parts = append(parts, schema.ChatMessagePart{
		Type: schema.ChatMessagePartTypeText,
		Text: text,
	})

	return &schema.Message{Role: schema.User, MultiContent: parts}
}
