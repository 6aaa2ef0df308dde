package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	"github.com/hamzasiddiq/dost-ai/backend/internal/service/conversation"
	"github.com/hamzasiddiq/dost-ai/backend/pkg/utils"
)

// Handler 会话相关的HTTP处理器
type Handler struct {
	conversationSvc *conversation.Service
}

// New 创建会话处理器
func New(conversationSvc *conversation.Service) *Handler {
	return &Handler{conversationSvc: conversationSvc}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/messages", h.handleListMessages)
	r.Post("/messages", h.handleSendMessage)
	r.Delete("/messages", h.handleClearMessages)
}

type sendPayload struct {
	Text        string                 `json:"text"`
	Attachments []chatmodel.Attachment `json:"attachments"`
}

type sendResponse struct {
	UserMessage      chatmodel.Message `json:"userMessage"`
	AssistantMessage chatmodel.Message `json:"assistantMessage"`
}

// handleListMessages 返回完整会话日志
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.conversationSvc.History())
}

// handleSendMessage 处理一次发送并返回追加的两条消息
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload sendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userMsg, assistantMsg, err := h.conversationSvc.Send(r.Context(), payload.Text, payload.Attachments)
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, sendResponse{UserMessage: userMsg, AssistantMessage: assistantMsg})
}

// handleClearMessages 清空会话历史
func (h *Handler) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	h.conversationSvc.Clear()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
