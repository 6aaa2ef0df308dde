package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
	"github.com/hamzasiddiq/dost-ai/backend/pkg/utils"
)

// Handler 设置读写的HTTP处理器
type Handler struct {
	state *session.State
}

// New 创建设置处理器
func New(state *session.State) *Handler {
	return &Handler{state: state}
}

// RegisterRoutes 注册设置相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.handleGet)
	r.Put("/settings", h.handleReplace)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.state.Settings())
}

// handleReplace 整体替换设置
func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	var payload chatmodel.Settings
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Voice != chatmodel.VoiceZephyr && payload.Voice != chatmodel.VoiceKore {
		utils.RespondError(w, http.StatusBadRequest, "voice must be Zephyr or Kore")
		return
	}

	switch payload.SpeechRate {
	case chatmodel.RateSlow, chatmodel.RateMedium, chatmodel.RateFast:
	default:
		utils.RespondError(w, http.StatusBadRequest, "speechRate must be slow, medium or fast")
		return
	}

	switch payload.VoiceSource {
	case chatmodel.VoiceSourceOnline, chatmodel.VoiceSourceOffline:
	default:
		utils.RespondError(w, http.StatusBadRequest, "voiceSource must be online or offline")
		return
	}

	h.state.ReplaceSettings(payload)
	utils.RespondJSON(w, http.StatusOK, payload)
}
