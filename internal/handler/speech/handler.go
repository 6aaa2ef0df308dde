package speech

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	"github.com/hamzasiddiq/dost-ai/backend/internal/service/speech"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
	"github.com/hamzasiddiq/dost-ai/backend/pkg/utils"
)

// Handler 语音播报的HTTP处理器
type Handler struct {
	pipeline *speech.Pipeline
	state    *session.State
}

// New 创建语音处理器
func New(pipeline *speech.Pipeline, state *session.State) *Handler {
	return &Handler{pipeline: pipeline, state: state}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/speech/speak", h.handleSpeak)
}

type speakPayload struct {
	Text string `json:"text"`
}

// handleSpeak voices a text with the current settings. The online path also
// returns the WAV payload so the browser can play it; online failures drop
// silently with no audio body.
func (h *Handler) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var payload speakPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	settings := h.state.Settings()

	if settings.VoiceSource == chatmodel.VoiceSourceOffline {
		if err := h.pipeline.Speak(r.Context(), payload.Text, settings); err != nil {
			if errors.Is(err, speech.ErrUnsupportedCapability) {
				// 阻断性提示：平台不支持离线合成。
				utils.RespondError(w, http.StatusNotImplemented, err.Error())
				return
			}
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "speaking"})
		return
	}

	wav, err := h.pipeline.SynthesizeWAV(r.Context(), payload.Text, settings)
	if err != nil {
		// 语音失败不打断聊天流程，只是没有音频。
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	w.Write(wav)
}
