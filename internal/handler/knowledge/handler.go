package knowledge

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	knowledgeservice "github.com/hamzasiddiq/dost-ai/backend/internal/knowledge"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
	"github.com/hamzasiddiq/dost-ai/backend/pkg/utils"
)

// 单次上传的内存上限。
const maxUploadBytes = 64 << 20

// Handler 知识库管理的HTTP处理器
type Handler struct {
	knowledgeSvc *knowledgeservice.Service
	state        *session.State
}

// New 创建知识库处理器
func New(knowledgeSvc *knowledgeservice.Service, state *session.State) *Handler {
	return &Handler{knowledgeSvc: knowledgeSvc, state: state}
}

// RegisterRoutes 注册知识库相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/knowledge", h.handleList)
	r.Post("/knowledge", h.handleUpload)
	r.Delete("/knowledge/{name}", h.handleRemove)
	r.Get("/knowledge/progress", h.handleProgress)
}

// handleList 返回知识库文档列表（省略正文）
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.knowledgeSvc.Infos())
}

// handleUpload 接收 multipart 文件批次并同步完成摄取
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var files []knowledgeservice.File
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				log.Printf("[knowledge] open upload %s: %v", header.Filename, err)
				continue
			}
			defer f.Close()
			files = append(files, knowledgeservice.File{
				Name:   header.Filename,
				Reader: f,
				Size:   header.Size,
			})
		}
	}

	if len(files) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	result := h.knowledgeSvc.AddBatch(files)
	utils.RespondJSON(w, http.StatusOK, result)
}

// handleRemove 按名字删除文档
func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.knowledgeSvc.Remove(name)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// handleProgress 以SSE推送解析进度快照，批次全部完成后结束
func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tasks := h.state.ParsingTasks()
			utils.SendSSEChunk(w, flusher, map[string]any{
				"tasks": tasks,
				"busy":  h.state.Busy(),
			})
			if len(tasks) == 0 && !h.state.Busy() {
				utils.SendSSEEvent(w, flusher, "done", map[string]any{})
				return
			}
		}
	}
}
