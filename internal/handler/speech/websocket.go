package speech

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hamzasiddiq/dost-ai/backend/internal/service/recognition"
)

// WebSocketHandler 浏览器语音输入的WebSocket处理器：音频上行，转写下行。
type WebSocketHandler struct {
	recognizer recognition.Recognizer
	upgrader   websocket.Upgrader
}

// NewWebSocketHandler 创建识别WebSocket处理器；recognizer 可为 nil 表示能力缺失。
func NewWebSocketHandler(recognizer recognition.Recognizer) *WebSocketHandler {
	return &WebSocketHandler{
		recognizer: recognizer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes 注册识别路由
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/speech/recognize", h.handleRecognize)
}

type controlMessage struct {
	Type string `json:"type"` // start | stop
}

type transcriptMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// handleRecognize 为每个连接维护一个语音输入桥。
func (h *WebSocketHandler) handleRecognize(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[recognition] upgrade: %v", err)
		return
	}
	defer conn.Close()

	// 转写更新通过同一连接推回浏览器；写操作串行化。
	var writeMu sync.Mutex
	send := func(msg transcriptMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("[recognition] write transcript: %v", err)
		}
	}

	bridge := recognition.NewBridge(h.recognizer, func(transcript string) {
		send(transcriptMessage{Type: "transcript", Text: transcript})
	})
	defer bridge.StopListening()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[recognition] read: %v", err)
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if err := bridge.PushAudio(data); err != nil {
				log.Printf("[recognition] push audio: %v", err)
			}
		case websocket.TextMessage:
			var ctrl controlMessage
			if err := json.Unmarshal(data, &ctrl); err != nil {
				send(transcriptMessage{Type: "error", Text: "invalid control message"})
				continue
			}
			h.handleControl(r, bridge, ctrl, send)
		}
	}
}

func (h *WebSocketHandler) handleControl(r *http.Request, bridge *recognition.Bridge, ctrl controlMessage, send func(transcriptMessage)) {
	switch ctrl.Type {
	case "start":
		if err := bridge.StartListening(r.Context()); err != nil {
			if errors.Is(err, recognition.ErrUnsupportedCapability) {
				// 阻断性提示：平台不支持语音识别。
				send(transcriptMessage{Type: "unsupported", Text: err.Error()})
				return
			}
			send(transcriptMessage{Type: "error", Text: err.Error()})
			return
		}
		send(transcriptMessage{Type: "listening"})
	case "stop":
		bridge.StopListening()
		send(transcriptMessage{Type: "stopped", Text: bridge.Transcript()})
	default:
		send(transcriptMessage{Type: "error", Text: "unknown control type"})
	}
}
