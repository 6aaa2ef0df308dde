package recognition

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hamzasiddiq/dost-ai/backend/internal/config"
)

// WSRecognizer 基于 WebSocket 的流式识别后端客户端。
type WSRecognizer struct {
	cfg    config.SpeechConfig
	dialer *websocket.Dialer
}

// NewWSRecognizer 创建识别客户端；未配置识别端点时返回 nil。
func NewWSRecognizer(cfg config.SpeechConfig) *WSRecognizer {
	if cfg.ASREndpoint == "" {
		return nil
	}
	return &WSRecognizer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
	}
}

type asrConfigMessage struct {
	Language       string `json:"language"`
	Continuous     bool   `json:"continuous"`
	InterimResults bool   `json:"interimResults"`
}

type asrServerMessage struct {
	Code    int     `json:"code"`
	Message string  `json:"message"`
	Text    string  `json:"text"`
	IsFinal bool    `json:"isFinal"`
	Score   float64 `json:"confidence"`
}

// Start dials the recognition backend and confirms session start before
// returning. The returned session streams interim and final segments until
// Stop or a backend error.
func (r *WSRecognizer) Start(ctx context.Context, language string) (Session, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+r.cfg.AccessToken)

	conn, resp, err := r.dialer.DialContext(ctx, r.cfg.ASREndpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial asr backend: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial asr backend: %w", err)
	}

	cfg := asrConfigMessage{Language: language, Continuous: true, InterimResults: true}
	if err := conn.WriteJSON(cfg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send asr config: %w", err)
	}

	// 等待后端确认会话建立。
	var ack asrServerMessage
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read asr ack: %w", err)
	}
	if ack.Code != 0 {
		conn.Close()
		return nil, fmt.Errorf("asr backend error %d: %s", ack.Code, ack.Message)
	}

	s := &wsSession{
		conn:    conn,
		results: make(chan Segment, 16),
	}
	go s.readLoop()
	return s, nil
}

type wsSession struct {
	conn    *websocket.Conn
	results chan Segment

	mu      sync.Mutex
	stopped bool
	err     error
}

func (s *wsSession) SendAudio(chunk []byte) error {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return fmt.Errorf("send audio chunk: %w", err)
	}
	return nil
}

func (s *wsSession) Results() <-chan Segment {
	return s.results
}

func (s *wsSession) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.conn.Close()
}

func (s *wsSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *wsSession) readLoop() {
	defer close(s.results)

	for {
		var msg asrServerMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			s.mu.Lock()
			if !s.stopped {
				s.err = err
			}
			s.mu.Unlock()
			return
		}

		if msg.Code != 0 {
			s.mu.Lock()
			s.err = fmt.Errorf("asr backend error %d: %s", msg.Code, msg.Message)
			s.mu.Unlock()
			return
		}

		s.results <- Segment{Text: msg.Text, Final: msg.IsFinal}
	}
}
