package speech

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hamzasiddiq/dost-ai/backend/internal/config"
	speechmodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/speech"
)

// TTSClient 基于 WebSocket 的在线语音合成客户端。
type TTSClient struct {
	cfg    config.SpeechConfig
	dialer *websocket.Dialer
}

// NewTTSClient 创建在线合成客户端。
func NewTTSClient(cfg config.SpeechConfig) *TTSClient {
	return &TTSClient{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
	}
}

type ttsServerMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
	Final   bool   `json:"final"`
}

// Synthesize 发送合成请求并聚合服务端返回的音频分片。
// 返回的负载为 base64 编码的单声道 24kHz 原始 PCM。
func (c *TTSClient) Synthesize(ctx context.Context, req *speechmodel.SynthesisRequest) (*speechmodel.SynthesisResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("tts text is empty")
	}

	timeout := time.Duration(c.cfg.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.Endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial tts backend: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial tts backend: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("send tts request: %w", err)
	}

	var audio strings.Builder
	for {
		var msg ttsServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf("read tts response: %w", err)
		}

		if msg.Code != 0 {
			return nil, fmt.Errorf("tts backend error %d: %s", msg.Code, msg.Message)
		}

		audio.WriteString(msg.Data)
		if msg.Final {
			break
		}
	}

	return &speechmodel.SynthesisResponse{
		Audio:      audio.String(),
		SampleRate: pcmSampleRate,
		Channels:   pcmChannels,
	}, nil
}
