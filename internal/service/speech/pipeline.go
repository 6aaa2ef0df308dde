// Package speech 负责把助手文本转成可听输出：在线合成走后端服务，
// 离线合成走宿主机的本地设施。语音失败不得打断聊天流程。
package speech

import (
	"context"
	"errors"
	"log"

	"github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	speechmodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/speech"
)

// ErrUnsupportedCapability 表示平台不具备所请求的语音能力。
var ErrUnsupportedCapability = errors.New("offline text-to-speech is not available on this platform")

// Synthesizer 在线语音合成后端。
type Synthesizer interface {
	Synthesize(ctx context.Context, req *speechmodel.SynthesisRequest) (*speechmodel.SynthesisResponse, error)
}

// OfflineEngine 本地语音合成设施。
type OfflineEngine interface {
	Speak(text string, rate float32) error
	Cancel()
}

// Pipeline routes assistant text to the configured voice source.
type Pipeline struct {
	synth   Synthesizer
	offline OfflineEngine
	player  Player
}

// NewPipeline 创建语音管线；任一依赖可为 nil 表示该路径不可用。
func NewPipeline(synth Synthesizer, offline OfflineEngine, player Player) *Pipeline {
	return &Pipeline{synth: synth, offline: offline, player: player}
}

// Speak voices the text per the current settings. The only error surfaced to
// the caller is a missing offline capability; online failures are logged and
// dropped; playback simply does not occur.
func (p *Pipeline) Speak(ctx context.Context, text string, settings chat.Settings) error {
	if settings.VoiceSource == chat.VoiceSourceOffline {
		return p.speakOffline(text, settings)
	}

	wav, err := p.SynthesizeWAV(ctx, text, settings)
	if err != nil {
		log.Printf("[tts] online synthesis failed: %v", err)
		return nil
	}

	if p.player == nil {
		log.Printf("[tts] no audio player available, dropping %d bytes", len(wav))
		return nil
	}
	if err := p.player.Play(wav); err != nil {
		log.Printf("[tts] playback failed: %v", err)
	}
	return nil
}

// SynthesizeWAV 调用在线后端并把返回的 PCM 封装为 WAV。
func (p *Pipeline) SynthesizeWAV(ctx context.Context, text string, settings chat.Settings) ([]byte, error) {
	if p.synth == nil {
		return nil, errors.New("online synthesis backend not configured")
	}

	resp, err := p.synth.Synthesize(ctx, &speechmodel.SynthesisRequest{
		Text:  text,
		Voice: settings.Voice,
		Rate:  chat.SpeechRateValue(settings.SpeechRate),
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Audio == "" {
		return nil, errors.New("no audio returned")
	}

	return DecodeAudio(resp.Audio)
}

func (p *Pipeline) speakOffline(text string, settings chat.Settings) error {
	if p.offline == nil {
		return ErrUnsupportedCapability
	}

	// 同一时刻只播一条离线语音。
	p.offline.Cancel()
	if err := p.offline.Speak(text, chat.SpeechRateValue(settings.SpeechRate)); err != nil {
		if errors.Is(err, ErrUnsupportedCapability) {
			return err
		}
		log.Printf("[tts] offline synthesis failed: %v", err)
	}
	return nil
}
