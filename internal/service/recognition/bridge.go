// Package recognition 将流式语音识别桥接为持续更新的草稿转写。
// 状态机：Idle → Listening → Idle。
package recognition

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
)

// Language 识别语言固定为一个地区设置。
const Language = "en-US"

// ErrUnsupportedCapability 表示平台没有可用的识别设施。
var ErrUnsupportedCapability = errors.New("speech recognition is not available on this platform")

// ErrNotListening 表示在 Idle 状态下收到了音频。
var ErrNotListening = errors.New("recognition session is not active")

// Segment 识别结果流中的一段转写。
type Segment struct {
	Text  string
	Final bool
}

// Session 一次进行中的识别会话。Results 在会话结束时关闭。
type Session interface {
	SendAudio(chunk []byte) error
	Results() <-chan Segment
	Stop()
	Err() error
}

// Recognizer 识别后端；Start 仅在后端确认会话建立后返回。
type Recognizer interface {
	Start(ctx context.Context, language string) (Session, error)
}

// Bridge owns one recognition session at a time. Each update replaces the
// draft transcript with the concatenation of every finalized segment observed
// so far in the current session.
type Bridge struct {
	mu         sync.Mutex
	recognizer Recognizer
	session    Session
	listening  bool
	finals     []string
	transcript string
	onUpdate   func(transcript string)
}

// NewBridge 创建语音输入桥；onUpdate 在每次转写变化时被调用。
func NewBridge(recognizer Recognizer, onUpdate func(transcript string)) *Bridge {
	return &Bridge{recognizer: recognizer, onUpdate: onUpdate}
}

// StartListening stops any active session first, then starts a new
// continuous interim-enabled session. Listening is entered only once the
// backend confirms session start; a start failure leaves the bridge Idle.
func (b *Bridge) StartListening(ctx context.Context) error {
	if b.recognizer == nil {
		return ErrUnsupportedCapability
	}

	b.mu.Lock()
	if b.session != nil {
		b.session.Stop()
		b.session = nil
		b.listening = false
	}
	b.mu.Unlock()

	session, err := b.recognizer.Start(ctx, Language)
	if err != nil {
		log.Printf("[recognition] start session: %v", err)
		return err
	}

	b.mu.Lock()
	// 另一次 StartListening 可能在本次后端确认期间装入了新会话；
	// 任何被顶替的会话都必须被关闭，不能悬挂。
	if b.session != nil {
		b.session.Stop()
	}
	b.session = session
	b.listening = true
	b.finals = nil
	b.transcript = ""
	b.mu.Unlock()

	go b.consume(session)
	return nil
}

// StopListening 结束当前会话并回到 Idle；Idle 下为 no-op。
func (b *Bridge) StopListening() {
	b.mu.Lock()
	session := b.session
	b.session = nil
	b.listening = false
	b.mu.Unlock()

	if session != nil {
		session.Stop()
	}
}

// PushAudio 将一段麦克风音频交给当前会话。
func (b *Bridge) PushAudio(chunk []byte) error {
	b.mu.Lock()
	session := b.session
	b.mu.Unlock()

	if session == nil {
		return ErrNotListening
	}
	return session.SendAudio(chunk)
}

// Listening 返回当前是否处于 Listening 状态。
func (b *Bridge) Listening() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listening
}

// Transcript 返回当前草稿转写。
func (b *Bridge) Transcript() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transcript
}

func (b *Bridge) consume(session Session) {
	for segment := range session.Results() {
		if !segment.Final {
			continue
		}

		b.mu.Lock()
		if b.session != session {
			// 会话已被新的 StartListening 取代。
			b.mu.Unlock()
			return
		}
		b.finals = append(b.finals, segment.Text)
		b.transcript = strings.Join(b.finals, "")
		update := b.onUpdate
		transcript := b.transcript
		b.mu.Unlock()

		if update != nil {
			update(transcript)
		}
	}

	// 后端结束或出错都回到 Idle；错误只记录，不向上抛。
	if err := session.Err(); err != nil {
		log.Printf("[recognition] session error: %v", err)
	}

	b.mu.Lock()
	if b.session == session {
		b.session = nil
		b.listening = false
	}
	b.mu.Unlock()
}
