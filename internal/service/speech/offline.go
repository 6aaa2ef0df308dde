package speech

import (
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
)

// espeak 在 1.0 倍速下的基准语速（每分钟词数）。
const espeakBaseWPM = 175

// LocalEngine speaks through a synthesizer binary found on the host,
// mirroring the platform speech-synthesis facility. Only one utterance plays
// at a time: starting a new one cancels the prior.
type LocalEngine struct {
	mu     sync.Mutex
	binary string
	cmd    *exec.Cmd
}

// NewLocalEngine probes for a local synthesizer. Returns
// ErrUnsupportedCapability when the host offers none.
func NewLocalEngine() (*LocalEngine, error) {
	for _, candidate := range []string{"espeak-ng", "espeak", "say"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return &LocalEngine{binary: path}, nil
		}
	}
	return nil, ErrUnsupportedCapability
}

// Speak 取消当前播报并启动新的本地合成，不等待播放完成。
func (e *LocalEngine) Speak(text string, rate float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()

	cmd := exec.Command(e.binary, e.rateArgs(rate)...)
	cmd.Args = append(cmd.Args, text)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start local synthesizer: %w", err)
	}
	e.cmd = cmd

	go func() {
		if err := cmd.Wait(); err != nil {
			// 被 Cancel 杀掉的进程也会走到这里，只记录即可。
			log.Printf("[tts] local synthesizer exited: %v", err)
		}
		e.mu.Lock()
		if e.cmd == cmd {
			e.cmd = nil
		}
		e.mu.Unlock()
	}()

	return nil
}

// Cancel 终止当前播报；空闲时为 no-op。
func (e *LocalEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

func (e *LocalEngine) cancelLocked() {
	if e.cmd != nil && e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
	e.cmd = nil
}

func (e *LocalEngine) rateArgs(rate float32) []string {
	wpm := strconv.Itoa(int(float32(espeakBaseWPM) * rate))
	switch filepath.Base(e.binary) {
	case "say":
		return []string{"-r", wpm}
	default:
		return []string{"-s", wpm}
	}
}
