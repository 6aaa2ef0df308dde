package speech

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Player 播放一段封装好的 WAV 音频。
type Player interface {
	Play(wav []byte) error
}

// ExecPlayer shells out to a host audio player. Online playback does not
// self-cancel, so overlapping invocations may overlap in output.
type ExecPlayer struct {
	binary string
}

// NewExecPlayer 探测可用的播放器；宿主机没有时返回 nil playback 不可用。
func NewExecPlayer() *ExecPlayer {
	for _, candidate := range []string{"aplay", "paplay", "afplay"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return &ExecPlayer{binary: path}
		}
	}
	return nil
}

// Play 将音频写入临时文件并交给播放器，播完即删。
func (p *ExecPlayer) Play(wav []byte) error {
	tmp, err := os.CreateTemp("", "dost-tts-*.wav")
	if err != nil {
		return fmt.Errorf("stage audio: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(wav); err != nil {
		tmp.Close()
		return fmt.Errorf("stage audio: %w", err)
	}
	tmp.Close()

	cmd := exec.Command(p.binary, path)
	if filepath.Base(p.binary) == "aplay" {
		cmd = exec.Command(p.binary, "-q", path)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("play audio: %w", err)
	}
	return nil
}
