package speech

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// 在线后端返回的原始音频参数。
const (
	pcmSampleRate = 24000
	pcmChannels   = 1
	pcmBitDepth   = 16
)

// DecodeAudio 将 base64 PCM 负载封装为可直接播放的 WAV。
func DecodeAudio(payload string) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode audio payload: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}
	return wrapWAV(pcm, pcmSampleRate, pcmChannels), nil
}

// wrapWAV 给裸 PCM 加上 RIFF 头。
func wrapWAV(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * pcmBitDepth / 8
	blockAlign := channels * pcmBitDepth / 8

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmBitDepth))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
