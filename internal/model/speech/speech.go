package speech

// SynthesisRequest 语音合成请求。
type SynthesisRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice"` // Zephyr 或 Kore
	Rate  float32 `json:"rate"`  // 语速倍率
}

// SynthesisResponse carries the backend's audio payload: base64-encoded raw
// PCM, single channel, 24 kHz. Audio may be empty when synthesis produced
// nothing.
type SynthesisResponse struct {
	Audio      string `json:"audio"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
	RequestID  string `json:"requestId,omitempty"`
}
