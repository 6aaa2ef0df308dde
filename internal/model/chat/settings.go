package chat

// 语速档位。
const (
	RateSlow   = "slow"
	RateMedium = "medium"
	RateFast   = "fast"
)

// 语音来源。
const (
	VoiceSourceOnline  = "online"
	VoiceSourceOffline = "offline"
)

// 预置音色，分别为男声与女声。
const (
	VoiceZephyr = "Zephyr"
	VoiceKore   = "Kore"
)

// Settings captures the assistant personalization exposed to the frontend.
// Mutated wholesale by replacement, persisted on every change.
type Settings struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Theme       string `json:"theme"`
	Voice       string `json:"voice"`
	SpeechRate  string `json:"speechRate"`
	VoiceSource string `json:"voiceSource"`
}

// DefaultSettings provides the settings used when no persisted record exists.
func DefaultSettings() Settings {
	return Settings{
		Name:        "Gemini Pro",
		Personality: "A helpful and friendly AI assistant that is an expert in many fields.",
		Theme:       "dark",
		Voice:       VoiceZephyr,
		SpeechRate:  RateMedium,
		VoiceSource: VoiceSourceOnline,
	}
}

// SpeechRateValue maps the three-point rate setting onto the synthesis
// rate multiplier. Unknown values fall back to medium.
func SpeechRateValue(rate string) float32 {
	switch rate {
	case RateSlow:
		return 0.8
	case RateFast:
		return 1.2
	default:
		return 1.0
	}
}
