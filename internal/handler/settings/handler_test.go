package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	records, err := session.NewRecordStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRecordStore err: %v", err)
	}

	r := chi.NewRouter()
	New(session.NewState(records)).RegisterRoutes(r)
	return r
}

func TestHandleGetReturnsDefaults(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var got chatmodel.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if got != chatmodel.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestHandleReplaceRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	want := chatmodel.DefaultSettings()
	want.Name = "Dost"
	want.Voice = chatmodel.VoiceKore
	want.SpeechRate = chatmodel.RateFast

	body, _ := json.Marshal(want)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("replace failed: %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	var got chatmodel.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if got != want {
		t.Fatalf("settings mismatch: got %+v want %+v", got, want)
	}
}

func TestHandleReplaceRejectsUnknownEnums(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name   string
		mutate func(*chatmodel.Settings)
	}{
		{"voice", func(s *chatmodel.Settings) { s.Voice = "Aria" }},
		{"speechRate", func(s *chatmodel.Settings) { s.SpeechRate = "turbo" }},
		{"voiceSource", func(s *chatmodel.Settings) { s.VoiceSource = "cloud" }},
	}

	for _, tc := range cases {
		payload := chatmodel.DefaultSettings()
		tc.mutate(&payload)

		body, _ := json.Marshal(payload)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("unknown %s must be rejected, got %d", tc.name, rec.Code)
		}
	}
}
