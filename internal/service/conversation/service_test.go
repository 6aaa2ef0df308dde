package conversation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	knowledgemodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/knowledge"
	"github.com/hamzasiddiq/dost-ai/backend/internal/service/conversation"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
)

const apologyText = "Sorry, I encountered an error while generating a response. Please try again."

type fakeGenerator struct {
	reply       string
	err         error
	calls       int
	lastHistory []chat.Message
	lastText    string
	lastDocs    []knowledgemodel.Document
}

func (f *fakeGenerator) GenerateReply(ctx context.Context, history []chat.Message, text string, settings chat.Settings, attachments []chat.Attachment, docs []knowledgemodel.Document) (string, error) {
	f.calls++
	f.lastHistory = history
	f.lastText = text
	f.lastDocs = docs
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSpeaker struct {
	spoken chan string
}

func (f *fakeSpeaker) Speak(ctx context.Context, text string, settings chat.Settings) error {
	if f.spoken != nil {
		f.spoken <- text
	}
	return nil
}

func newTestState(t *testing.T) *session.State {
	t.Helper()
	records, err := session.NewRecordStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRecordStore err: %v", err)
	}
	return session.NewState(records)
}

func TestSendAppendsPair(t *testing.T) {
	state := newTestState(t)
	gen := &fakeGenerator{reply: "Hi there!"}
	svc := conversation.NewService(state, gen, nil)

	userMsg, assistantMsg, err := svc.Send(context.Background(), "Hello", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}

	if userMsg.Sender != chat.SenderUser || userMsg.Text != "Hello" {
		t.Fatalf("unexpected user message: %+v", userMsg)
	}
	if assistantMsg.Sender != chat.SenderAssistant || assistantMsg.Text != "Hi there!" {
		t.Fatalf("unexpected assistant message: %+v", assistantMsg)
	}
	if len(gen.lastHistory) != 0 {
		t.Fatalf("first send must carry empty history, got %d entries", len(gen.lastHistory))
	}
	if gen.lastText != "Hello" {
		t.Fatalf("generator must receive the new text, got %q", gen.lastText)
	}
}

func TestSendInterleavesPairsInCallOrder(t *testing.T) {
	state := newTestState(t)
	gen := &fakeGenerator{reply: "ok"}
	svc := conversation.NewService(state, gen, nil)

	const sends = 4
	for i := 0; i < sends; i++ {
		if _, _, err := svc.Send(context.Background(), fmt.Sprintf("msg-%d", i), nil); err != nil {
			t.Fatalf("Send %d err: %v", i, err)
		}
	}

	log := svc.History()
	if len(log) != 2*sends {
		t.Fatalf("expected %d messages, got %d", 2*sends, len(log))
	}
	for i := 0; i < sends; i++ {
		user, assistant := log[2*i], log[2*i+1]
		if user.Sender != chat.SenderUser || user.Text != fmt.Sprintf("msg-%d", i) {
			t.Fatalf("slot %d: expected user msg-%d, got %+v", 2*i, i, user)
		}
		if assistant.Sender != chat.SenderAssistant {
			t.Fatalf("slot %d: expected assistant message, got %+v", 2*i+1, assistant)
		}
	}
}

func TestSendBackendOutageYieldsApology(t *testing.T) {
	state := newTestState(t)
	gen := &fakeGenerator{err: errors.New("backend down")}
	svc := conversation.NewService(state, gen, nil)

	_, assistantMsg, err := svc.Send(context.Background(), "Hello", nil)
	if err != nil {
		t.Fatalf("backend failures must not escape Send, got %v", err)
	}
	if assistantMsg.Text != apologyText {
		t.Fatalf("expected the fixed apology, got %q", assistantMsg.Text)
	}

	// 会话在故障后仍然可用。
	gen.err = nil
	gen.reply = "recovered"
	_, next, err := svc.Send(context.Background(), "Again", nil)
	if err != nil || next.Text != "recovered" {
		t.Fatalf("conversation must stay usable after an outage: %v %+v", err, next)
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	state := newTestState(t)
	svc := conversation.NewService(state, &fakeGenerator{reply: "x"}, nil)

	if _, _, err := svc.Send(context.Background(), "   ", nil); !errors.Is(err, conversation.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if len(svc.History()) != 0 {
		t.Fatal("rejected sends must not touch the log")
	}

	// 仅附件、无文本是合法发送。
	att := []chat.Attachment{{Name: "pic.png", MimeType: "image/png", Data: []byte{1}}}
	if _, _, err := svc.Send(context.Background(), "", att); err != nil {
		t.Fatalf("attachment-only send must be accepted: %v", err)
	}
}

func TestSendSpeaksReply(t *testing.T) {
	state := newTestState(t)
	speaker := &fakeSpeaker{spoken: make(chan string, 1)}
	svc := conversation.NewService(state, &fakeGenerator{reply: "Hi!"}, speaker)

	if _, _, err := svc.Send(context.Background(), "Hello", nil); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	if spoken := <-speaker.spoken; spoken != "Hi!" {
		t.Fatalf("speaker must receive the reply, got %q", spoken)
	}
}

func TestSendWithoutGeneratorYieldsApology(t *testing.T) {
	state := newTestState(t)
	svc := conversation.NewService(state, nil, nil)

	_, assistantMsg, err := svc.Send(context.Background(), "Hello", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if assistantMsg.Text != apologyText {
		t.Fatalf("expected the fixed apology, got %q", assistantMsg.Text)
	}
}

func TestSendKeepsAttachmentRefs(t *testing.T) {
	state := newTestState(t)
	gen := &fakeGenerator{reply: "seen"}
	svc := conversation.NewService(state, gen, nil)

	att := []chat.Attachment{
		{Name: "pic.png", MimeType: "image/png", Data: []byte{1, 2}},
		{Name: "doc.pdf", MimeType: "application/pdf", Data: []byte{3}},
	}
	userMsg, _, err := svc.Send(context.Background(), "look", att)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}

	if len(userMsg.Files) != 2 {
		t.Fatalf("expected 2 attachment refs, got %+v", userMsg.Files)
	}
	if userMsg.Files[0].URL == "" {
		t.Fatal("image attachments must carry a renderable data URL")
	}
	if userMsg.Files[1].URL != "" {
		t.Fatal("non-image attachments must not carry a data URL")
	}
}
