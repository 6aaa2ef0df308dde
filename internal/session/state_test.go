package session_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	"github.com/hamzasiddiq/dost-ai/backend/internal/model/knowledge"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
)

func newState(t *testing.T, dir string) *session.State {
	t.Helper()
	records, err := session.NewRecordStore(dir)
	if err != nil {
		t.Fatalf("NewRecordStore err: %v", err)
	}
	return session.NewState(records)
}

func TestStateDefaults(t *testing.T) {
	state := newState(t, t.TempDir())

	if got := state.Settings(); got != chat.DefaultSettings() {
		t.Fatalf("fresh state must use default settings, got %+v", got)
	}
	if len(state.Messages()) != 0 {
		t.Fatal("fresh state must have no messages")
	}
	if len(state.KnowledgeDocuments()) != 0 {
		t.Fatal("fresh state must have no knowledge documents")
	}
}

func TestStatePersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()

	state := newState(t, dir)
	settings := chat.DefaultSettings()
	settings.Name = "Dost"
	settings.SpeechRate = chat.RateFast
	state.ReplaceSettings(settings)
	state.AppendMessage(chat.Message{ID: "1", Sender: chat.SenderUser, Text: "Hello", CreatedAt: time.Now().UTC()})
	state.AppendDocuments([]knowledge.Document{{Name: "a.txt", Content: "alpha"}})

	reloaded := newState(t, dir)
	if got := reloaded.Settings(); got.Name != "Dost" || got.SpeechRate != chat.RateFast {
		t.Fatalf("settings not persisted: %+v", got)
	}
	if msgs := reloaded.Messages(); len(msgs) != 1 || msgs[0].Text != "Hello" {
		t.Fatalf("messages not persisted: %+v", msgs)
	}
	if docs := reloaded.KnowledgeDocuments(); len(docs) != 1 || docs[0].Name != "a.txt" {
		t.Fatalf("knowledge not persisted: %+v", docs)
	}
}

func TestStateMalformedRecordFallsBackPerRecord(t *testing.T) {
	dir := t.TempDir()

	state := newState(t, dir)
	state.AppendMessage(chat.Message{ID: "1", Sender: chat.SenderUser, Text: "Hello"})

	// 只破坏 settings 记录，history 应当完好。
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt settings record: %v", err)
	}

	reloaded := newState(t, dir)
	if got := reloaded.Settings(); got != chat.DefaultSettings() {
		t.Fatalf("malformed settings must fall back to defaults, got %+v", got)
	}
	if len(reloaded.Messages()) != 1 {
		t.Fatal("a malformed settings record must not affect the history record")
	}
}

func TestClearMessagesLeavesOtherRecords(t *testing.T) {
	dir := t.TempDir()

	state := newState(t, dir)
	state.AppendMessage(chat.Message{ID: "1", Sender: chat.SenderUser, Text: "Hello"})
	state.AppendDocuments([]knowledge.Document{{Name: "a.txt", Content: "alpha"}})
	state.ClearMessages()

	if len(state.Messages()) != 0 {
		t.Fatal("clear must remove all messages")
	}
	if _, err := os.Stat(filepath.Join(dir, "history.json")); !os.IsNotExist(err) {
		t.Fatal("clear must delete the persisted history record")
	}

	reloaded := newState(t, dir)
	if len(reloaded.KnowledgeDocuments()) != 1 {
		t.Fatal("clear must not affect knowledge documents")
	}
}

func TestAppendDocumentsKeepsNamesUnique(t *testing.T) {
	state := newState(t, t.TempDir())

	state.AppendDocuments([]knowledge.Document{{Name: "a.txt", Content: "first"}})
	added := state.AppendDocuments([]knowledge.Document{
		{Name: "a.txt", Content: "second"},
		{Name: "b.txt", Content: "beta"},
	})

	if added != 1 {
		t.Fatalf("expected 1 new document, got %d", added)
	}
	docs := state.KnowledgeDocuments()
	if len(docs) != 2 || docs[0].Content != "first" {
		t.Fatalf("duplicate name must be a no-op, got %+v", docs)
	}
}

func TestParsingReferenceCount(t *testing.T) {
	state := newState(t, t.TempDir())

	if !state.BeginParsing("a.txt") {
		t.Fatal("first BeginParsing must succeed")
	}
	if state.BeginParsing("a.txt") {
		t.Fatal("a file already mid-extraction must be rejected")
	}
	if !state.BeginParsing("b.txt") {
		t.Fatal("an unrelated file must be accepted")
	}

	state.SetParsingProgress("a.txt", 40)
	tasks := state.ParsingTasks()
	if len(tasks) != 2 || tasks[0].Name != "a.txt" || tasks[0].Progress != 40 {
		t.Fatalf("unexpected task snapshot: %+v", tasks)
	}

	state.EndParsing("a.txt")
	if !state.Busy() {
		t.Fatal("one extraction still in flight, Busy must hold")
	}
	state.EndParsing("b.txt")
	if state.Busy() {
		t.Fatal("all extractions done, Busy must clear")
	}
	if len(state.ParsingTasks()) != 0 {
		t.Fatal("task map must be empty when nothing is in flight")
	}
}
