package knowledge_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/hamzasiddiq/dost-ai/backend/internal/extract"
	"github.com/hamzasiddiq/dost-ai/backend/internal/knowledge"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
)

func newTestState(t *testing.T) *session.State {
	t.Helper()
	records, err := session.NewRecordStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRecordStore err: %v", err)
	}
	return session.NewState(records)
}

func uppercaseExtract(name string, r io.Reader, size int64, onProgress extract.ProgressFunc) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if onProgress != nil {
		onProgress(100)
	}
	return strings.ToUpper(string(data)), nil
}

func batchFile(name, content string) knowledge.File {
	return knowledge.File{Name: name, Reader: strings.NewReader(content), Size: int64(len(content))}
}

func TestAddBatch(t *testing.T) {
	state := newTestState(t)
	svc := knowledge.NewService(state, uppercaseExtract)

	result := svc.AddBatch([]knowledge.File{
		batchFile("a.txt", "alpha"),
		batchFile("b.txt", "beta"),
	})

	if len(result.Added) != 2 {
		t.Fatalf("expected 2 added, got %+v", result)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}

	docs := svc.List()
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents in store, got %d", len(docs))
	}
	got := map[string]string{}
	for _, doc := range docs {
		got[doc.Name] = doc.Content
	}
	if got["a.txt"] != "ALPHA" || got["b.txt"] != "BETA" {
		t.Fatalf("unexpected store contents: %v", got)
	}

	if state.Busy() {
		t.Fatal("no extraction should be in flight after AddBatch returns")
	}
	if len(state.ParsingTasks()) != 0 {
		t.Fatal("parsing task map must be empty after the batch completes")
	}
}

func TestAddBatchIsolatesFailures(t *testing.T) {
	state := newTestState(t)

	failing := func(name string, r io.Reader, size int64, onProgress extract.ProgressFunc) (string, error) {
		if name == "bad.pdf" {
			return "", &extract.DecodeError{Name: name, Err: errors.New("corrupt")}
		}
		return uppercaseExtract(name, r, size, onProgress)
	}
	svc := knowledge.NewService(state, failing)

	result := svc.AddBatch([]knowledge.File{
		batchFile("a.txt", "alpha"),
		batchFile("bad.pdf", "junk"),
		batchFile("b.txt", "beta"),
	})

	if len(result.Added) != 2 {
		t.Fatalf("expected the 2 healthy files to be added, got %+v", result)
	}
	if len(result.Failures) != 1 || result.Failures[0].Name != "bad.pdf" {
		t.Fatalf("expected exactly one failure for bad.pdf, got %+v", result.Failures)
	}
	if len(svc.List()) != 2 {
		t.Fatalf("store must contain only the successes, got %d", len(svc.List()))
	}
}

func TestAddBatchSkipsDuplicateNames(t *testing.T) {
	state := newTestState(t)
	svc := knowledge.NewService(state, uppercaseExtract)

	svc.AddBatch([]knowledge.File{batchFile("a.txt", "alpha")})
	before := svc.List()

	result := svc.AddBatch([]knowledge.File{batchFile("a.txt", "other content")})
	if len(result.Skipped) != 1 || result.Skipped[0] != "a.txt" {
		t.Fatalf("expected a.txt to be skipped, got %+v", result)
	}

	after := svc.List()
	if len(after) != len(before) || after[0].Content != before[0].Content {
		t.Fatal("re-adding an existing name must be a no-op on the store")
	}
}

func TestRemove(t *testing.T) {
	state := newTestState(t)
	svc := knowledge.NewService(state, uppercaseExtract)

	svc.AddBatch([]knowledge.File{batchFile("a.txt", "alpha")})

	if !svc.Remove("a.txt") {
		t.Fatal("expected removal of existing document")
	}
	if svc.Remove("missing.txt") {
		t.Fatal("removing an unknown name must be a no-op")
	}
	if len(svc.List()) != 0 {
		t.Fatal("store should be empty after removal")
	}
}
