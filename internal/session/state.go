// Package session 持有会话级可变状态：消息、设置、知识库与解析进度。
// 所有变更在同一把锁下以读-改-写方式应用，提交后立即持久化。
package session

import (
	"log"
	"sort"
	"sync"

	"github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
	"github.com/hamzasiddiq/dost-ai/backend/internal/model/knowledge"
)

// State is the owned container for all mutable session aggregates. It is
// injected into services rather than accessed ambiently.
type State struct {
	mu       sync.RWMutex
	records  *RecordStore
	messages []chat.Message
	settings chat.Settings
	docs     []knowledge.Document

	// 解析任务表与在途计数；两者在同一锁下变更，保证 Busy 精确。
	parsing  map[string]int
	inFlight int
}

// NewState loads each aggregate once from the record store, falling back to
// defaults for any record that is absent or unparsable.
func NewState(records *RecordStore) *State {
	s := &State{
		records:  records,
		settings: chat.DefaultSettings(),
		parsing:  make(map[string]int),
	}

	var settings chat.Settings
	if records.Load(RecordSettings, &settings) {
		s.settings = settings
	}
	records.Load(RecordHistory, &s.messages)
	records.Load(RecordKnowledge, &s.docs)

	log.Printf("[session] loaded %d messages, %d knowledge documents", len(s.messages), len(s.docs))
	return s
}

// Messages 返回会话日志的副本，保持插入顺序。
func (s *State) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// AppendMessage 追加一条消息并持久化全量日志。
func (s *State) AppendMessage(msg chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.saveHistoryLocked()
}

// ClearMessages removes every message and its persisted copy. Settings and
// knowledge documents are untouched.
func (s *State) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	if err := s.records.Delete(RecordHistory); err != nil {
		log.Printf("[session] clear history: %v", err)
	}
}

// Settings 返回当前设置。
func (s *State) Settings() chat.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// ReplaceSettings 整体替换设置并持久化。
func (s *State) ReplaceSettings(settings chat.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	if err := s.records.Save(RecordSettings, s.settings); err != nil {
		log.Printf("[session] persist settings: %v", err)
	}
}

// KnowledgeDocuments 返回知识库文档的副本，保持库内顺序。
func (s *State) KnowledgeDocuments() []knowledge.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]knowledge.Document, len(s.docs))
	copy(copied, s.docs)
	return copied
}

// HasDocument 判断指定名字的文档是否已入库。
func (s *State) HasDocument(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.Name == name {
			return true
		}
	}
	return false
}

// AppendDocuments appends a batch of documents in one atomic update.
// Names already present are skipped, keeping store names unique.
func (s *State) AppendDocuments(docs []knowledge.Document) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.docs))
	for _, doc := range s.docs {
		existing[doc.Name] = struct{}{}
	}

	added := 0
	for _, doc := range docs {
		if _, ok := existing[doc.Name]; ok {
			continue
		}
		existing[doc.Name] = struct{}{}
		s.docs = append(s.docs, doc)
		added++
	}

	if added > 0 {
		if err := s.records.Save(RecordKnowledge, s.docs); err != nil {
			log.Printf("[session] persist knowledge: %v", err)
		}
	}
	return added
}

// RemoveDocument 按名字精确删除；不存在时为 no-op。
func (s *State) RemoveDocument(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range s.docs {
		if doc.Name == name {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			if err := s.records.Save(RecordKnowledge, s.docs); err != nil {
				log.Printf("[session] persist knowledge: %v", err)
			}
			return true
		}
	}
	return false
}

// BeginParsing registers an in-flight extraction at 0% and bumps the
// reference count. Returns false when the file is already mid-extraction.
func (s *State) BeginParsing(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parsing[name]; ok {
		return false
	}
	s.parsing[name] = 0
	s.inFlight++
	return true
}

// SetParsingProgress 更新单个在途文件的进度。
func (s *State) SetParsingProgress(name string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parsing[name]; ok {
		s.parsing[name] = percent
	}
}

// EndParsing 在抽取完成或失败时移除任务并回收计数。
func (s *State) EndParsing(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parsing[name]; ok {
		delete(s.parsing, name)
		s.inFlight--
	}
}

// ParsingTasks 返回当前在途任务的稳定有序快照。
func (s *State) ParsingTasks() []knowledge.ParsingTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]knowledge.ParsingTask, 0, len(s.parsing))
	for name, pct := range s.parsing {
		tasks = append(tasks, knowledge.ParsingTask{Name: name, Progress: pct})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return tasks
}

// Busy reports whether any extraction is in flight. Computed from the
// reference count under the same lock that mutates the task map, so
// overlapping batches cannot misreport it.
func (s *State) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

func (s *State) saveHistoryLocked() {
	if err := s.records.Save(RecordHistory, s.messages); err != nil {
		log.Printf("[session] persist history: %v", err)
	}
}
