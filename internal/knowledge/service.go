// Package knowledge 管理知识库的并发批量摄取与上下文装配。
package knowledge

import (
	"io"
	"log"
	"sync"

	"github.com/hamzasiddiq/dost-ai/backend/internal/extract"
	knowledgemodel "github.com/hamzasiddiq/dost-ai/backend/internal/model/knowledge"
	"github.com/hamzasiddiq/dost-ai/backend/internal/session"
)

// ExtractFunc 将一个文件解码为纯文本，读取阶段汇报字节进度。
type ExtractFunc func(name string, r io.Reader, size int64, onProgress extract.ProgressFunc) (string, error)

// File 是待摄取的一个上传文件。
type File struct {
	Name   string
	Reader io.Reader
	Size   int64
}

// Failure 记录批次内单个文件的摄取失败。
type Failure struct {
	Name string `json:"name"`
	Err  string `json:"error"`
}

// BatchResult 汇总一次批量摄取的结果。
type BatchResult struct {
	Added    []string  `json:"added"`
	Skipped  []string  `json:"skipped"`
	Failures []Failure `json:"failures"`
}

// Service owns knowledge ingestion against the session state.
type Service struct {
	state   *session.State
	extract ExtractFunc
}

// NewService 创建知识库服务；extractFn 为空时使用默认抽取器。
func NewService(state *session.State, extractFn ExtractFunc) *Service {
	if extractFn == nil {
		extractFn = extract.Extract
	}
	return &Service{state: state, extract: extractFn}
}

// AddBatch extracts every file of a selection concurrently, appends the
// successes to the store in one atomic update and reports failures per file.
// Files whose name is already stored or already mid-extraction are skipped.
// One failing file never blocks its siblings.
func (s *Service) AddBatch(files []File) BatchResult {
	var result BatchResult

	accepted := make([]File, 0, len(files))
	for _, file := range files {
		if s.state.HasDocument(file.Name) || !s.state.BeginParsing(file.Name) {
			result.Skipped = append(result.Skipped, file.Name)
			continue
		}
		accepted = append(accepted, file)
	}

	if len(accepted) == 0 {
		return result
	}

	var (
		mu        sync.Mutex
		succeeded []knowledgemodel.Document
		wg        sync.WaitGroup
	)

	for _, file := range accepted {
		wg.Add(1)
		go func(file File) {
			defer wg.Done()
			defer s.state.EndParsing(file.Name)

			content, err := s.extract(file.Name, file.Reader, file.Size, func(percent int) {
				s.state.SetParsingProgress(file.Name, percent)
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[knowledge] failed to parse %s: %v", file.Name, err)
				result.Failures = append(result.Failures, Failure{Name: file.Name, Err: err.Error()})
				return
			}
			succeeded = append(succeeded, knowledgemodel.Document{Name: file.Name, Content: content})
		}(file)
	}
	wg.Wait()

	if len(succeeded) > 0 {
		s.state.AppendDocuments(succeeded)
		for _, doc := range succeeded {
			result.Added = append(result.Added, doc.Name)
		}
		log.Printf("[knowledge] added %d documents", len(succeeded))
	}

	return result
}

// Remove 按名字删除文档；未知名字为 no-op。
func (s *Service) Remove(name string) bool {
	return s.state.RemoveDocument(name)
}

// List 返回知识库文档。
func (s *Service) List() []knowledgemodel.Document {
	return s.state.KnowledgeDocuments()
}

// Infos 返回省略正文的文档列表视图。
func (s *Service) Infos() []knowledgemodel.DocumentInfo {
	docs := s.state.KnowledgeDocuments()
	infos := make([]knowledgemodel.DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, knowledgemodel.DocumentInfo{Name: doc.Name, Size: len(doc.Content)})
	}
	return infos
}
