package knowledge

// Document 知识库中一篇已完成抽取的文档。Name 在库内唯一。
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// DocumentInfo is the listing view of a stored document; content is omitted
// because extracted text can run to hundreds of kilobytes.
type DocumentInfo struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// ParsingTask reports extraction progress for one in-flight file,
// percentage 0-100. Entries exist only while the file is being extracted.
type ParsingTask struct {
	Name     string `json:"name"`
	Progress int    `json:"progress"`
}
