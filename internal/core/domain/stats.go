package domain

// RAGStats are corpus-wide counters derived from the index.
type RAGStats struct {
	TotalDocuments     int `json:"total_documents" yaml:"total_documents"`
	CompletedDocuments int `json:"completed_documents" yaml:"completed_documents"`
	// PendingDocuments counts both pending and processing documents.
	PendingDocuments int `json:"pending_documents" yaml:"pending_documents"`
	FailedDocuments  int `json:"failed_documents" yaml:"failed_documents"`
	TotalChunks      int `json:"total_chunks" yaml:"total_chunks"`
	TotalEmbeddings  int `json:"total_embeddings" yaml:"total_embeddings"`
}
