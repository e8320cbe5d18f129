package models

// Document is a source text (a statute extract or an example policy page)
// before it is split into corpus chunks.
type Document struct {
	ID       string
	URL      string
	Title    string
	Content  string
	Metadata ChunkMetadata
}

// ProcessedDocument is a Document after cleaning and chunking.
type ProcessedDocument struct {
	Document
	Chunks []string
}

// ToChunks converts the processed chunks into corpus chunks with stable ids.
// Every chunk inherits the document metadata; Source falls back to the URL.
func (d ProcessedDocument) ToChunks() []Chunk {
	meta := d.Metadata
	if meta.Source == "" {
		meta.Source = d.URL
	}

	chunks := make([]Chunk, 0, len(d.Chunks))
	for i, content := range d.Chunks {
		chunks = append(chunks, Chunk{
			ID:       ChunkID(meta.Source, i),
			Content:  content,
			Metadata: meta,
		})
	}
	return chunks
}
