package processor

import (
	"strings"
	"unicode/utf8"

	"github.com/xhad/compligen/internal/models"
)

type ProcessorConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	MinChunkLength int
	// Boilerplate lists phrases whose sentences are dropped before chunking,
	// such as licence footers on statute pages.
	Boilerplate        []string
	PreserveLineBreaks bool
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}
	if config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = config.ChunkSize / 5
	}
	if config.MinChunkLength == 0 {
		config.MinChunkLength = 50
	}

	return Processor{
		config: config,
	}
}

// Process cleans and chunks every document. Documents that yield no chunk
// long enough are kept with an empty chunk list.
func (p *Processor) Process(docs []models.Document) ([]models.ProcessedDocument, error) {
	processed := make([]models.ProcessedDocument, 0, len(docs))

	for _, doc := range docs {
		clean := p.cleanText(doc.Content)
		processed = append(processed, models.ProcessedDocument{
			Document: doc,
			Chunks:   p.splitIntoChunks(clean),
		})
	}

	return processed, nil
}

// cleanText keeps case, since section titles and Act names are matched
// verbatim downstream.
func (p *Processor) cleanText(text string) string {
	if p.config.PreserveLineBreaks {
		lines := strings.Split(text, "\n")
		kept := lines[:0]
		for _, line := range lines {
			line = strings.Join(strings.Fields(line), " ")
			if line != "" {
				kept = append(kept, line)
			}
		}
		text = strings.Join(kept, "\n")
	} else {
		text = strings.Join(strings.Fields(text), " ")
	}

	if len(p.config.Boilerplate) > 0 {
		text = p.dropBoilerplate(text)
	}

	return strings.TrimSpace(text)
}

func (p *Processor) dropBoilerplate(text string) string {
	sentences := splitIntoSentences(text)
	kept := sentences[:0]
	for _, s := range sentences {
		if !p.isBoilerplate(s) {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, " ")
}

func (p *Processor) isBoilerplate(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, phrase := range p.config.Boilerplate {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// splitIntoChunks packs whole sentences into chunks of at most ChunkSize
// characters. Each new chunk starts with the last ChunkOverlap characters of
// the previous one. A single sentence longer than ChunkSize is hard-split.
func (p *Processor) splitIntoChunks(text string) []string {
	var chunks []string
	size, overlap := p.config.ChunkSize, p.config.ChunkOverlap

	var current []rune
	// pending is set while current holds text not yet emitted.
	pending := false
	emit := func() {
		chunk := strings.TrimSpace(string(current))
		if utf8.RuneCountInString(chunk) >= p.config.MinChunkLength {
			chunks = append(chunks, chunk)
		}
	}
	flush := func() {
		if pending {
			emit()
		}
		pending = false
		if overlap > 0 && len(current) > overlap {
			current = append([]rune(nil), current[len(current)-overlap:]...)
		} else {
			current = current[:0]
		}
	}

	for _, sentence := range splitIntoSentences(text) {
		runes := []rune(sentence)
		for len(runes) > size {
			if pending {
				flush()
			}
			if len(current) > 0 {
				current = append(current, ' ')
			}
			room := size - len(current)
			if room <= 0 {
				current = current[:0]
				room = size
			}
			current = append(current, runes[:room]...)
			runes = runes[room:]
			pending = true
			flush()
		}

		if len(current)+1+len(runes) > size {
			flush()
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, runes...)
		pending = true
	}

	if pending {
		emit()
	}

	return chunks
}

func splitIntoSentences(text string) []string {
	var sentences []string

	current := strings.Builder{}
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\n') {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
