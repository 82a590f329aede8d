// Package chunker splits note content into overlapping, paragraph-aligned chunks.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-notes/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// charsPerToken is the heuristic used for TokenCount.
const charsPerToken = 4

// paragraphBreak matches a blank line, optionally containing whitespace.
// RE2's \s is ASCII only, so Unicode space separators and the line,
// paragraph and BOM characters are listed explicitly.
var paragraphBreak = regexp.MustCompile(`\n[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]*\n`)

// Processor groups paragraphs into chunks of roughly chunkSize characters.
// A single paragraph longer than chunkSize becomes its own oversized chunk.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
// Negative values disable overlap.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap < 0 {
			overlap = 0
		}
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Split divides text into chunks. Returned chunks carry content, offsets,
// index and token estimate; IDs and document linkage are assigned by the caller.
// Empty or whitespace-only text yields no chunks.
func (p *Processor) Split(text string) []domain.Chunk {
	var (
		chunks     []domain.Chunk
		current    string
		currentLen int
		start      int
	)

	for _, para := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(para) == "" {
			continue
		}
		para += "\n\n"
		paraLen := utf8.RuneCountInString(para)

		if currentLen+paraLen > p.chunkSize && currentLen > 0 {
			end := start + currentLen
			chunks = append(chunks, newChunk(len(chunks), current, start, end))

			if p.overlap > 0 && currentLen > p.overlap {
				current = lastRunes(current, p.overlap) + para
				currentLen = p.overlap + paraLen
				start = end - p.overlap
			} else {
				current = para
				currentLen = paraLen
				start = end
			}
			continue
		}

		current += para
		currentLen += paraLen
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, newChunk(len(chunks), current, start, start+currentLen))
	}

	return chunks
}

// TokenCount estimates tokens as one per four characters, rounded up.
func TokenCount(content string) int {
	n := utf8.RuneCountInString(content)
	return (n + charsPerToken - 1) / charsPerToken
}

func newChunk(index int, accumulated string, start, end int) domain.Chunk {
	content := strings.TrimSpace(accumulated)
	return domain.Chunk{
		ChunkIndex:    index,
		Content:       content,
		StartPosition: start,
		EndPosition:   end,
		TokenCount:    TokenCount(content),
	}
}

// lastRunes returns the final n characters of s.
func lastRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := len(s)
	for count := 0; count < n && i > 0; count++ {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}
