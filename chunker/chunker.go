package chunker

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/warroom/core"
)

// Default chunking parameters. 1500 characters keeps a chunk comfortably
// inside the embedding model's token ceiling; 200 characters of overlap
// preserves context across chunk boundaries.
const (
	DefaultChunkSize = 1500
	DefaultOverlap   = 200
)

var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// Chunker splits document text into overlapping chunks for embedding.
//
// The generic strategy splits on blank-line paragraph boundaries and merges
// small paragraphs into chunks of approximately ChunkSize characters with
// Overlap characters carried over between adjacent chunks. The transcript
// strategy (ChunkTranscript) additionally respects call sections and
// speaker turns.
type Chunker struct {
	ChunkSize int
	Overlap   int
}

// New creates a Chunker, replacing non-positive parameters with defaults.
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &Chunker{ChunkSize: chunkSize, Overlap: overlap}
}

// ChunkDocument splits a document's text into chunks owned by briefingID.
// Sequence indexes are contiguous from 0 for the document. Empty or
// whitespace-only input yields no chunks. Never fails: pathological input
// (a single paragraph larger than the chunk size) degenerates to oversized
// chunks rather than erroring.
func (c *Chunker) ChunkDocument(briefingID uuid.UUID, sourceName, text string) []core.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var paragraphs []string
	for _, p := range paragraphSplit.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var chunks []core.Chunk
	var current string
	var sequence uint32

	emit := func() {
		chunks = append(chunks, core.Chunk{
			BriefingID: briefingID,
			SourceName: sourceName,
			Sequence:   sequence,
			Text:       strings.TrimSpace(current),
		})
		sequence++
	}

	for _, para := range paragraphs {
		// If adding this paragraph exceeds chunk size, save current and start new
		if len(current)+len(para) > c.ChunkSize && len(current) > 0 {
			emit()

			// Keep overlap from the end of the previous chunk
			if c.Overlap > 0 && len(current) > c.Overlap {
				current = tail(current, c.Overlap) + "\n\n" + para
			} else {
				current = para
			}
		} else {
			if current != "" {
				current += "\n\n"
			}
			current += para
		}
	}

	if strings.TrimSpace(current) != "" {
		emit()
	}

	return chunks
}

// ChunkDocuments runs the generic strategy over every document, in order.
func (c *Chunker) ChunkDocuments(briefingID uuid.UUID, documents []core.Document) []core.Chunk {
	var chunks []core.Chunk
	for _, doc := range documents {
		chunks = append(chunks, c.ChunkDocument(briefingID, doc.Name, doc.Content)...)
	}
	return chunks
}

// tail returns the last max runes of s without splitting a multi-byte
// character.
func tail(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	// Back off from the byte boundary to a rune boundary.
	start := len(s) - max
	for start < len(s) && !isRuneStart(s[start]) {
		start++
	}
	return s[start:]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
