package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a unique identifier for stored chunks.
// It hashes the chunk's key together with a per-insert nonce, so every
// store of a chunk yields a distinct row: indexing is append-only and
// re-running it over the same documents grows the store.
type ID uint64

// IDFromContent generates a deterministic ID from text using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NewChunkID allocates a row ID for one stored copy of a chunk. A fresh
// nonce goes into the hash, so storing the same content again appends a
// new row instead of overwriting the previous one.
func NewChunkID(c *Chunk) ID {
	return IDFromContent(uuid.NewString() + "#" + c.Key())
}

// SectionType identifies which part of an earnings call a transcript
// chunk was taken from. SectionNone marks chunks produced by the generic
// document chunker, which carries no section information.
type SectionType int

const (
	SectionNone SectionType = iota
	SectionPreparedRemarks
	SectionQA
	SectionOperator
	SectionOther
)

// String returns the storage representation of the section type.
func (s SectionType) String() string {
	switch s {
	case SectionPreparedRemarks:
		return "prepared_remarks"
	case SectionQA:
		return "qa"
	case SectionOperator:
		return "operator"
	case SectionOther:
		return "other"
	default:
		return ""
	}
}

// Chunk is a bounded contiguous slice of a document's text, the unit of
// embedding and retrieval.
//
// Sequence values are contiguous per (BriefingID, SourceName) starting at 0.
// The Vector is empty until the embedding client has processed the chunk;
// it is attached before persistence and the chunk is immutable thereafter.
// Section and Speaker are populated only by the transcript chunker.
type Chunk struct {
	Id         ID
	BriefingID uuid.UUID
	SourceName string
	Sequence   uint32
	Text       string
	Vector     []float32
	Section    SectionType
	Speaker    string
	InsertedAt time.Time
}

// Key returns the string hashed into the chunk's content ID.
func (c *Chunk) Key() string {
	return c.BriefingID.String() + "/" + c.SourceName + "/" + strconv.FormatUint(uint64(c.Sequence), 10) + ":" + c.Text
}

// RetrievalResult pairs a retrieved chunk with its cosine similarity to
// the query, in [0, 1].
type RetrievalResult struct {
	Chunk      *Chunk
	Similarity float32
}

// Document is a parsed input document. Content is assumed to be
// normalized UTF-8 text with excess blank lines collapsed; extraction
// from PDF/DOCX happens upstream.
type Document struct {
	Name      string
	Content   string
	PageCount int
	Type      string
	Size      int64
}

// PhaseName identifies one generation step of the analysis pipeline.
type PhaseName string

const (
	PhaseMateriality PhaseName = "materiality_analysis"
	PhaseQuestions   PhaseName = "analyst_questions"
	PhaseTrends      PhaseName = "trend_comparison"
	PhaseIndexing    PhaseName = "background_indexing"
)

// PhaseStatus tracks the outcome of a single pipeline phase.
type PhaseStatus string

const (
	PhasePending PhaseStatus = "pending"
	PhaseDone    PhaseStatus = "done"
	PhaseFailed  PhaseStatus = "failed"
)

// Briefing is an analysis run and its accumulated results.
//
// A Briefing is created when the pipeline starts and mutated as each
// phase completes or fails. A nil phase result means the phase did not
// produce one - consumers must treat it as "unavailable", not as an
// error. Briefings are never deleted by this module.
type Briefing struct {
	Id               uuid.UUID
	Series           string
	Title            string
	ExecutiveSummary string
	DocumentCount    int
	TotalWords       int
	CreatedAt        time.Time
	Materiality      *MaterialityResult
	Questions        *QuestionsResult
	Trends           *TrendsResult
	Phases           map[PhaseName]PhaseStatus
}

// NewBriefing creates a pending Briefing for a pipeline run.
func NewBriefing(series string, documentCount, totalWords int) *Briefing {
	return &Briefing{
		Id:            uuid.New(),
		Series:        series,
		DocumentCount: documentCount,
		TotalWords:    totalWords,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
		Phases: map[PhaseName]PhaseStatus{
			PhaseMateriality: PhasePending,
			PhaseQuestions:   PhasePending,
			PhaseTrends:      PhasePending,
			PhaseIndexing:    PhasePending,
		},
	}
}

// CountWords returns the whitespace-separated word count across documents.
func CountWords(docs []Document) int {
	total := 0
	for _, d := range docs {
		inWord := false
		for _, r := range d.Content {
			switch r {
			case ' ', '\t', '\n', '\r':
				inWord = false
			default:
				if !inWord {
					inWord = true
					total++
				}
			}
		}
	}
	return total
}
