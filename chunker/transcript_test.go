package chunker

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/poiesic/warroom/core"
)

const sampleTranscript = `Operator: Good morning and welcome to the third quarter earnings call.

Joseph Craft - CEO: Thank you. We delivered strong coal royalties this quarter, with volumes up 4% sequentially and realized pricing ahead of guidance. Our Appalachia operations performed especially well.

Maria Chen, CFO: Turning to the financials, adjusted EBITDA came in at 182 million dollars, and we generated 95 million of free cash flow. Capital expenditure remains on plan for the full year.

Operator: We will now open the line for questions.

David Park - Analyst: Good morning. Can you walk us through the drivers behind the royalty uplift, and how durable do you expect that pricing to be into next year?

Joseph Craft - CEO: Sure, David. The uplift was mostly contracted tonnage repricing, and we expect the majority of it to hold through the first half.

Sarah Gold - Managing Director: A follow-up on capex. Is there room to accelerate the growth projects if pricing stays at these levels?

Maria Chen, CFO: We continuously evaluate that, but our current plan balances growth with returning capital to unitholders.`

func TestDetectSections_NoMarker(t *testing.T) {
	text := "Joseph Craft - CEO: Prepared remarks only, no question period here."
	sections := DetectSections(text)

	require.Len(t, sections, 1)
	assert.Equal(t, core.SectionPreparedRemarks, sections[0].Type)
	assert.Equal(t, text, sections[0].Content)
}

func TestDetectSections_WithMarker(t *testing.T) {
	sections := DetectSections(sampleTranscript)

	require.Len(t, sections, 2)
	assert.Equal(t, core.SectionPreparedRemarks, sections[0].Type)
	assert.Equal(t, core.SectionQA, sections[1].Type)
	assert.Contains(t, sections[1].Content, "open the line for questions")
	assert.NotContains(t, sections[0].Content, "David Park")
}

func TestDetectSections_ExplicitQAMarker(t *testing.T) {
	text := "Management remarks here.\n\nQ&A Session\n\nAnalyst One - Analyst: First question?"
	sections := DetectSections(text)

	require.Len(t, sections, 2)
	assert.Equal(t, core.SectionQA, sections[1].Type)
	assert.True(t, strings.HasPrefix(sections[1].Content, "Q&A Session"))
}

func TestMatchSpeaker(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Operator: Good morning.", "Operator"},
		{"Joseph Craft - CEO: Thank you.", "Joseph Craft"},
		{"Maria Chen, CFO: Turning to financials.", "Maria Chen"},
		{"David Park - Analyst: Good morning.", "David Park"},
		{"Sarah Gold - Managing Director: A follow-up.", "Sarah Gold"},
		{"And then we saw improvement across the board.", ""},
		{"no label on this line", ""},
		{"Thanks, operator.", ""},
		{"Q3 highlights: volumes up", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, matchSpeaker(tt.line))
		})
	}
}

func TestChunkTranscript_SectionTransition(t *testing.T) {
	c := New(1500, 200)
	chunks := c.ChunkTranscript(uuid.New(), "q3-call.txt", sampleTranscript)

	require.NotEmpty(t, chunks)

	// Section type transitions from prepared_remarks to qa exactly once.
	transitions := 0
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Section != chunks[i-1].Section {
			transitions++
			assert.Equal(t, core.SectionPreparedRemarks, chunks[i-1].Section)
			assert.Equal(t, core.SectionQA, chunks[i].Section)
		}
	}
	assert.Equal(t, 1, transitions)
}

func TestChunkTranscript_SequenceAndSpeakers(t *testing.T) {
	c := New(300, 50)
	chunks := c.ChunkTranscript(uuid.New(), "q3-call.txt", sampleTranscript)

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, uint32(i), chunk.Sequence)
	}

	speakers := make(map[string]bool)
	for _, chunk := range chunks {
		if chunk.Speaker != "" {
			speakers[chunk.Speaker] = true
		}
	}
	assert.True(t, speakers["Joseph Craft"], "CEO turns must be attributed")
	assert.True(t, speakers["Maria Chen"], "CFO turns must be attributed")
}

func TestChunkTranscript_SizeBound(t *testing.T) {
	c := New(300, 50)
	chunks := c.ChunkTranscript(uuid.New(), "q3-call.txt", sampleTranscript)

	longestLine := 0
	for _, line := range strings.Split(sampleTranscript, "\n") {
		if len(line) > longestLine {
			longestLine = len(line)
		}
	}

	for _, chunk := range chunks {
		max := c.ChunkSize + c.Overlap + 1 + longestLine
		assert.LessOrEqual(t, len(chunk.Text), max,
			"chunk %d is larger than the bound allows", chunk.Sequence)
	}
}

func TestChunkTranscript_OversizedTurnStillFlushed(t *testing.T) {
	c := New(200, 40)
	monologue := "Joseph Craft - CEO: Opening remarks.\n" +
		strings.Repeat("We remain focused on disciplined capital allocation across the portfolio.\n", 15)

	chunks := c.ChunkTranscript(uuid.New(), "q3-call.txt", monologue)
	require.Greater(t, len(chunks), 1, "the size check must force-flush inside an oversize turn")
	for _, chunk := range chunks {
		assert.Equal(t, "Joseph Craft", chunk.Speaker)
		assert.Equal(t, core.SectionPreparedRemarks, chunk.Section)
	}
}

func TestChunkTranscript_Empty(t *testing.T) {
	c := New(1500, 200)
	assert.Nil(t, c.ChunkTranscript(uuid.New(), "empty.txt", "  \n "))
}

func TestExtractSpeakers(t *testing.T) {
	speakers := ExtractSpeakers(sampleTranscript)

	assert.Equal(t, []string{"Operator", "Joseph Craft", "Maria Chen", "David Park", "Sarah Gold"}, speakers)
}

func TestExtractQuestions(t *testing.T) {
	questions := ExtractQuestions(sampleTranscript)

	require.Len(t, questions, 2)
	assert.Equal(t, "David Park", questions[0].Speaker)
	assert.Contains(t, questions[0].Question, "drivers behind the royalty uplift")
	assert.Equal(t, "Sarah Gold", questions[1].Speaker)
	assert.Contains(t, questions[1].Question, "accelerate the growth projects")
}

func TestExtractQuestions_NoQASection(t *testing.T) {
	assert.Nil(t, ExtractQuestions("Joseph Craft - CEO: Remarks only, nothing else."))
}
