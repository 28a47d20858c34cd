package chunker

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/warroom/core"
)

// speakerPattern recognizes a speaker label at the start of a line:
// a capitalized name, optionally followed by a dash- or comma-separated
// role, terminated by a colon. "Joseph Craft - CEO:", "Maria Chen, CFO:"
// and "Operator:" all match. This is inherently heuristic; see the tests
// for the transcript formats it is calibrated against.
var speakerPattern = regexp.MustCompile(`^([A-Z][A-Za-z.'\-]*(?:[ ][A-Z][A-Za-z.'\-]*){0,4})\s*(?:[-–—,]\s*[A-Za-z][^:]*)?:`)

// qaMarkers signal the start of the question-and-answer period.
// Matching is case-insensitive; the earliest match across all markers
// marks the section boundary.
var qaMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)question[- ]and[- ]answer`),
	regexp.MustCompile(`(?i)\bQ\s*&\s*A\s*(?:session|portion|segment)?`),
	regexp.MustCompile(`(?i)\boperator\s*:.*(?:question|Q&A)`),
	regexp.MustCompile(`(?i)\bwe (?:will|can) now (?:open|begin|take)\b.*\bquestion`),
}

// Section is one region of an earnings-call transcript.
type Section struct {
	Type    core.SectionType
	Content string
	Start   int
}

// DetectSections splits a transcript into prepared remarks and Q&A.
// When no Q&A marker is found the whole transcript is one prepared
// remarks section.
func DetectSections(text string) []Section {
	qaStart := -1
	for _, marker := range qaMarkers {
		if loc := marker.FindStringIndex(text); loc != nil {
			if qaStart == -1 || loc[0] < qaStart {
				qaStart = loc[0]
			}
		}
	}

	if qaStart == -1 {
		return []Section{{Type: core.SectionPreparedRemarks, Content: text, Start: 0}}
	}

	var sections []Section
	if qaStart > 0 {
		sections = append(sections, Section{
			Type:    core.SectionPreparedRemarks,
			Content: strings.TrimSpace(text[:qaStart]),
			Start:   0,
		})
	}
	sections = append(sections, Section{
		Type:    core.SectionQA,
		Content: strings.TrimSpace(text[qaStart:]),
		Start:   qaStart,
	})
	return sections
}

// matchSpeaker returns the speaker name of a label line, or "" when the
// line is not a speaker label.
func matchSpeaker(line string) string {
	m := speakerPattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if len(name) < 2 || len(name) >= 60 {
		return ""
	}
	return name
}

// ChunkTranscript splits an earnings-call transcript into chunks that
// carry the section type and current speaker.
//
// Within a section, lines are accumulated until the buffer crosses the
// chunk size. A new speaker label is a potential flush point: if taking
// the labeled line would exceed the chunk size, the buffer is flushed
// tagged with the previous speaker before the new turn starts. The size
// check also fires independently of speaker changes, so a single
// oversize turn is still bounded - the size bound takes precedence over
// speaker continuity.
func (c *Chunker) ChunkTranscript(briefingID uuid.UUID, sourceName, text string) []core.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []core.Chunk
	var sequence uint32

	for _, section := range DetectSections(text) {
		var current string
		var speaker string

		flush := func() {
			trimmed := strings.TrimSpace(current)
			if trimmed == "" {
				return
			}
			chunks = append(chunks, core.Chunk{
				BriefingID: briefingID,
				SourceName: sourceName,
				Sequence:   sequence,
				Text:       trimmed,
				Section:    section.Type,
				Speaker:    speaker,
			})
			sequence++
		}

		for _, line := range strings.Split(section.Content, "\n") {
			if name := matchSpeaker(line); name != "" {
				// Flush point: the buffer is tagged with the previous
				// speaker before the label line starts the next turn.
				if len(current) > 0 && len(current)+len(line) > c.ChunkSize {
					flush()
					if c.Overlap > 0 && len(current) > c.Overlap {
						current = tail(current, c.Overlap) + "\n" + line
					} else {
						current = line
					}
				} else {
					if current != "" {
						current += "\n"
					}
					current += line
				}
				speaker = name
				continue
			}

			if current != "" {
				current += "\n"
			}
			current += line

			if len(current) > c.ChunkSize {
				flush()
				if c.Overlap > 0 && len(current) > c.Overlap {
					current = tail(current, c.Overlap)
				} else {
					current = ""
				}
			}
		}

		flush()
	}

	return chunks
}

// ExtractSpeakers returns the distinct speaker names labeled in the
// transcript, in order of first appearance.
func ExtractSpeakers(text string) []string {
	seen := make(map[string]bool)
	var speakers []string
	for _, line := range strings.Split(text, "\n") {
		name := matchSpeaker(line)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		speakers = append(speakers, name)
	}
	return speakers
}

// managementRoles mark a labeled speaker as management rather than an
// analyst when guessing who asked a question.
var managementRoles = []string{"ceo", "cfo", "coo", "president", "chairman", "operator", "moderator"}

// Question is an analyst question extracted from the Q&A section.
type Question struct {
	Speaker  string
	Question string
}

// ExtractQuestions pulls likely analyst questions out of the Q&A section.
// A block counts as a question when its speaker does not look like
// management and the block contains a question mark. Returns nil when the
// transcript has no Q&A section.
func ExtractQuestions(text string) []Question {
	var qa *Section
	for _, s := range DetectSections(text) {
		if s.Type == core.SectionQA {
			qa = &s
			break
		}
	}
	if qa == nil {
		return nil
	}

	var questions []Question
	var speaker, block string
	isAnalyst := false

	record := func() {
		trimmed := strings.TrimSpace(block)
		if isAnalyst && trimmed != "" && strings.Contains(trimmed, "?") {
			questions = append(questions, Question{Speaker: speaker, Question: trimmed})
		}
	}

	for _, line := range strings.Split(qa.Content, "\n") {
		name := matchSpeaker(line)
		if name == "" {
			block += " " + strings.TrimSpace(line)
			continue
		}

		record()
		speaker = name
		label := speakerPattern.FindString(line)
		block = strings.TrimSpace(line[len(label):])

		lower := strings.ToLower(line)
		isAnalyst = true
		for _, role := range managementRoles {
			if strings.Contains(lower, role) {
				isAnalyst = false
				break
			}
		}
		if strings.Contains(lower, "analyst") || strings.Contains(lower, "managing director") {
			isAnalyst = true
		}
	}
	record()

	return questions
}
