package core

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - SourceName must not be empty
//   - BriefingID must not be the zero UUID
//   - Section must be a known SectionType
//
// NOT validated (populated later in the pipeline):
//   - Vector (empty until the embedding client runs)
//   - Id (derived from content at persistence time)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.SourceName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySourceName)
	}

	if chunk.BriefingID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingBriefingID)
	}

	if err := ValidateSectionType(chunk.Section); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	return nil
}

// ValidateSectionType checks that the section type is a known value.
func ValidateSectionType(s SectionType) error {
	switch s {
	case SectionNone, SectionPreparedRemarks, SectionQA, SectionOperator, SectionOther:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSection, int(s))
	}
}

// ValidateBriefing validates a Briefing according to domain rules.
//
// Validation rules:
//   - Series must not be empty
//   - Id must not be the zero UUID
//
// Phase results are NOT validated: a nil result means the phase has not
// run or failed non-fatally, which is a legal state.
func ValidateBriefing(briefing *Briefing) error {
	if briefing == nil {
		return fmt.Errorf("%w: briefing is nil", ErrInvalidBriefing)
	}

	if briefing.Series == "" {
		return fmt.Errorf("%w: %w", ErrInvalidBriefing, ErrEmptySeries)
	}

	if briefing.Id == uuid.Nil {
		return fmt.Errorf("%w: briefing id is zero", ErrInvalidBriefing)
	}

	return nil
}
