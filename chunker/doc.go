// Package chunker splits raw document text into overlapping retrievable
// units.
//
// Two strategies are provided:
//
//   - ChunkDocument: generic paragraph-based chunking for reports and
//     other unstructured documents
//   - ChunkTranscript: section- and speaker-aware chunking for earnings
//     call transcripts, which tags each chunk with its call section
//     (prepared remarks vs Q&A) and the speaker whose turn it belongs to
//
// Both strategies bound chunk size at ChunkSize plus the carried overlap,
// except when a single atomic paragraph or utterance alone exceeds the
// chunk size, in which case it degenerates to an oversized chunk rather
// than an error. Chunking never fails for well-formed input.
package chunker
