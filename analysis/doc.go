// Package analysis runs the multi-phase briefing pipeline.
//
// A run takes a set of parsed documents and walks a fixed phase table:
// materiality analysis (retrieval-augmented, fatal on failure), analyst
// question prediction, trend comparison against the most recent prior
// briefing in the same series, and background indexing of the documents
// for future retrieval. Progress and results stream to a Sink as typed
// events; partial results are persisted as each phase completes.
//
// Failure policy: an empty document set and a materiality failure abort
// the run with a terminal error event. Everything else - a later phase
// failing, retrieval coming back empty, a persistence write failing -
// is logged, marked on the briefing, and stepped past, so one bad phase
// never costs a whole run.
package analysis
