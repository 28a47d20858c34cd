// Package ingestion turns raw documents into retrievable chunks.
//
// The Indexer chunks each document, embeds the chunk texts in order, and
// persists the embedded chunks under a briefing ID. Persistence runs in
// fixed-size batches on a worker pool; a failed batch is logged and
// skipped so one bad write never discards a whole corpus.
package ingestion
