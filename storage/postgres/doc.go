// Package postgres implements the storage repositories on PostgreSQL
// with the pgvector extension. Similarity search uses the cosine
// distance operator (<=>), so `1 - distance` is the similarity the rest
// of the system works with.
//
// The package is exercised against a live database; there is no
// in-process fake. Use storage/badger's in-memory mode for tests.
package postgres
