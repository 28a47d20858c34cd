package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/warroom/core"
)

// Key prefixes for different data types
const (
	chunkPrefix         = "chkrec"
	chunkBriefingPrefix = "chkbrf"
	briefingPrefix      = "brfrec"
	briefingDatePrefix  = "brfdate"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkBriefingKey generates a composite key for the per-briefing
// chunk index. Format: prefix:briefingID:chunkID
func makeChunkBriefingKey(briefingID uuid.UUID, id core.ID) []byte {
	prefix := chunkBriefingPrefix + ":" + briefingID.String() + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialChunkBriefingKey generates a partial key for per-briefing
// chunk queries.
func makePartialChunkBriefingKey(briefingID uuid.UUID) []byte {
	return []byte(chunkBriefingPrefix + ":" + briefingID.String() + ":")
}

// makeBriefingKey generates a key for a briefing by ID.
func makeBriefingKey(id uuid.UUID) []byte {
	return []byte(briefingPrefix + ":" + id.String())
}

// makeBriefingDateKey generates a composite key for the creation-time
// index. Format: prefix:timestamp:briefingID
func makeBriefingDateKey(createdAt time.Time, id uuid.UUID) []byte {
	prefix := briefingDatePrefix + ":"
	prefixBytes := []byte(prefix)
	idStr := id.String()
	buf := make([]byte, len(prefixBytes)+8+len(idStr))
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], idStr)
	return buf
}

// makePartialBriefingDateKey generates a partial key for creation-time
// range scans.
func makePartialBriefingDateKey(createdAt time.Time) []byte {
	prefix := briefingDatePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	return buf
}
