// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types that hit disk. Composed by hand from the
// mus-go primitive serializers; field order is the wire format, so never
// reorder fields here without a migration.

// IDMUS serializes an ID as a varint.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// ChunkMUS serializes a Chunk.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.Id), bs)
	n += ord.String.Marshal(c.BriefingID.String(), bs[n:])
	n += ord.String.Marshal(c.SourceName, bs[n:])
	n += varint.Uint64.Marshal(uint64(c.Sequence), bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += marshalVector(c.Vector, bs[n:])
	n += varint.Int.Marshal(int(c.Section), bs[n:])
	n += ord.String.Marshal(c.Speaker, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var (
		n1 int
		id uint64
	)
	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	c.Id = ID(id)
	if c.BriefingID, n1, err = unmarshalUUID(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.SourceName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	var seq uint64
	if seq, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	c.Sequence = uint32(seq)
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	var section int
	if section, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	c.Section = SectionType(section)
	n += n1
	if c.Speaker, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	c.InsertedAt, n1, err = unmarshalTime(bs[n:])
	return c, n + n1, err
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = varint.Uint64.Size(uint64(c.Id))
	size += ord.String.Size(c.BriefingID.String())
	size += ord.String.Size(c.SourceName)
	size += varint.Uint64.Size(uint64(c.Sequence))
	size += ord.String.Size(c.Text)
	size += sizeVector(c.Vector)
	size += varint.Int.Size(int(c.Section))
	size += ord.String.Size(c.Speaker)
	size += sizeTime(c.InsertedAt)
	return size
}

// BriefingMUS serializes a Briefing. The three phase results are stored
// as their JSON encodings behind a presence flag; they already have
// stable JSON shapes for the API surface, so there is no second wire
// format to maintain.
var BriefingMUS = briefingMUS{}

type briefingMUS struct{}

func (briefingMUS) Marshal(b Briefing, bs []byte) (n int) {
	n = ord.String.Marshal(b.Id.String(), bs)
	n += ord.String.Marshal(b.Series, bs[n:])
	n += ord.String.Marshal(b.Title, bs[n:])
	n += ord.String.Marshal(b.ExecutiveSummary, bs[n:])
	n += varint.Int.Marshal(b.DocumentCount, bs[n:])
	n += varint.Int.Marshal(b.TotalWords, bs[n:])
	n += marshalTime(b.CreatedAt, bs[n:])
	n += marshalJSONField(b.Materiality, bs[n:])
	n += marshalJSONField(b.Questions, bs[n:])
	n += marshalJSONField(b.Trends, bs[n:])
	n += marshalPhases(b.Phases, bs[n:])
	return n
}

func (briefingMUS) Unmarshal(bs []byte) (b Briefing, n int, err error) {
	var n1 int
	if b.Id, n, err = unmarshalUUID(bs); err != nil {
		return
	}
	if b.Series, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.ExecutiveSummary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.DocumentCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.TotalWords, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.Materiality, n1, err = unmarshalJSONField[MaterialityResult](bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.Questions, n1, err = unmarshalJSONField[QuestionsResult](bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.Trends, n1, err = unmarshalJSONField[TrendsResult](bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	b.Phases, n1, err = unmarshalPhases(bs[n:])
	return b, n + n1, err
}

func (briefingMUS) Size(b Briefing) (size int) {
	size = ord.String.Size(b.Id.String())
	size += ord.String.Size(b.Series)
	size += ord.String.Size(b.Title)
	size += ord.String.Size(b.ExecutiveSummary)
	size += varint.Int.Size(b.DocumentCount)
	size += varint.Int.Size(b.TotalWords)
	size += sizeTime(b.CreatedAt)
	size += sizeJSONField(b.Materiality)
	size += sizeJSONField(b.Questions)
	size += sizeJSONField(b.Trends)
	size += sizePhases(b.Phases)
	return size
}

// Helpers shared by the serializers above.

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count < 0 {
		return nil, n, fmt.Errorf("negative vector length %d", count)
	}
	if count == 0 {
		return nil, n, nil
	}
	v = make([]float32, count)
	var n1 int
	for i := range v {
		if v[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		n += n1
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Uint64.Marshal(uint64(t.UnixMicro()), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(int64(v)).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Uint64.Size(uint64(t.UnixMicro()))
}

func unmarshalUUID(bs []byte) (uuid.UUID, int, error) {
	s, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return uuid.Nil, n, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, n, fmt.Errorf("parse uuid: %w", err)
	}
	return id, n, nil
}

func marshalJSONField[T any](v *T, bs []byte) (n int) {
	n = ord.Bool.Marshal(v != nil, bs)
	if v == nil {
		return n
	}
	data, _ := json.Marshal(v)
	return n + ord.String.Marshal(string(data), bs[n:])
}

func unmarshalJSONField[T any](bs []byte) (v *T, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	s, n1, err := ord.String.Unmarshal(bs[n:])
	if err != nil {
		return nil, n + n1, err
	}
	n += n1
	v = new(T)
	if err = json.Unmarshal([]byte(s), v); err != nil {
		return nil, n, err
	}
	return v, n, nil
}

func sizeJSONField[T any](v *T) (size int) {
	size = ord.Bool.Size(v != nil)
	if v == nil {
		return size
	}
	data, _ := json.Marshal(v)
	return size + ord.String.Size(string(data))
}

func marshalPhases(phases map[PhaseName]PhaseStatus, bs []byte) (n int) {
	n = varint.Int.Marshal(len(phases), bs)
	for name, status := range phases {
		n += ord.String.Marshal(string(name), bs[n:])
		n += ord.String.Marshal(string(status), bs[n:])
	}
	return n
}

func unmarshalPhases(bs []byte) (map[PhaseName]PhaseStatus, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count < 0 {
		return nil, n, fmt.Errorf("negative phase count %d", count)
	}
	if count == 0 {
		return nil, n, nil
	}
	phases := make(map[PhaseName]PhaseStatus, count)
	for i := 0; i < count; i++ {
		name, n1, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + n1, err
		}
		n += n1
		status, n1, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + n1, err
		}
		n += n1
		phases[PhaseName(name)] = PhaseStatus(status)
	}
	return phases, n, nil
}

func sizePhases(phases map[PhaseName]PhaseStatus) (size int) {
	size = varint.Int.Size(len(phases))
	for name, status := range phases {
		size += ord.String.Size(string(name))
		size += ord.String.Size(string(status))
	}
	return size
}
