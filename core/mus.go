// Copyright 2026 Poiesic Systems
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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the types persisted by the storage layer.
// Field order is part of the on-disk format; append new fields, never reorder.

// vectorMUS serializes embedding vectors. Raw float32 encoding keeps vector
// values at a fixed four bytes per component.
var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

// Timestamps are stored as Unix microseconds.

func marshalTimeMUS(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTimeMUS(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTimeMUS(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

// IDMUS serializes the ID defined type.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (ID, int, error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (s idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// DocumentMUS serializes the Document struct.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += marshalTimeMUS(v.CreatedAt, bs[n:])
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	return n
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.CreatedAt, n1, err = unmarshalTimeMUS(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (s documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Text)
	size += sizeTimeMUS(v.CreatedAt)
	size += varint.Int.Size(v.ChunkCount)
	return size
}

// ChunkMUS serializes the Chunk struct.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += varint.Uint64.Marshal(v.Seq, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(v.StartOffset, bs[n:])
	n += varint.Int.Marshal(v.EndOffset, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += marshalTimeMUS(v.InsertedAt, bs[n:])
	return n
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Seq, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.StartOffset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.EndOffset, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.InsertedAt, n1, err = unmarshalTimeMUS(bs[n:])
	n += n1
	return v, n, err
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.DocumentId)
	size += varint.Uint64.Size(v.Seq)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(v.StartOffset)
	size += varint.Int.Size(v.EndOffset)
	size += vectorMUS.Size(v.Vector)
	size += sizeTimeMUS(v.InsertedAt)
	return size
}
