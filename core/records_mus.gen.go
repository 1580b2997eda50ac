// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

var (
	slice3GQ2cI1qXvmNoyΣtΔFTgYwΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var IDMUS = iDMUS{}

type iDMUS struct{}

func (s iDMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s iDMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s iDMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s iDMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var PassageRecordMUS = passageRecordMUS{}

type passageRecordMUS struct{}

func (s passageRecordMUS) Marshal(v PassageRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += varint.Int64.Marshal(v.ChunkID, bs[n:])
	n += varint.Int64.Marshal(v.ArticleID, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	n += ord.String.Marshal(v.DatePublished, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return n + slice3GQ2cI1qXvmNoyΣtΔFTgYwΞΞ.Marshal(v.Vector, bs[n:])
}

func (s passageRecordMUS) Unmarshal(bs []byte) (v PassageRecord, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ChunkID, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ArticleID, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.URL, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.DatePublished, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slice3GQ2cI1qXvmNoyΣtΔFTgYwΞΞ.Unmarshal(bs[n:])
	n += n1
	return
}

func (s passageRecordMUS) Size(v PassageRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += varint.Int64.Size(v.ChunkID)
	size += varint.Int64.Size(v.ArticleID)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.URL)
	size += ord.String.Size(v.Source)
	size += ord.String.Size(v.DatePublished)
	size += ord.String.Size(v.Text)
	return size + slice3GQ2cI1qXvmNoyΣtΔFTgYwΞΞ.Size(v.Vector)
}

func (s passageRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slice3GQ2cI1qXvmNoyΣtΔFTgYwΞΞ.Skip(bs[n:])
	n += n1
	return
}
