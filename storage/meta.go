// Package storage is the resident/evictable catalog layer sitting above
// package partition: it tracks which partitions and subpartitions exist,
// persists that catalog as versioned metadata, and serves reads through a
// bounded byte cache with an LRU eviction policy (spec.md §3/§4.6).
package storage

import (
	"bytes"
	"io"

	"github.com/cswinter/locustdb/compress"
	"github.com/cswinter/locustdb/endian"
	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/format"
)

var le = endian.GetLittleEndianEngine()

// SubpartitionMetadata records the catalog entry for one on-disk
// subpartition blob. Columns is the set of column names the blob holds;
// MetaV3 writers omit it (spec.md §9 Open Question: "does subpartition
// metadata literally enumerate column names, or only record the largest
// column and recover the rest by reading the blob?"): DecodeDBMeta returns
// nil Columns for a v3 entry, and nothing in this package reads the blob to
// fill them back in.
type SubpartitionMetadata struct {
	Key           uint64
	LargestColumn string
	SizeBytes     int
	Columns       []string
}

// PartitionMetadata records the catalog entry for one sealed partition.
type PartitionMetadata struct {
	ID            uint64
	Table         string
	Len           int
	Subpartitions []SubpartitionMetadata
}

// DBMeta is the full persisted catalog: the WAL replay cursor plus every
// sealed partition's metadata (spec.md §3: "On startup: load metadata; for
// every WAL segment with id >= metadata's first-unsealed id, replay").
type DBMeta struct {
	NextWalID  uint64
	Partitions []PartitionMetadata
}

// EncodeDBMeta serializes meta at the given on-disk version. Versions v0-v2
// differ only in how each subpartition's column list is represented;
// CurrentMetaVersion (v3) drops the column list from the wire format
// entirely.
func EncodeDBMeta(meta DBMeta, version format.MetaVersion) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(version))

	hdr := make([]byte, 8)
	le.PutUint64(hdr, meta.NextWalID)
	buf.Write(hdr)

	plen := make([]byte, 4)
	le.PutUint32(plen, uint32(len(meta.Partitions)))
	buf.Write(plen)

	for _, p := range meta.Partitions {
		writeMetaString(&buf, p.Table)
		writeMetaUint64(&buf, p.ID)
		writeMetaUint32(&buf, uint32(p.Len))
		writeMetaUint32(&buf, uint32(len(p.Subpartitions)))

		for _, sp := range p.Subpartitions {
			writeMetaUint64(&buf, sp.Key)
			writeMetaString(&buf, sp.LargestColumn)
			writeMetaUint32(&buf, uint32(sp.SizeBytes))
			encodeSubpartitionColumns(&buf, sp.Columns, version)
		}
	}

	return buf.Bytes()
}

// DecodeDBMeta is the version-tolerant inverse of EncodeDBMeta: it reads the
// leading version byte and dispatches accordingly, so a v0-v2 catalog
// written by an older build still loads under the current code (spec.md §9:
// metadata must remain loadable across format revisions).
func DecodeDBMeta(raw []byte) (DBMeta, error) {
	if len(raw) < 1 {
		return DBMeta{}, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
	}

	version := format.MetaVersion(raw[0])
	r := bytes.NewReader(raw[1:])

	var meta DBMeta

	nextWalID, err := readMetaUint64(r)
	if err != nil {
		return DBMeta{}, err
	}
	meta.NextWalID = nextWalID

	numPartitions, err := readMetaUint32(r)
	if err != nil {
		return DBMeta{}, err
	}

	for i := 0; i < int(numPartitions); i++ {
		var p PartitionMetadata

		p.Table, err = readMetaString(r)
		if err != nil {
			return DBMeta{}, err
		}
		p.ID, err = readMetaUint64(r)
		if err != nil {
			return DBMeta{}, err
		}
		l, err := readMetaUint32(r)
		if err != nil {
			return DBMeta{}, err
		}
		p.Len = int(l)

		numSubs, err := readMetaUint32(r)
		if err != nil {
			return DBMeta{}, err
		}

		for j := 0; j < int(numSubs); j++ {
			var sp SubpartitionMetadata

			sp.Key, err = readMetaUint64(r)
			if err != nil {
				return DBMeta{}, err
			}
			sp.LargestColumn, err = readMetaString(r)
			if err != nil {
				return DBMeta{}, err
			}
			sz, err := readMetaUint32(r)
			if err != nil {
				return DBMeta{}, err
			}
			sp.SizeBytes = int(sz)

			sp.Columns, err = decodeSubpartitionColumns(r, version)
			if err != nil {
				return DBMeta{}, err
			}

			p.Subpartitions = append(p.Subpartitions, sp)
		}

		meta.Partitions = append(meta.Partitions, p)
	}

	return meta, nil
}

// encodeSubpartitionColumns writes the column-name list in the shape the
// given version uses. v0 writes literal strings; v1 and v2 intern each name
// into the stream's own local dictionary (a per-subpartition dictionary,
// simpler than a database-wide intern table and sufficient since
// subpartitions hold few columns); v2 additionally runs that name list
// through zstd; v3 writes nothing, so Columns decodes as nil.
func encodeSubpartitionColumns(buf *bytes.Buffer, columns []string, version format.MetaVersion) {
	switch version {
	case format.MetaV0:
		writeMetaUint32(buf, uint32(len(columns)))
		for _, c := range columns {
			writeMetaString(buf, c)
		}
	case format.MetaV1, format.MetaV2:
		dict := make([]byte, 0, 64)
		dict = le.AppendUint16(dict, uint16(len(columns)))
		for _, c := range columns {
			dict = le.AppendUint16(dict, uint16(len(c)))
			dict = append(dict, c...)
		}

		if version == format.MetaV1 {
			writeMetaUint32(buf, uint32(len(dict)))
			buf.Write(dict)

			return
		}

		codec, err := compress.GetCodec(format.CompressionZstd)
		if err != nil {
			// No zstd codec registered: fall back to the uncompressed form
			// rather than lose the column list.
			writeMetaUint32(buf, uint32(len(dict)))
			buf.Write(dict)

			return
		}

		compressed, err := codec.Compress(dict)
		if err != nil {
			writeMetaUint32(buf, uint32(len(dict)))
			buf.Write(dict)

			return
		}
		writeMetaUint32(buf, uint32(len(dict)))
		writeMetaUint32(buf, uint32(len(compressed)))
		buf.Write(compressed)
	case format.MetaV3:
		// Column list omitted; it decodes as nil.
	}
}

func decodeSubpartitionColumns(r io.Reader, version format.MetaVersion) ([]string, error) {
	switch version {
	case format.MetaV0:
		n, err := readMetaUint32(r)
		if err != nil {
			return nil, err
		}
		columns := make([]string, n)
		for i := range columns {
			columns[i], err = readMetaString(r)
			if err != nil {
				return nil, err
			}
		}

		return columns, nil
	case format.MetaV1:
		n, err := readMetaUint32(r)
		if err != nil {
			return nil, err
		}
		dict := make([]byte, n)
		if _, err := io.ReadFull(r, dict); err != nil {
			return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
		}

		return decodeColumnDict(dict)
	case format.MetaV2:
		rawLen, err := readMetaUint32(r)
		if err != nil {
			return nil, err
		}
		compressedLen, err := readMetaUint32(r)
		if err != nil {
			return nil, err
		}
		compressed := make([]byte, compressedLen)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
		}

		codec, err := compress.GetCodec(format.CompressionZstd)
		if err != nil {
			return nil, errs.Classify(errs.KindInternal, err)
		}

		dict, err := codec.Decompress(compressed)
		if err != nil {
			return nil, errs.Classify(errs.KindCorruptData, err)
		}
		if len(dict) != int(rawLen) {
			return nil, errs.Classify(errs.KindCorruptData, errs.ErrLengthMismatch)
		}

		return decodeColumnDict(dict)
	case format.MetaV3:
		// No column list on the wire; Columns stays nil.
		return nil, nil
	default:
		return nil, errs.Classify(errs.KindCorruptData, errs.ErrUnknownMetaVersion)
	}
}

func decodeColumnDict(dict []byte) ([]string, error) {
	if len(dict) < 2 {
		return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
	}
	n := le.Uint16(dict)
	off := 2
	columns := make([]string, n)

	for i := range columns {
		if off+2 > len(dict) {
			return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
		}
		l := int(le.Uint16(dict[off:]))
		off += 2
		if off+l > len(dict) {
			return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
		}
		columns[i] = string(dict[off : off+l])
		off += l
	}

	return columns, nil
}

func writeMetaString(buf *bytes.Buffer, s string) {
	writeMetaUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func writeMetaUint32(buf *bytes.Buffer, v uint32) {
	b := make([]byte, 4)
	le.PutUint32(b, v)
	buf.Write(b)
}

func writeMetaUint64(buf *bytes.Buffer, v uint64) {
	b := make([]byte, 8)
	le.PutUint64(b, v)
	buf.Write(b)
}

func readMetaUint32(r io.Reader) (uint32, error) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
	}

	return le.Uint32(b), nil
}

func readMetaUint64(r io.Reader) (uint64, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
	}

	return le.Uint64(b), nil
}

func readMetaString(r io.Reader) (string, error) {
	n, err := readMetaUint32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
	}

	return string(b), nil
}
