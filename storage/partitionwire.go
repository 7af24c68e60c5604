package storage

import (
	"github.com/cswinter/locustdb/codec"
	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/partition"
)

// EncodePartition frames a sealed partition as a self-contained blob:
// [id(8)][len(4)][numSubpartitions(4)] followed by, per subpartition,
// [key(8)][largestColumnName][numColumns(4)] and each column framed with
// codec.EncodeColumn (the same per-column framing wal.Serialize uses for an
// open batch, per codec/wire.go's role as shared column wire format).
func EncodePartition(p *partition.Partition) []byte {
	buf := make([]byte, 0, 256)
	buf = le.AppendUint64(buf, p.ID)
	buf = le.AppendUint32(buf, uint32(p.Len))
	buf = le.AppendUint32(buf, uint32(len(p.Subpartitions)))

	for _, sub := range p.Subpartitions {
		buf = le.AppendUint64(buf, sub.Key)
		buf = le.AppendUint16(buf, uint16(len(sub.LargestColumn)))
		buf = append(buf, sub.LargestColumn...)
		buf = le.AppendUint32(buf, uint32(len(sub.Columns)))

		for _, col := range sub.Columns {
			colBytes := codec.EncodeColumn(col)
			buf = le.AppendUint32(buf, uint32(len(colBytes)))
			buf = append(buf, colBytes...)
		}
	}

	return buf
}

// DecodePartition is the inverse of EncodePartition.
func DecodePartition(raw []byte) (*partition.Partition, error) {
	if len(raw) < 16 {
		return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
	}

	p := &partition.Partition{
		ID:  le.Uint64(raw[0:8]),
		Len: int(le.Uint32(raw[8:12])),
	}
	numSubs := le.Uint32(raw[12:16])
	off := 16

	for i := 0; i < int(numSubs); i++ {
		if off+8+2 > len(raw) {
			return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
		}
		sub := partition.Subpartition{Key: le.Uint64(raw[off:])}
		off += 8

		nameLen := int(le.Uint16(raw[off:]))
		off += 2
		if off+nameLen > len(raw) {
			return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
		}
		sub.LargestColumn = string(raw[off : off+nameLen])
		off += nameLen

		if off+4 > len(raw) {
			return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
		}
		numCols := le.Uint32(raw[off:])
		off += 4

		for j := 0; j < int(numCols); j++ {
			if off+4 > len(raw) {
				return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
			}
			colLen := le.Uint32(raw[off:])
			off += 4
			if off+int(colLen) > len(raw) {
				return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
			}

			sc, n, err := codec.DecodeColumn(raw[off : off+int(colLen)])
			if err != nil {
				return nil, errs.Classify(errs.KindCorruptData, err)
			}
			off += n

			sub.Columns = append(sub.Columns, sc)
		}

		p.Subpartitions = append(p.Subpartitions, sub)
	}

	return p, nil
}
