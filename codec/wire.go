package codec

import (
	"fmt"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/format"
)

// EncodeColumn serializes a StoredColumn into the PartitionSegment column
// framing of spec.md §6: name, length, range, codec op list, data sections.
// Shared by the subpartition blob writer (package storage) and the WAL's
// columnar row-batch framing (package wal).
func EncodeColumn(sc StoredColumn) []byte {
	buf := make([]byte, 0, 64+len(sc.Name))
	buf = le.AppendUint16(buf, uint16(len(sc.Name)))
	buf = append(buf, sc.Name...)
	buf = le.AppendUint32(buf, uint32(sc.Len))

	if sc.Range.Empty {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = le.AppendUint64(buf, uint64(sc.Range.Min))
		buf = le.AppendUint64(buf, uint64(sc.Range.Max))
	}

	buf = le.AppendUint16(buf, uint16(len(sc.Codec)))
	for _, op := range sc.Codec {
		buf = encodeOp(buf, op)
	}

	buf = le.AppendUint16(buf, uint16(len(sc.Data)))
	for _, sec := range sc.Data {
		buf = append(buf, byte(sec.Tag))
		buf = le.AppendUint32(buf, uint32(len(sec.Bytes)))
		buf = append(buf, sec.Bytes...)
	}

	return buf
}

// DecodeColumn is the inverse of EncodeColumn.
func DecodeColumn(raw []byte) (StoredColumn, int, error) {
	var sc StoredColumn

	off := 0
	nameLen, off2, err := readU16(raw, off)
	if err != nil {
		return sc, 0, err
	}
	off = off2
	if off+int(nameLen) > len(raw) {
		return sc, 0, errs.ErrTruncatedSection
	}
	sc.Name = string(raw[off : off+int(nameLen)])
	off += int(nameLen)

	colLen, off3, err := readU32(raw, off)
	if err != nil {
		return sc, 0, err
	}
	off = off3
	sc.Len = int(colLen)

	if off >= len(raw) {
		return sc, 0, errs.ErrTruncatedSection
	}
	hasRange := raw[off]
	off++
	if hasRange == 0 {
		sc.Range = column.EmptyRange()
	} else {
		min, off4, err := readU64(raw, off)
		if err != nil {
			return sc, 0, err
		}
		max, off5, err := readU64(raw, off4)
		if err != nil {
			return sc, 0, err
		}
		off = off5
		sc.Range = column.NewRange(int64(min), int64(max))
	}

	numOps, off6, err := readU16(raw, off)
	if err != nil {
		return sc, 0, err
	}
	off = off6

	sc.Codec = make([]Op, 0, numOps)
	for i := 0; i < int(numOps); i++ {
		op, next, err := decodeOp(raw, off)
		if err != nil {
			return sc, 0, err
		}
		sc.Codec = append(sc.Codec, op)
		off = next
	}

	numSections, off7, err := readU16(raw, off)
	if err != nil {
		return sc, 0, err
	}
	off = off7

	sc.Data = make([]Section, 0, numSections)
	for i := 0; i < int(numSections); i++ {
		if off >= len(raw) {
			return sc, 0, errs.ErrTruncatedSection
		}
		tag := format.DataSectionTag(raw[off])
		off++
		n, off8, err := readU32(raw, off)
		if err != nil {
			return sc, 0, err
		}
		off = off8
		if off+int(n) > len(raw) {
			return sc, 0, errs.ErrTruncatedSection
		}
		sc.Data = append(sc.Data, Section{Tag: tag, Bytes: append([]byte(nil), raw[off:off+int(n)]...)})
		off += int(n)
	}

	return sc, off, nil
}

func encodeOp(buf []byte, op Op) []byte {
	buf = append(buf, byte(op.Tag()))

	switch o := op.(type) {
	case Add:
		buf = append(buf, byte(o.ValType))
		buf = le.AppendUint64(buf, uint64(o.Amount))
	case Delta:
		buf = append(buf, byte(o.ValType))
	case ToI64:
		buf = append(buf, byte(o.ValType))
	case PushDataSection:
		buf = le.AppendUint32(buf, uint32(o.Idx))
	case DictLookup:
		buf = append(buf, byte(o.ValType))
	case LZ4:
		buf = append(buf, byte(o.ValType))
		buf = le.AppendUint32(buf, uint32(o.LenDecoded))
	case Pco:
		buf = append(buf, byte(o.ValType))
		buf = le.AppendUint32(buf, uint32(o.LenDecoded))
		if o.IsFP32 {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case UnpackStrings:
	case UnhexpackStrings:
		if o.Uppercase {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		buf = le.AppendUint32(buf, uint32(o.TotalBytes))
	case Nullable:
	case Range:
		buf = le.AppendUint64(buf, uint64(o.Start))
		buf = le.AppendUint32(buf, uint32(o.Len))
		buf = le.AppendUint64(buf, uint64(o.Step))
	case Gorilla:
		buf = append(buf, byte(o.ValType))
	}

	return buf
}

func decodeOp(raw []byte, off int) (Op, int, error) {
	if off >= len(raw) {
		return nil, 0, errs.ErrTruncatedSection
	}
	tag := format.CodecOpTag(raw[off])
	off++

	switch tag {
	case format.OpAdd:
		vt, o2, err := readU8(raw, off)
		if err != nil {
			return nil, 0, err
		}
		amt, o3, err := readU64(raw, o2)
		if err != nil {
			return nil, 0, err
		}

		return Add{ValType: format.ValueType(vt), Amount: int64(amt)}, o3, nil
	case format.OpDelta:
		vt, o2, err := readU8(raw, off)
		if err != nil {
			return nil, 0, err
		}

		return Delta{ValType: format.ValueType(vt)}, o2, nil
	case format.OpToI64:
		vt, o2, err := readU8(raw, off)
		if err != nil {
			return nil, 0, err
		}

		return ToI64{ValType: format.ValueType(vt)}, o2, nil
	case format.OpPushDataSection:
		idx, o2, err := readU32(raw, off)
		if err != nil {
			return nil, 0, err
		}

		return PushDataSection{Idx: int(idx)}, o2, nil
	case format.OpDictLookup:
		vt, o2, err := readU8(raw, off)
		if err != nil {
			return nil, 0, err
		}

		return DictLookup{ValType: format.ValueType(vt)}, o2, nil
	case format.OpLZ4:
		vt, o2, err := readU8(raw, off)
		if err != nil {
			return nil, 0, err
		}
		n, o3, err := readU32(raw, o2)
		if err != nil {
			return nil, 0, err
		}

		return LZ4{ValType: format.ValueType(vt), LenDecoded: int(n)}, o3, nil
	case format.OpPco:
		vt, o2, err := readU8(raw, off)
		if err != nil {
			return nil, 0, err
		}
		n, o3, err := readU32(raw, o2)
		if err != nil {
			return nil, 0, err
		}
		fp, o4, err := readU8(raw, o3)
		if err != nil {
			return nil, 0, err
		}

		return Pco{ValType: format.ValueType(vt), LenDecoded: int(n), IsFP32: fp != 0}, o4, nil
	case format.OpUnpackStrings:
		return UnpackStrings{}, off, nil
	case format.OpUnhexpackStrings:
		up, o2, err := readU8(raw, off)
		if err != nil {
			return nil, 0, err
		}
		n, o3, err := readU32(raw, o2)
		if err != nil {
			return nil, 0, err
		}

		return UnhexpackStrings{Uppercase: up != 0, TotalBytes: int(n)}, o3, nil
	case format.OpNullable:
		return Nullable{}, off, nil
	case format.OpRange:
		start, o2, err := readU64(raw, off)
		if err != nil {
			return nil, 0, err
		}
		n, o3, err := readU32(raw, o2)
		if err != nil {
			return nil, 0, err
		}
		step, o4, err := readU64(raw, o3)
		if err != nil {
			return nil, 0, err
		}

		return Range{Start: int64(start), Len: int(n), Step: int64(step)}, o4, nil
	case format.OpGorilla:
		vt, o2, err := readU8(raw, off)
		if err != nil {
			return nil, 0, err
		}

		return Gorilla{ValType: format.ValueType(vt)}, o2, nil
	default:
		return nil, 0, fmt.Errorf("%w: tag %d", errs.ErrInvalidCodecOp, tag)
	}
}

func readU8(raw []byte, off int) (byte, int, error) {
	if off >= len(raw) {
		return 0, 0, errs.ErrTruncatedSection
	}

	return raw[off], off + 1, nil
}

func readU16(raw []byte, off int) (uint16, int, error) {
	if off+2 > len(raw) {
		return 0, 0, errs.ErrTruncatedSection
	}

	return le.Uint16(raw[off:]), off + 2, nil
}

func readU32(raw []byte, off int) (uint32, int, error) {
	if off+4 > len(raw) {
		return 0, 0, errs.ErrTruncatedSection
	}

	return le.Uint32(raw[off:]), off + 4, nil
}

func readU64(raw []byte, off int) (uint64, int, error) {
	if off+8 > len(raw) {
		return 0, 0, errs.ErrTruncatedSection
	}

	return le.Uint64(raw[off:]), off + 8, nil
}
