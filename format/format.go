// Package format defines the small, closed set of tagged enums that make up
// the wire vocabulary of the columnar store: value types, codec pipeline
// ops, stored data section kinds, and on-disk metadata schema versions.
//
// Every enum here follows the same shape: a typed byte plus a String()
// method, so values are self-describing in logs and error messages without
// needing a lookup table at every call site.
package format

type (
	// ValueType is the logical type of a column's values.
	ValueType uint8
	// CodecOpTag identifies which CodecOp variant a serialized op is.
	CodecOpTag uint8
	// DataSectionTag identifies the physical encoding of a stored byte section.
	DataSectionTag uint8
	// CompressionType identifies a terminal compression codec applied on top
	// of an encoded section.
	CompressionType uint8
	// MetaVersion identifies the on-disk revision of DBMeta/SubpartitionMetadata.
	MetaVersion uint8
)

const (
	TypeInt64  ValueType = 0x1 // TypeInt64 is a signed 64-bit integer column.
	TypeUint64 ValueType = 0x2 // TypeUint64 is an unsigned 64-bit integer column.
	TypeFloat  ValueType = 0x3 // TypeFloat is a 64-bit float column.
	TypeString ValueType = 0x4 // TypeString is a UTF-8 string column.
	TypeNull   ValueType = 0x5 // TypeNull is an all-null column with no data.
	TypeMixed  ValueType = 0x6 // TypeMixed is a per-row tagged union of the above.
)

func (t ValueType) String() string {
	switch t {
	case TypeInt64:
		return "Int64"
	case TypeUint64:
		return "Uint64"
	case TypeFloat:
		return "Float"
	case TypeString:
		return "String"
	case TypeNull:
		return "Null"
	case TypeMixed:
		return "Mixed"
	default:
		return "Unknown"
	}
}

const (
	OpAdd              CodecOpTag = 0x01 // Add{type, amount}: integer delta from a constant.
	OpDelta            CodecOpTag = 0x02 // Delta{type}: prefix sum / first-difference stream.
	OpToI64            CodecOpTag = 0x03 // ToI64{type}: widen narrower integer to 64-bit.
	OpPushDataSection  CodecOpTag = 0x04 // PushDataSection{idx}: push an additional section onto the decode stack.
	OpDictLookup       CodecOpTag = 0x05 // DictLookup{type}: index-indirect string decode via a pushed dictionary.
	OpLZ4              CodecOpTag = 0x06 // LZ4{type, lenDecoded}: LZ4 block decompression.
	OpPco              CodecOpTag = 0x07 // Pco{type, lenDecoded, isFP32}: numeric Pco decompression.
	OpUnpackStrings    CodecOpTag = 0x08 // UnpackStrings: length-prefixed concatenated UTF-8 blob decode.
	OpUnhexpackStrings CodecOpTag = 0x09 // UnhexpackStrings{uppercase, totalBytes}: hex-packed string decode.
	OpNullable         CodecOpTag = 0x0A // Nullable: combine a bitvec section with a value section.
	OpRange            CodecOpTag = 0x0B // Range{start,len,step}: degenerate arithmetic-progression pipeline, no data sections.
	OpGorilla          CodecOpTag = 0x0C // Gorilla{type}: XOR-based float compression (Gorilla-style), an alternative to Pco.
)

func (t CodecOpTag) String() string {
	switch t {
	case OpAdd:
		return "Add"
	case OpDelta:
		return "Delta"
	case OpToI64:
		return "ToI64"
	case OpPushDataSection:
		return "PushDataSection"
	case OpDictLookup:
		return "DictLookup"
	case OpLZ4:
		return "LZ4"
	case OpPco:
		return "Pco"
	case OpUnpackStrings:
		return "UnpackStrings"
	case OpUnhexpackStrings:
		return "UnhexpackStrings"
	case OpNullable:
		return "Nullable"
	case OpRange:
		return "Range"
	case OpGorilla:
		return "Gorilla"
	default:
		return "Unknown"
	}
}

const (
	SectionU8       DataSectionTag = 0x01
	SectionU16      DataSectionTag = 0x02
	SectionU32      DataSectionTag = 0x03
	SectionU64      DataSectionTag = 0x04
	SectionI64      DataSectionTag = 0x05
	SectionF64      DataSectionTag = 0x06
	SectionBitvec   DataSectionTag = 0x07
	SectionNull     DataSectionTag = 0x08
	SectionLZ4Blob  DataSectionTag = 0x09
	SectionPcoBlob  DataSectionTag = 0x0A
	SectionStrBlob  DataSectionTag = 0x0B // concatenated/length-prefixed raw string bytes
	SectionHexBlob  DataSectionTag = 0x0C
)

func (t DataSectionTag) String() string {
	switch t {
	case SectionU8:
		return "U8"
	case SectionU16:
		return "U16"
	case SectionU32:
		return "U32"
	case SectionU64:
		return "U64"
	case SectionI64:
		return "I64"
	case SectionF64:
		return "F64"
	case SectionBitvec:
		return "Bitvec"
	case SectionNull:
		return "Null"
	case SectionLZ4Blob:
		return "LZ4Blob"
	case SectionPcoBlob:
		return "PcoBlob"
	case SectionStrBlob:
		return "StrBlob"
	case SectionHexBlob:
		return "HexBlob"
	default:
		return "Unknown"
	}
}

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

const (
	// MetaV0 stored subpartition column names literally.
	MetaV0 MetaVersion = 0
	// MetaV1 interned column names into the string intern table.
	MetaV1 MetaVersion = 1
	// MetaV2 compressed the interned id list.
	MetaV2 MetaVersion = 2
	// MetaV3 stores only the largest column's name and recovers the rest on load.
	MetaV3 MetaVersion = 3

	// CurrentMetaVersion is the version writers emit; loaders must still
	// accept MetaV0 through MetaV3.
	CurrentMetaVersion = MetaV3
)

func (v MetaVersion) String() string {
	switch v {
	case MetaV0:
		return "v0"
	case MetaV1:
		return "v1"
	case MetaV2:
		return "v2"
	case MetaV3:
		return "v3"
	default:
		return "unknown"
	}
}
