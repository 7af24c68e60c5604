package codec

import (
	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/format"
)

// Section is one typed stored byte section, as enumerated in spec §3/§6:
// u8/u16/u32/u64/i64/f64/bitvec/null/lz4-blob/pco-blob plus the string blob
// variants. The codec pipeline's ops consume sections in order and produce
// either the next section (for a transform op) or the final execution buffer
// (for a terminal op).
type Section struct {
	Tag   format.DataSectionTag
	Bytes []byte
}

// StoredColumn is the on-disk representation of one column: the wire Column
// of spec §3 — name, length, range metadata, codec pipeline, and the data
// sections the pipeline consumes.
type StoredColumn struct {
	Name  string
	Len   int
	Range column.Range
	Codec []Op
	Data  []Section
}
