package exec

import (
	"strconv"
	"strings"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/format"
)

// anyValAt extracts row's value from buf as a type-erased scalar, the
// executor's row-at-a-time escape hatch for group keys and bare (non
// aggregated) select columns.
func anyValAt(buf column.Buffer, row int) column.AnyVal {
	if buf.IsNull(row) {
		return column.AnyVal{Type: format.TypeNull}
	}

	switch b := buf.(type) {
	case *column.Int64Buffer:
		return column.AnyVal{Type: format.TypeInt64, I: b.Values[row]}
	case *column.Uint64Buffer:
		return column.AnyVal{Type: format.TypeUint64, I: int64(b.Values[row])}
	case *column.FloatBuffer:
		return column.AnyVal{Type: format.TypeFloat, F: b.Values[row]}
	case *column.StringBuffer:
		return column.AnyVal{Type: format.TypeString, S: b.Values[row]}
	case *column.MixedBuffer:
		return b.Values[row]
	default:
		return column.AnyVal{Type: format.TypeNull}
	}
}

// groupKey builds the string key identifying row's group, the fused-key hash
// table of spec.md §4.2 simplified to a string concatenation of each group
// column's textual value rather than a packed integer code — correct and
// collision-free (values are length-delimited) but gives up the narrow-code
// density the spec's "fused integer key" wording implies. Revisit with a
// packed uint64/128 key if group-by columns are known to be narrow-coded
// dictionaries at plan time.
func groupKey(cols map[string]column.Buffer, groupBy []string, row int) string {
	if len(groupBy) == 0 {
		return ""
	}

	var b strings.Builder
	for _, name := range groupBy {
		v := anyValAt(cols[name], row)
		b.WriteByte(byte(v.Type))

		switch v.Type {
		case format.TypeFloat:
			b.WriteString(strconv.FormatFloat(v.F, 'b', -1, 64))
		case format.TypeString:
			b.WriteString(strconv.Itoa(len(v.S)))
			b.WriteByte(':')
			b.WriteString(v.S)
		default:
			b.WriteString(strconv.FormatInt(v.I, 10))
		}
		b.WriteByte('\x00')
	}

	return b.String()
}
