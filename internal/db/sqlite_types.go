package db

import (
	"strings"

	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/schema"
)

// MapSQLiteType maps a declared SQLite column type to its logical type.
//
// SQLite accepts any declared type, so the rules follow its affinity
// substrings ("int", "char", "blob", ...) after the exact names for
// booleans and dates. An empty declared type has blob affinity.
func MapSQLiteType(col schema.ColumnInformation) (schema.ColumnType, error) {
	raw := strings.ToLower(strings.TrimSpace(col.TypeName))
	base := raw
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}

	var ct schema.ColumnType
	switch {
	case base == "bool" || base == "boolean":
		ct = schema.ColumnType{Kind: schema.KindBool}
	case base == "date":
		ct = schema.ColumnType{Kind: schema.KindDate}
	case base == "time":
		ct = schema.ColumnType{Kind: schema.KindTime}
	case base == "datetime" || base == "timestamp":
		ct = schema.ColumnType{Kind: schema.KindTimestamp}
	case strings.Contains(base, "int"):
		ct = schema.ColumnType{Kind: schema.KindInteger, Width: sqliteIntWidth(base)}
	case strings.Contains(base, "char"), strings.Contains(base, "clob"), strings.Contains(base, "text"):
		ct = schema.ColumnType{Kind: schema.KindText}
	case base == "", strings.Contains(base, "blob"):
		ct = schema.ColumnType{Kind: schema.KindBinary}
	case strings.Contains(base, "doub"), strings.Contains(base, "real"):
		ct = schema.ColumnType{Kind: schema.KindFloat, Width: 64}
	case strings.Contains(base, "floa"):
		ct = schema.ColumnType{Kind: schema.KindFloat, Width: 32}
	case strings.Contains(base, "numeric"), strings.Contains(base, "decimal"):
		ct = schema.ColumnType{Kind: schema.KindNumeric}
	default:
		return schema.ColumnType{}, errs.UnsupportedColumnType(col.TypeName)
	}

	ct.Nullable = col.Nullable
	return ct, nil
}

func sqliteIntWidth(base string) int {
	switch {
	case strings.Contains(base, "tiny"):
		return 8
	case strings.Contains(base, "small"), base == "int2":
		return 16
	case strings.Contains(base, "big"), base == "int8":
		return 64
	default:
		return 32
	}
}
