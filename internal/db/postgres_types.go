package db

import (
	"strings"

	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/schema"
)

// pgTypes maps PostgreSQL udt_name values to logical types
var pgTypes = map[string]schema.ColumnType{
	"int2":        {Kind: schema.KindInteger, Width: 16},
	"int4":        {Kind: schema.KindInteger, Width: 32},
	"int8":        {Kind: schema.KindInteger, Width: 64},
	"oid":         {Kind: schema.KindInteger, Width: 32, Unsigned: true},
	"float4":      {Kind: schema.KindFloat, Width: 32},
	"float8":      {Kind: schema.KindFloat, Width: 64},
	"numeric":     {Kind: schema.KindNumeric},
	"money":       {Kind: schema.KindNumeric},
	"text":        {Kind: schema.KindText},
	"varchar":     {Kind: schema.KindText},
	"bpchar":      {Kind: schema.KindText},
	"char":        {Kind: schema.KindText},
	"name":        {Kind: schema.KindText},
	"citext":      {Kind: schema.KindText},
	"bytea":       {Kind: schema.KindBinary},
	"bool":        {Kind: schema.KindBool},
	"date":        {Kind: schema.KindDate},
	"time":        {Kind: schema.KindTime},
	"timetz":      {Kind: schema.KindTime},
	"timestamp":   {Kind: schema.KindTimestamp},
	"timestamptz": {Kind: schema.KindTimestamptz},
	"uuid":        {Kind: schema.KindUUID},
	"json":        {Kind: schema.KindJSON},
	"jsonb":       {Kind: schema.KindJSON},
}

// MapPostgresType maps a PostgreSQL column to its logical type.
// Array columns carry the element's udt_name prefixed with an underscore.
func MapPostgresType(col schema.ColumnInformation) (schema.ColumnType, error) {
	name := col.TypeName
	isArray := false
	if strings.HasPrefix(name, "_") {
		isArray = true
		name = name[1:]
	}

	var ct schema.ColumnType
	switch t, ok := pgTypes[name]; {
	case col.UserDefined && name != "":
		ct = schema.ColumnType{Kind: schema.KindCustom, Name: name}
	case ok:
		ct = t
	default:
		return schema.ColumnType{}, errs.UnsupportedColumnType(col.TypeName)
	}

	ct.Array = isArray
	ct.Nullable = col.Nullable
	return ct, nil
}
