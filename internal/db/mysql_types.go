package db

import (
	"strings"

	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/schema"
)

var mysqlTypes = map[string]schema.ColumnType{
	"tinyint":    {Kind: schema.KindInteger, Width: 8},
	"smallint":   {Kind: schema.KindInteger, Width: 16},
	"mediumint":  {Kind: schema.KindInteger, Width: 32},
	"int":        {Kind: schema.KindInteger, Width: 32},
	"integer":    {Kind: schema.KindInteger, Width: 32},
	"bigint":     {Kind: schema.KindInteger, Width: 64},
	"year":       {Kind: schema.KindInteger, Width: 16},
	"float":      {Kind: schema.KindFloat, Width: 32},
	"double":     {Kind: schema.KindFloat, Width: 64},
	"real":       {Kind: schema.KindFloat, Width: 64},
	"decimal":    {Kind: schema.KindNumeric},
	"numeric":    {Kind: schema.KindNumeric},
	"char":       {Kind: schema.KindText},
	"varchar":    {Kind: schema.KindText},
	"tinytext":   {Kind: schema.KindText},
	"text":       {Kind: schema.KindText},
	"mediumtext": {Kind: schema.KindText},
	"longtext":   {Kind: schema.KindText},
	"enum":       {Kind: schema.KindText},
	"set":        {Kind: schema.KindText},
	"binary":     {Kind: schema.KindBinary},
	"varbinary":  {Kind: schema.KindBinary},
	"tinyblob":   {Kind: schema.KindBinary},
	"blob":       {Kind: schema.KindBinary},
	"mediumblob": {Kind: schema.KindBinary},
	"longblob":   {Kind: schema.KindBinary},
	"bool":       {Kind: schema.KindBool},
	"boolean":    {Kind: schema.KindBool},
	"date":       {Kind: schema.KindDate},
	"time":       {Kind: schema.KindTime},
	"datetime":   {Kind: schema.KindTimestamp},
	"timestamp":  {Kind: schema.KindTimestamp},
	"json":       {Kind: schema.KindJSON},
}

// MapMySQLType maps a MySQL column_type such as "int(11) unsigned",
// "tinyint(1)" or "varchar(255)" to its logical type.
func MapMySQLType(col schema.ColumnInformation) (schema.ColumnType, error) {
	raw := strings.ToLower(strings.TrimSpace(col.TypeName))

	base, args := raw, ""
	if i := strings.IndexByte(raw, '('); i >= 0 {
		base = raw[:i]
		if j := strings.IndexByte(raw[i:], ')'); j >= 0 {
			args = raw[i+1 : i+j]
		}
	}
	fields := strings.Fields(base)
	if len(fields) > 0 {
		base = fields[0]
	}
	unsigned := strings.Contains(raw, " unsigned")

	var ct schema.ColumnType
	switch {
	// MySQL reports BOOLEAN columns as tinyint(1) and BIT(1) is a flag
	case (base == "tinyint" && args == "1") || (base == "bit" && args == "1"):
		ct = schema.ColumnType{Kind: schema.KindBool}
	case base == "bit":
		ct = schema.ColumnType{Kind: schema.KindBinary}
	default:
		t, ok := mysqlTypes[base]
		if !ok {
			return schema.ColumnType{}, errs.UnsupportedColumnType(col.TypeName)
		}
		ct = t
		if ct.Kind == schema.KindInteger {
			ct.Unsigned = unsigned
		}
	}

	ct.Nullable = col.Nullable
	return ct, nil
}
