package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/inferschema/internal/errs"
	"github.com/tordrt/inferschema/internal/schema"
)

func integer(width int) schema.ColumnType {
	return schema.ColumnType{Kind: schema.KindInteger, Width: width}
}

func float(width int) schema.ColumnType {
	return schema.ColumnType{Kind: schema.KindFloat, Width: width}
}

func kind(k schema.Kind) schema.ColumnType {
	return schema.ColumnType{Kind: k}
}

func TestMapPostgresType(t *testing.T) {
	tests := []struct {
		col  schema.ColumnInformation
		want schema.ColumnType
	}{
		{schema.ColumnInformation{TypeName: "int2"}, integer(16)},
		{schema.ColumnInformation{TypeName: "int4"}, integer(32)},
		{schema.ColumnInformation{TypeName: "int8"}, integer(64)},
		{schema.ColumnInformation{TypeName: "float4"}, float(32)},
		{schema.ColumnInformation{TypeName: "float8"}, float(64)},
		{schema.ColumnInformation{TypeName: "numeric"}, kind(schema.KindNumeric)},
		{schema.ColumnInformation{TypeName: "varchar"}, kind(schema.KindText)},
		{schema.ColumnInformation{TypeName: "bpchar"}, kind(schema.KindText)},
		{schema.ColumnInformation{TypeName: "text", Nullable: true},
			schema.ColumnType{Kind: schema.KindText, Nullable: true}},
		{schema.ColumnInformation{TypeName: "bytea"}, kind(schema.KindBinary)},
		{schema.ColumnInformation{TypeName: "bool"}, kind(schema.KindBool)},
		{schema.ColumnInformation{TypeName: "date"}, kind(schema.KindDate)},
		{schema.ColumnInformation{TypeName: "timetz"}, kind(schema.KindTime)},
		{schema.ColumnInformation{TypeName: "timestamp"}, kind(schema.KindTimestamp)},
		{schema.ColumnInformation{TypeName: "timestamptz"}, kind(schema.KindTimestamptz)},
		{schema.ColumnInformation{TypeName: "uuid"}, kind(schema.KindUUID)},
		{schema.ColumnInformation{TypeName: "jsonb"}, kind(schema.KindJSON)},
		{schema.ColumnInformation{TypeName: "_int4"},
			schema.ColumnType{Kind: schema.KindInteger, Width: 32, Array: true}},
		{schema.ColumnInformation{TypeName: "_text", Nullable: true},
			schema.ColumnType{Kind: schema.KindText, Array: true, Nullable: true}},
		{schema.ColumnInformation{TypeName: "mood", UserDefined: true},
			schema.ColumnType{Kind: schema.KindCustom, Name: "mood"}},
		{schema.ColumnInformation{TypeName: "_mood", UserDefined: true},
			schema.ColumnType{Kind: schema.KindCustom, Name: "mood", Array: true}},
	}

	for _, tt := range tests {
		t.Run(tt.col.TypeName, func(t *testing.T) {
			got, err := MapPostgresType(tt.col)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapMySQLType(t *testing.T) {
	tests := []struct {
		col  schema.ColumnInformation
		want schema.ColumnType
	}{
		{schema.ColumnInformation{TypeName: "tinyint(1)"}, kind(schema.KindBool)},
		{schema.ColumnInformation{TypeName: "tinyint(4)"}, integer(8)},
		{schema.ColumnInformation{TypeName: "smallint(6)"}, integer(16)},
		{schema.ColumnInformation{TypeName: "int(11)"}, integer(32)},
		{schema.ColumnInformation{TypeName: "int"}, integer(32)},
		{schema.ColumnInformation{TypeName: "int(10) unsigned"},
			schema.ColumnType{Kind: schema.KindInteger, Width: 32, Unsigned: true}},
		{schema.ColumnInformation{TypeName: "bigint unsigned"},
			schema.ColumnType{Kind: schema.KindInteger, Width: 64, Unsigned: true}},
		{schema.ColumnInformation{TypeName: "float"}, float(32)},
		{schema.ColumnInformation{TypeName: "double"}, float(64)},
		{schema.ColumnInformation{TypeName: "decimal(10,2)"}, kind(schema.KindNumeric)},
		{schema.ColumnInformation{TypeName: "varchar(255)", Nullable: true},
			schema.ColumnType{Kind: schema.KindText, Nullable: true}},
		{schema.ColumnInformation{TypeName: "longtext"}, kind(schema.KindText)},
		{schema.ColumnInformation{TypeName: "enum('a','b')"}, kind(schema.KindText)},
		{schema.ColumnInformation{TypeName: "varbinary(16)"}, kind(schema.KindBinary)},
		{schema.ColumnInformation{TypeName: "blob"}, kind(schema.KindBinary)},
		{schema.ColumnInformation{TypeName: "bit(1)"}, kind(schema.KindBool)},
		{schema.ColumnInformation{TypeName: "date"}, kind(schema.KindDate)},
		{schema.ColumnInformation{TypeName: "time(3)"}, kind(schema.KindTime)},
		{schema.ColumnInformation{TypeName: "datetime(6)"}, kind(schema.KindTimestamp)},
		{schema.ColumnInformation{TypeName: "TIMESTAMP"}, kind(schema.KindTimestamp)},
		{schema.ColumnInformation{TypeName: "json"}, kind(schema.KindJSON)},
	}

	for _, tt := range tests {
		t.Run(tt.col.TypeName, func(t *testing.T) {
			got, err := MapMySQLType(tt.col)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapSQLiteType(t *testing.T) {
	tests := []struct {
		col  schema.ColumnInformation
		want schema.ColumnType
	}{
		{schema.ColumnInformation{TypeName: "INTEGER"}, integer(32)},
		{schema.ColumnInformation{TypeName: "tinyint"}, integer(8)},
		{schema.ColumnInformation{TypeName: "SMALLINT"}, integer(16)},
		{schema.ColumnInformation{TypeName: "BIGINT"}, integer(64)},
		{schema.ColumnInformation{TypeName: "TEXT", Nullable: true},
			schema.ColumnType{Kind: schema.KindText, Nullable: true}},
		{schema.ColumnInformation{TypeName: "VARCHAR(40)"}, kind(schema.KindText)},
		{schema.ColumnInformation{TypeName: "CLOB"}, kind(schema.KindText)},
		{schema.ColumnInformation{TypeName: "BLOB"}, kind(schema.KindBinary)},
		{schema.ColumnInformation{TypeName: ""}, kind(schema.KindBinary)},
		{schema.ColumnInformation{TypeName: "BOOLEAN"}, kind(schema.KindBool)},
		{schema.ColumnInformation{TypeName: "REAL"}, float(64)},
		{schema.ColumnInformation{TypeName: "DOUBLE PRECISION"}, float(64)},
		{schema.ColumnInformation{TypeName: "FLOAT"}, float(32)},
		{schema.ColumnInformation{TypeName: "NUMERIC(10,2)"}, kind(schema.KindNumeric)},
		{schema.ColumnInformation{TypeName: "DATE"}, kind(schema.KindDate)},
		{schema.ColumnInformation{TypeName: "TIME"}, kind(schema.KindTime)},
		{schema.ColumnInformation{TypeName: "DATETIME"}, kind(schema.KindTimestamp)},
		{schema.ColumnInformation{TypeName: "timestamp"}, kind(schema.KindTimestamp)},
	}

	for _, tt := range tests {
		t.Run(tt.col.TypeName, func(t *testing.T) {
			got, err := MapSQLiteType(tt.col)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapType_Unsupported(t *testing.T) {
	mappers := map[string]func(schema.ColumnInformation) (schema.ColumnType, error){
		"postgres": MapPostgresType,
		"mysql":    MapMySQLType,
		"sqlite":   MapSQLiteType,
	}
	raw := map[string]string{
		"postgres": "geometry",
		"mysql":    "geometry",
		"sqlite":   "geometry",
	}

	for name, mapper := range mappers {
		t.Run(name, func(t *testing.T) {
			_, err := mapper(schema.ColumnInformation{Name: "shape", TypeName: raw[name]})
			require.Error(t, err)
			assert.True(t, errs.IsUnsupportedColumnType(err))

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, raw[name], e.RawType)
		})
	}
}

func TestMapType_Deterministic(t *testing.T) {
	cols := []schema.ColumnInformation{
		{TypeName: "_int8", Nullable: true},
		{TypeName: "int(10) unsigned"},
		{TypeName: "VARCHAR(10)"},
	}
	mappers := []func(schema.ColumnInformation) (schema.ColumnType, error){
		MapPostgresType, MapMySQLType, MapSQLiteType,
	}

	for i, mapper := range mappers {
		first, err1 := mapper(cols[i])
		second, err2 := mapper(cols[i])
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, first, second)
	}
}
