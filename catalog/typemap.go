package catalog

import (
	"regexp"
	"strings"

	"github.com/snapql/tyql/sqlcompiler"
	"github.com/snapql/tyql/types"
)

// mapType normalizes a native column type name and maps it to an Atom,
// adapted from pull/type_mapper.go's per-dialect typeMap tables: the
// teacher collapses every integer width to its own TypeInt string, but
// this compiler's Atom set distinguishes widths (spec.md §3), so each
// table below is finer-grained than its source while covering the same
// native type names.
var tinyintBoolRE = regexp.MustCompile(`^tinyint\s*\(\s*1\s*\)`)

func mapType(d sqlcompiler.Dialect, dbType string) types.Atom {
	switch d {
	case sqlcompiler.DialectPostgres:
		return mapPostgresType(dbType)
	case sqlcompiler.DialectMySQL, sqlcompiler.DialectMariaDB:
		return mapMySQLType(dbType)
	case sqlcompiler.DialectSQLite:
		return mapSQLiteType(dbType)
	default:
		return types.AtomUtf8
	}
}

func normalizeTypeName(dbType string) string {
	return strings.ToLower(strings.TrimSpace(dbType))
}

func baseTypeName(normalized string) string {
	if i := strings.Index(normalized, "("); i >= 0 {
		return strings.TrimSpace(normalized[:i])
	}
	return normalized
}

var postgresTypeMap = map[string]types.Atom{
	"integer": types.AtomInt32, "int": types.AtomInt32, "int4": types.AtomInt32, "serial": types.AtomInt32,
	"bigint": types.AtomInt64, "int8": types.AtomInt64, "bigserial": types.AtomInt64,
	"smallint": types.AtomInt16, "int2": types.AtomInt16, "smallserial": types.AtomInt16,

	"text": types.AtomUtf8, "varchar": types.AtomUtf8, "character": types.AtomUtf8, "char": types.AtomUtf8, "bpchar": types.AtomUtf8,
	"uuid": types.AtomUtf8, "inet": types.AtomUtf8, "cidr": types.AtomUtf8, "macaddr": types.AtomUtf8,
	"interval": types.AtomUtf8, "bit": types.AtomUtf8, "varbit": types.AtomUtf8, "json": types.AtomUtf8, "jsonb": types.AtomUtf8,
	"bytea": types.AtomUtf8,

	"numeric": types.AtomFloat64, "decimal": types.AtomFloat64, "double precision": types.AtomFloat64, "float8": types.AtomFloat64, "float": types.AtomFloat64,
	"real": types.AtomFloat32, "float4": types.AtomFloat32,

	"boolean": types.AtomBool, "bool": types.AtomBool,

	"date": types.AtomDate,
	"time": types.AtomTime, "time with time zone": types.AtomTime, "time without time zone": types.AtomTime, "timetz": types.AtomTime,
	"timestamp": types.AtomTimestamp, "timestamp with time zone": types.AtomTimestamp, "timestamp without time zone": types.AtomTimestamp, "timestamptz": types.AtomTimestamp,
}

func mapPostgresType(dbType string) types.Atom {
	normalized := normalizeTypeName(dbType)
	if strings.HasSuffix(normalized, "[]") {
		return types.AtomUtf8
	}
	if a, ok := postgresTypeMap[baseTypeName(normalized)]; ok {
		return a
	}
	if a, ok := postgresTypeMap[normalized]; ok {
		return a
	}
	return types.AtomUtf8
}

var mysqlTypeMap = map[string]types.Atom{
	"tinyint": types.AtomInt8, "smallint": types.AtomInt16, "mediumint": types.AtomInt32,
	"int": types.AtomInt32, "integer": types.AtomInt32, "bigint": types.AtomInt64, "year": types.AtomInt32,

	"varchar": types.AtomUtf8, "char": types.AtomUtf8, "text": types.AtomUtf8, "tinytext": types.AtomUtf8,
	"mediumtext": types.AtomUtf8, "longtext": types.AtomUtf8, "enum": types.AtomUtf8, "set": types.AtomUtf8, "json": types.AtomUtf8,
	"blob": types.AtomUtf8, "tinyblob": types.AtomUtf8, "mediumblob": types.AtomUtf8, "longblob": types.AtomUtf8,
	"binary": types.AtomUtf8, "varbinary": types.AtomUtf8,

	"decimal": types.AtomFloat64, "numeric": types.AtomFloat64, "double": types.AtomFloat64,
	"float": types.AtomFloat32, "real": types.AtomFloat32,

	"boolean": types.AtomBool, "bool": types.AtomBool,

	"date": types.AtomDate, "time": types.AtomTime, "datetime": types.AtomTimestamp, "timestamp": types.AtomTimestamp,
}

func mapMySQLType(dbType string) types.Atom {
	normalized := normalizeTypeName(dbType)
	if tinyintBoolRE.MatchString(normalized) {
		return types.AtomBool
	}
	base := baseTypeName(normalized)
	if strings.Contains(normalized, "unsigned") {
		if fields := strings.Fields(normalized); len(fields) > 0 {
			base = fields[0]
		}
	}
	if a, ok := mysqlTypeMap[base]; ok {
		return a
	}
	if a, ok := mysqlTypeMap[normalized]; ok {
		return a
	}
	return types.AtomUtf8
}

var sqliteTypeMap = map[string]types.Atom{
	"integer": types.AtomInt64, "int": types.AtomInt64, "bigint": types.AtomInt64,
	"smallint": types.AtomInt16, "tinyint": types.AtomInt8,

	"text": types.AtomUtf8, "varchar": types.AtomUtf8, "char": types.AtomUtf8, "character": types.AtomUtf8,
	"clob": types.AtomUtf8, "nchar": types.AtomUtf8, "nvarchar": types.AtomUtf8, "blob": types.AtomUtf8,

	"real": types.AtomFloat64, "double": types.AtomFloat64, "float": types.AtomFloat64,
	"numeric": types.AtomFloat64, "decimal": types.AtomFloat64,

	"boolean": types.AtomBool, "bool": types.AtomBool,

	"date": types.AtomDate, "time": types.AtomTime, "datetime": types.AtomTimestamp, "timestamp": types.AtomTimestamp,
}

// mapSQLiteType follows SQLite's own type-affinity looseness: an empty
// declared type (legal in SQLite) falls back to Utf8, matching
// pull/type_mapper.go's SQLiteTypeMapper default.
func mapSQLiteType(dbType string) types.Atom {
	normalized := normalizeTypeName(dbType)
	if normalized == "" {
		return types.AtomUtf8
	}
	if a, ok := sqliteTypeMap[baseTypeName(normalized)]; ok {
		return a
	}
	if a, ok := sqliteTypeMap[normalized]; ok {
		return a
	}
	return types.AtomUtf8
}
