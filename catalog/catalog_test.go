package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snapql/tyql/sqlcompiler"
	"github.com/snapql/tyql/types"
)

func TestMapTypePostgres(t *testing.T) {
	cases := []struct {
		dbType string
		want   types.Atom
	}{
		{"integer", types.AtomInt32},
		{"bigint", types.AtomInt64},
		{"smallint", types.AtomInt16},
		{"varchar(255)", types.AtomUtf8},
		{"numeric(10,2)", types.AtomFloat64},
		{"timestamp with time zone", types.AtomTimestamp},
		{"boolean", types.AtomBool},
		{"text[]", types.AtomUtf8},
		{"something_unknown", types.AtomUtf8},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, mapType(sqlcompiler.DialectPostgres, c.dbType), c.dbType)
	}
}

func TestMapTypeMySQLTinyintOne(t *testing.T) {
	assert.Equal(t, types.AtomBool, mapType(sqlcompiler.DialectMySQL, "tinyint(1)"))
	assert.Equal(t, types.AtomInt8, mapType(sqlcompiler.DialectMySQL, "tinyint(4)"))
	assert.Equal(t, types.AtomInt32, mapType(sqlcompiler.DialectMySQL, "int unsigned"))
}

func TestMapTypeSQLiteEmptyDeclaredType(t *testing.T) {
	assert.Equal(t, types.AtomUtf8, mapType(sqlcompiler.DialectSQLite, ""))
	assert.Equal(t, types.AtomInt64, mapType(sqlcompiler.DialectSQLite, "INTEGER"))
}

func TestIsSafeIdentifier(t *testing.T) {
	assert.True(t, isSafeIdentifier("users"))
	assert.True(t, isSafeIdentifier("user_posts_2"))
	assert.False(t, isSafeIdentifier(""))
	assert.False(t, isSafeIdentifier(`users"; DROP TABLE users; --`))
	assert.False(t, isSafeIdentifier("users table"))
}

func TestSplitPath(t *testing.T) {
	schema, table, err := splitPath("public", []string{"users"})
	assert.NoError(t, err)
	assert.Equal(t, "public", schema)
	assert.Equal(t, "users", table)

	schema, table, err = splitPath("public", []string{"app", "users"})
	assert.NoError(t, err)
	assert.Equal(t, "app", schema)
	assert.Equal(t, "users", table)

	_, _, err = splitPath("public", []string{"a", "b", "c"})
	assert.Error(t, err)
}
