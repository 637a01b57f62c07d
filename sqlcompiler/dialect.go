package sqlcompiler

// Dialect names a target SQL dialect. The SQL compiler's feature table and
// builtin-function table are both keyed by Dialect, matching the teacher's
// dialect.go.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
	DialectMariaDB  Dialect = "mariadb"
)

// Feature is a dialect-specific SQL capability flag consulted when
// rewriting SQL syntax for a target dialect (e.g. whether string
// concatenation uses the `||` operator or a CONCAT() function call).
type Feature int

const (
	FeatureConcat Feature = iota + 1
	FeatureConcatOperator
	FeatureConcatFunction
	FeatureJSON
	FeatureArray
)

// Capabilities records which SQL features each dialect supports.
var Capabilities = map[Dialect]map[Feature]bool{
	DialectPostgres: {
		FeatureConcat:         true,
		FeatureConcatOperator: true,
		FeatureConcatFunction: true,
		FeatureJSON:           true,
		FeatureArray:          true,
	},
	DialectMySQL: {
		FeatureConcat:         true,
		FeatureConcatOperator: false,
		FeatureConcatFunction: true,
		FeatureJSON:           true,
		FeatureArray:          false,
	},
	DialectSQLite: {
		FeatureConcat:         true,
		FeatureConcatOperator: true,
		FeatureConcatFunction: false,
		FeatureJSON:           false,
		FeatureArray:          false,
	},
	DialectMariaDB: {
		FeatureConcat:         true,
		FeatureConcatOperator: false,
		FeatureConcatFunction: true,
		FeatureJSON:           true,
		FeatureArray:          false,
	},
}
