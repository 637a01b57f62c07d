package sqlcompiler

// FunctionSignature describes how a builtin SQL function's result type is
// derived, consulted by the SQL compiler when a Call node in the SQL AST has
// no corresponding language-side binding (spec.md §4.6, "SQL builtins").
type FunctionSignature struct {
	ReturnType      string // atom name, or "" when ReturnTypeByArg
	ReturnTypeByArg bool   // result type equals the type of the first argument
	Nullable        bool
	NullableByArg   bool // result is nullable iff any argument is nullable
	CastType        bool // result type is the function's first (type) argument, e.g. CAST
}

// FunctionSignatures is the per-dialect builtin function table. Functions
// absent from a dialect's map are not recognized as SQL builtins there; the
// SQL compiler falls through to unbound-name tracking (ir.SQLNames.Unbound).
var FunctionSignatures = map[Dialect]map[string]FunctionSignature{
	DialectPostgres: {
		"LENGTH":        {ReturnType: "number", Nullable: true},
		"COALESCE":      {ReturnTypeByArg: true, NullableByArg: true},
		"CAST":          {CastType: true, NullableByArg: true},
		"UPPER":         {ReturnType: "string", NullableByArg: true},
		"LOWER":         {ReturnType: "string", NullableByArg: true},
		"TRIM":          {ReturnType: "string", NullableByArg: true},
		"NOW":           {ReturnType: "string"},
		"DATE_ADD":      {ReturnType: "string", NullableByArg: true},
		"SUBSTRING":     {ReturnType: "string", NullableByArg: true},
		"ROW_NUMBER":    {ReturnType: "number"},
		"RANK":          {ReturnType: "number"},
		"DENSE_RANK":    {ReturnType: "number"},
		"SUM":           {ReturnType: "number", Nullable: true},
		"AVG":           {ReturnType: "number", Nullable: true},
		"COUNT":         {ReturnType: "number"},
		"MIN":           {ReturnTypeByArg: true, Nullable: true},
		"MAX":           {ReturnTypeByArg: true, Nullable: true},
		"FIRST_VALUE":   {ReturnTypeByArg: true, NullableByArg: true},
		"LAST_VALUE":    {ReturnTypeByArg: true, NullableByArg: true},
		"LEAD":          {ReturnTypeByArg: true, Nullable: true},
		"LAG":           {ReturnTypeByArg: true, Nullable: true},
		"ARRAY":         {ReturnType: "list", NullableByArg: true},
		"UNNEST":        {ReturnTypeByArg: true},
		"JSONB_BUILD_OBJECT": {ReturnType: "json"},
	},
	DialectMySQL: {
		"LENGTH":     {ReturnType: "number", Nullable: true},
		"COALESCE":   {ReturnTypeByArg: true, NullableByArg: true},
		"IFNULL":     {ReturnTypeByArg: true, NullableByArg: true},
		"CAST":       {CastType: true, NullableByArg: true},
		"UPPER":      {ReturnType: "string", NullableByArg: true},
		"LOWER":      {ReturnType: "string", NullableByArg: true},
		"TRIM":       {ReturnType: "string", NullableByArg: true},
		"NOW":        {ReturnType: "string"},
		"DATE_ADD":   {ReturnType: "string", NullableByArg: true},
		"SUBSTRING":  {ReturnType: "string", NullableByArg: true},
		"ROW_NUMBER": {ReturnType: "number"},
		"RANK":       {ReturnType: "number"},
		"DENSE_RANK": {ReturnType: "number"},
		"SUM":        {ReturnType: "number", Nullable: true},
		"AVG":        {ReturnType: "number", Nullable: true},
		"COUNT":      {ReturnType: "number"},
		"MIN":        {ReturnTypeByArg: true, Nullable: true},
		"MAX":        {ReturnTypeByArg: true, Nullable: true},
	},
	DialectSQLite: {
		"LENGTH":     {ReturnType: "number", Nullable: true},
		"COALESCE":   {ReturnTypeByArg: true, NullableByArg: true},
		"IFNULL":     {ReturnTypeByArg: true, NullableByArg: true},
		"CAST":       {CastType: true, NullableByArg: true},
		"UPPER":      {ReturnType: "string", NullableByArg: true},
		"LOWER":      {ReturnType: "string", NullableByArg: true},
		"TRIM":       {ReturnType: "string", NullableByArg: true},
		"SUBSTRING":  {ReturnType: "string", NullableByArg: true},
		"SUM":        {ReturnType: "number", Nullable: true},
		"AVG":        {ReturnType: "number", Nullable: true},
		"COUNT":      {ReturnType: "number"},
		"MIN":        {ReturnTypeByArg: true, Nullable: true},
		"MAX":        {ReturnTypeByArg: true, Nullable: true},
	},
}
