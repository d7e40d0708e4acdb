package sqlite

import (
	"database/sql/driver"

	"golang.org/x/text/cases"
	msqlite "modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode case-folding function.
// SQLite's own LOWER only folds ASCII.
const foldFunc = "mufti_fold"

func init() {
	msqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, foldValue)
}

// foldCase applies full Unicode case folding. A Caser is stateful, so each
// call gets its own.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

func foldValue(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return foldCase(v), nil
	case []byte:
		return foldCase(string(v)), nil
	case nil:
		return "", nil
	default:
		return v, nil
	}
}
