package telemetry

import (
	"strings"

	"gorm.io/gorm"
)

// registerAround installs before/after hooks on every GORM callback chain.
// after receives the SQL verb of the chain, or the detected verb for Row and Raw.
func registerAround(db *gorm.DB, prefix string, before func(*gorm.DB), after func(db *gorm.DB, operation string)) error {
	cb := db.Callback()
	afterOp := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if op == "" {
				after(tx, detectOperationType(tx.Statement.SQL.String()))
				return
			}
			after(tx, op)
		}
	}

	steps := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register(prefix+":before_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register(prefix+":before_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register(prefix+":before_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before) },
		func() error { return cb.Row().Before("gorm:row").Register(prefix+":before_row", before) },
		func() error { return cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before) },
		func() error {
			return cb.Create().After("gorm:create").Register(prefix+":after_create", afterOp("INSERT"))
		},
		func() error { return cb.Query().After("gorm:query").Register(prefix+":after_query", afterOp("SELECT")) },
		func() error {
			return cb.Update().After("gorm:update").Register(prefix+":after_update", afterOp("UPDATE"))
		},
		func() error {
			return cb.Delete().After("gorm:delete").Register(prefix+":after_delete", afterOp("DELETE"))
		},
		func() error { return cb.Row().After("gorm:row").Register(prefix+":after_row", afterOp("")) },
		func() error { return cb.Raw().After("gorm:raw").Register(prefix+":after_raw", afterOp("")) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// detectOperationType derives the SQL verb from a raw statement
func detectOperationType(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, verb) {
			return verb
		}
	}
	return "OTHER"
}
