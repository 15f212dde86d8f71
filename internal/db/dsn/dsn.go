// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
)

// Create builds the Data Source Name for the configured gorm engine.
func Create(db config.DB) string {
	switch db.GormEngine {
	case config.EnginePostgres:
		out := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d",
			db.Host,
			db.User,
			db.Password,
			db.Name,
			db.Port,
		)
		if db.Extras != "" {
			out += " " + strings.ReplaceAll(db.Extras, "&", " ")
		}

		return out
	case config.EngineSQLite:
		if db.Extras == "" {
			return db.Name
		}

		return db.Name + "?" + db.Extras
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
			db.Extras,
		)
	}
}
