// Command tools dumps the library schema produced by the embedded
// migrations, for sqlc and for tests that skip migrating.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	"icut-go/internal/database"
	"icut-go/internal/database/migrations"
)

const header = `-- Generated from internal/database/migrations/files by
-- 'go generate ./internal/database'. Edit the migrations instead.
-- Schema version: %d

`

func main() {
	out := flag.String("out", "internal/database/sqlc/schema.sql", "schema file to write")
	flag.Parse()

	if err := run(*out); err != nil {
		fmt.Fprintf(os.Stderr, "generate schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

func run(out string) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := migrations.Up(db)
	if err != nil {
		return err
	}
	stmts, err := schemaStatements(db)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, header, version)
	for _, stmt := range stmts {
		b.WriteString(stmt)
		b.WriteString(";\n\n")
	}
	return os.WriteFile(out, []byte(b.String()), 0644)
}

// schemaStatements lists the CREATE statements of the library's tables,
// then indexes and triggers. SQLite internals and migrate's bookkeeping
// table are left out.
func schemaStatements(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT sql FROM sqlite_master
		WHERE sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY CASE type WHEN 'table' THEN 0 WHEN 'index' THEN 1 ELSE 2 END, name`)
	if err != nil {
		return nil, fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return nil, fmt.Errorf("scanning statement: %w", err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, rows.Err()
}
