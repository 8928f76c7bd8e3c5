package database

import _ "embed"

// Schema is the full library schema, generated from the migrations. Tests
// apply it directly to in-memory databases.
//
//go:embed sqlc/schema.sql
var Schema string
