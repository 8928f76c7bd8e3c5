package database

// sqlc/schema.sql is derived from the migrations and feeds both sqlc and
// the in-memory test databases. Regenerate both with:
//   go generate ./internal/database

//go:generate sh -c "cd ../.. && go run ./internal/database/tools -out internal/database/sqlc/schema.sql"
//go:generate sh -c "cd ../.. && sqlc generate -f internal/database/sqlc/sqlc.yaml"
