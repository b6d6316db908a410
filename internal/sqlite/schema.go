// Package sqlite implements the durable snapshot store on SQLite.
package sqlite

// Schema DDL. Statements are idempotent so an existing database keeps its
// snapshots across restarts.
const (
	createSnapshots = `CREATE TABLE IF NOT EXISTS snapshots (
    collection TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// schemaDDL lists all statements run by Attach, in order.
var schemaDDL = []string{
	createSnapshots,
}

const (
	selectSnapshot = `SELECT payload FROM snapshots WHERE collection = ?`

	upsertSnapshot = `INSERT INTO snapshots (collection, payload, row_count, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(collection) DO UPDATE SET
    payload = excluded.payload,
    row_count = excluded.row_count,
    updated_at = excluded.updated_at`
)
