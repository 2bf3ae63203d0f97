package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notification_snapshot (
	id                 INTEGER PRIMARY KEY,
	type               TEXT NOT NULL DEFAULT '',
	title              TEXT NOT NULL DEFAULT '',
	message            TEXT NOT NULL DEFAULT '',
	is_read            INTEGER NOT NULL DEFAULT 0,
	related_object_id  INTEGER NOT NULL DEFAULT 0,
	created_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS email_drafts (
	id          TEXT PRIMARY KEY,
	recipient   TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}
