package storage

// dropStatements and createStatements run inside the same transaction
// during a schema recreate, so a mid-bootstrap crash never leaves a
// half-dropped database — the version row is only (re)written after
// every table exists.
var dropStatements = []string{
	`DROP TABLE IF EXISTS items`,
	`DROP TABLE IF EXISTS files`,
	`DROP TABLE IF EXISTS directories`,
	`DROP TABLE IF EXISTS tasks`,
	`DROP TABLE IF EXISTS config`,
}

var createStatements = []string{
	`CREATE TABLE config (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE directories (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		path          TEXT NOT NULL UNIQUE,
		modified_time TEXT NOT NULL
	)`,
	`CREATE INDEX idx_directories_name ON directories(name)`,
	`CREATE TABLE files (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		directory_id  INTEGER NOT NULL,
		name          TEXT NOT NULL,
		modified_time TEXT NOT NULL,
		UNIQUE(directory_id, name)
	)`,
	`CREATE INDEX idx_files_name ON files(name)`,
	`CREATE TABLE items (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id INTEGER NOT NULL,
		content TEXT NOT NULL
	)`,
	`CREATE INDEX idx_items_file_id ON items(file_id)`,
	`CREATE TABLE tasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		path_type  TEXT NOT NULL,
		path       TEXT NOT NULL,
		task_type  TEXT NOT NULL,
		status     TEXT NOT NULL,
		worker     TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(path_type, path)
	)`,
	`CREATE INDEX idx_tasks_status ON tasks(status)`,
}

// defaultExtensionWhitelist is the seeded category tree from the
// configuration surface: document, data, and image categories covering
// the plain-text, office, PDF and image extensions of the content-extractor
// registry. The html/htm extensions of its supplemental HTML reader are
// not listed.
const defaultExtensionWhitelist = `{
	"label": "root",
	"is_extension": false,
	"children": [
		{"label": "Documents", "is_extension": false, "children": [
			{"label": "txt", "is_extension": true, "enabled": true},
			{"label": "md", "is_extension": true, "enabled": true},
			{"label": "markdown", "is_extension": true, "enabled": true},
			{"label": "docx", "is_extension": true, "enabled": true},
			{"label": "pptx", "is_extension": true, "enabled": true},
			{"label": "pdf", "is_extension": true, "enabled": true}
		]},
		{"label": "Data", "is_extension": false, "children": [
			{"label": "xlsx", "is_extension": true, "enabled": true}
		]},
		{"label": "Images", "is_extension": false, "children": [
			{"label": "jpg", "is_extension": true, "enabled": true},
			{"label": "jpeg", "is_extension": true, "enabled": true},
			{"label": "png", "is_extension": true, "enabled": true},
			{"label": "tif", "is_extension": true, "enabled": true},
			{"label": "tiff", "is_extension": true, "enabled": true},
			{"label": "gif", "is_extension": true, "enabled": true},
			{"label": "webp", "is_extension": true, "enabled": true}
		]}
	]
}`

var seedConfig = map[string]string{
	"db_version":         schemaVersion,
	"IndexDirPaths":      `[]`,
	"ExtensionWhitelist": defaultExtensionWhitelist,
}
