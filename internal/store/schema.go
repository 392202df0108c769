package store

// schemaVersion is the highest schema_version this binary understands.
// migrate() refuses to open a database stamped with a higher version.
const schemaVersion = 2

// schemaStatements are applied, in order, against a freshly created
// (version 0) database, producing schema v1. Later schema changes are
// expressed as numbered migration steps in migrate.go, not by editing
// these statements.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS node (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		serialized_name TEXT NOT NULL,
		qualified_name TEXT NOT NULL DEFAULT '',
		canonical_id TEXT NOT NULL DEFAULT '',
		file_node_id INTEGER,
		start_line INTEGER NOT NULL DEFAULT 0,
		start_col INTEGER NOT NULL DEFAULT 0,
		end_line INTEGER NOT NULL DEFAULT 0,
		end_col INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_node_kind_serialized_name ON node(kind, serialized_name)`,
	`CREATE INDEX IF NOT EXISTS idx_node_qualified_name ON node(qualified_name)`,
	`CREATE INDEX IF NOT EXISTS idx_node_file_node_id ON node(file_node_id)`,

	`CREATE TABLE IF NOT EXISTS edge (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		source_id INTEGER NOT NULL,
		target_id INTEGER NOT NULL,
		resolved_source_id INTEGER,
		resolved_target_id INTEGER,
		file_node_id INTEGER,
		line INTEGER NOT NULL DEFAULT 0,
		confidence REAL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_edge_kind_resolved_target ON edge(kind, resolved_target_id)`,
	`CREATE INDEX IF NOT EXISTS idx_edge_source_id ON edge(source_id)`,
	`CREATE INDEX IF NOT EXISTS idx_edge_file_node_id ON edge(file_node_id)`,

	`CREATE TABLE IF NOT EXISTS occurrence (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		element_id INTEGER NOT NULL,
		file_node_id INTEGER NOT NULL,
		start_line INTEGER NOT NULL,
		start_col INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		end_col INTEGER NOT NULL,
		kind TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_occurrence_unique
		ON occurrence(element_id, file_node_id, start_line, start_col, end_line, end_col)`,

	`CREATE TABLE IF NOT EXISTS file (
		id INTEGER PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		language TEXT NOT NULL DEFAULT '',
		modification_time INTEGER NOT NULL DEFAULT 0,
		content_hash TEXT NOT NULL DEFAULT '',
		indexed INTEGER NOT NULL DEFAULT 0,
		complete INTEGER NOT NULL DEFAULT 0,
		line_count INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (id) REFERENCES node(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_file_path ON file(path)`,

	// local_symbol holds local variable/parameter bindings scoped within a
	// function body: names the extractor sees but never promotes to a
	// full graph node, kept for "find references within this function"
	// style lookups without polluting node/edge candidate resolution.
	`CREATE TABLE IF NOT EXISTS local_symbol (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_node_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		start_line INTEGER NOT NULL,
		start_col INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		end_col INTEGER NOT NULL,
		FOREIGN KEY (owner_node_id) REFERENCES node(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_local_symbol_owner ON local_symbol(owner_node_id)`,

	// component_access is a UI access-log passthrough: which node the UI
	// last opened/viewed, for a "recently viewed" panel.
	`CREATE TABLE IF NOT EXISTS component_access (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		node_id INTEGER NOT NULL,
		component TEXT NOT NULL,
		accessed_at INTEGER NOT NULL,
		FOREIGN KEY (node_id) REFERENCES node(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_component_access_node ON component_access(node_id)`,

	`CREATE TABLE IF NOT EXISTS error (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id INTEGER NOT NULL,
		line INTEGER NOT NULL DEFAULT 0,
		col INTEGER NOT NULL DEFAULT 0,
		message TEXT NOT NULL,
		fatal INTEGER NOT NULL DEFAULT 0,
		indexed_during_step TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (file_id) REFERENCES file(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_error_file_id ON error(file_id)`,

	// bookmark_category/bookmark_node back the UI's bookmark panel: named
	// groups of pinned nodes with a free-text note per pin.
	`CREATE TABLE IF NOT EXISTS bookmark_category (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS bookmark_node (
		category_id INTEGER NOT NULL,
		node_id INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (category_id, node_id),
		FOREIGN KEY (category_id) REFERENCES bookmark_category(id) ON DELETE CASCADE,
		FOREIGN KEY (node_id) REFERENCES node(id) ON DELETE CASCADE
	)`,
}
