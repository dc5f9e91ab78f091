package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"plx/internal/ir"
)

// SQLiteStore persists each project as one row (name, schema version,
// full JSON document) plus one index row per POU (project name, POU
// name, kind) in a single SQLite database file, grounded on the
// teacher's internal/database package's database/sql usage — here
// with modernc.org/sqlite's pure-Go driver so plx never requires cgo
// (§4.9). POUNames lists a project's POUs from the index without
// deserializing the document; loading any POU's IR goes through
// LoadProject, which decodes the whole document.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if absent) a SQLite-backed project
// store at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	schema := `
CREATE TABLE IF NOT EXISTS projects (
	name TEXT PRIMARY KEY,
	schema_version INTEGER NOT NULL,
	document TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pous (
	project_name TEXT NOT NULL,
	pou_name TEXT NOT NULL,
	kind TEXT NOT NULL,
	PRIMARY KEY (project_name, pou_name)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Save upserts proj's summary document and an index row per POU.
func (s *SQLiteStore) Save(proj *ir.Project) error {
	doc, err := Marshal(proj)
	if err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO projects(name, schema_version, document) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET schema_version=excluded.schema_version, document=excluded.document`,
		proj.Name, CurrentSchemaVersion, string(doc),
	); err != nil {
		return fmt.Errorf("store: save project %s: %w", proj.Name, err)
	}
	if _, err := tx.Exec(`DELETE FROM pous WHERE project_name = ?`, proj.Name); err != nil {
		return err
	}
	for _, p := range proj.Pous {
		if _, err := tx.Exec(`INSERT INTO pous(project_name, pou_name, kind) VALUES (?, ?, ?)`,
			proj.Name, p.Name, p.Kind.String()); err != nil {
			return fmt.Errorf("store: index POU %s: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

// LoadProject retrieves the stored Project for a project name, fully
// reconstructed from its JSON document, or an error if none is stored.
func (s *SQLiteStore) LoadProject(name string) (*ir.Project, error) {
	var raw string
	err := s.db.QueryRow(`SELECT document FROM projects WHERE name = ?`, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: no project named %q", name)
	}
	if err != nil {
		return nil, err
	}
	return Unmarshal([]byte(raw))
}

// POUNames lists the indexed POU names for a stored project, without
// deserializing its full document.
func (s *SQLiteStore) POUNames(projectName string) ([]string, error) {
	rows, err := s.db.Query(`SELECT pou_name FROM pous WHERE project_name = ? ORDER BY pou_name`, projectName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
