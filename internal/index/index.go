// Package index provides read-only queries over a snapshot of the project
// mapping. The backing JSON file stays the source of truth; the snapshot is
// loaded into an in-memory SQLite database and discarded after use.
package index

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/relmap/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// timeKeyLayout renders UTC instants as fixed-width text, so string order is
// time order for every four-digit year.
const timeKeyLayout = "2006-01-02T15:04:05.000000000Z"

func timeKey(t time.Time) string {
	return t.UTC().Format(timeKeyLayout)
}

// fold lowers s with Unicode case mapping. SQLite's lower() only maps ASCII.
func fold(s string) string {
	return strings.ToLower(s)
}

// Index answers filtered, ordered queries over a loaded snapshot.
type Index struct {
	db *sql.DB
}

// Open creates an in-memory index and loads projects into it in a single
// transaction. Projects whose AddedDate does not parse are kept but never
// match a date bound.
func Open(ctx context.Context, projects types.Projects) (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}
	if err := load(ctx, db, projects); err != nil {
		db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func load(ctx context.Context, db *sql.DB, projects types.Projects) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO projects (project_id, name, name_folded, directory, added_date, added_key) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for id, p := range projects {
		var addedKey any
		if t, err := p.AddedTime(); err == nil {
			addedKey = timeKey(t)
		}
		if _, err := stmt.ExecContext(ctx, id, p.Name, fold(p.Name), p.Directory, p.AddedDate, addedKey); err != nil {
			return fmt.Errorf("inserting project %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// Close releases the database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Count returns the number of indexed projects.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting projects: %w", err)
	}
	return n, nil
}

// Search returns the projects matching filter. Returns ErrInvalidFilter if
// the filter fails validation.
func (ix *Index) Search(ctx context.Context, filter types.Filter) ([]types.Project, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := "SELECT project_id, name, directory, added_date FROM projects"
	var conditions []string
	var args []any

	if filter.NameContains != "" {
		conditions = append(conditions, "instr(name_folded, ?) > 0")
		args = append(args, fold(filter.NameContains))
	}
	if filter.DirectoryPrefix != "" {
		conditions = append(conditions, "substr(directory, 1, length(?)) = ?")
		args = append(args, filter.DirectoryPrefix, filter.DirectoryPrefix)
	}
	if !filter.AddedAfter.IsZero() {
		conditions = append(conditions, "added_key >= ?")
		args = append(args, timeKey(filter.AddedAfter))
	}
	if !filter.AddedBefore.IsZero() {
		conditions = append(conditions, "added_key < ?")
		args = append(args, timeKey(filter.AddedBefore))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + orderClause(filter.OrderBy, filter.Descending)

	switch {
	case filter.Limit > 0:
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	case filter.Offset > 0:
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
	}

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	defer rows.Close()

	results := []types.Project{}
	for rows.Next() {
		var p types.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Directory, &p.AddedDate); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// orderClause builds a deterministic ORDER BY. Unparseable dates sort last
// in both directions; project_id breaks ties.
func orderClause(orderBy string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch orderBy {
	case types.OrderByName:
		return fmt.Sprintf("name_folded %s, project_id %s", dir, dir)
	case types.OrderByDirectory:
		return fmt.Sprintf("directory %s, project_id %s", dir, dir)
	default:
		return fmt.Sprintf("added_key IS NULL, added_key %s, project_id %s", dir, dir)
	}
}
