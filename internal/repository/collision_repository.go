package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/collision-records-go/internal/database"
	"github.com/jengzang/collision-records-go/internal/table"
)

// EnrichedTable is the SQLite table holding the latest enriched collisions
const EnrichedTable = "enriched_collisions"

// columnsTable maps the positional columns of EnrichedTable back to table column names
const columnsTable = "enriched_columns"

// maxVariables stays below SQLite's default host parameter limit
const maxVariables = 32000

// CollisionRepository stores enriched collision tables
type CollisionRepository struct {
	db        *sql.DB
	batchSize int
}

// NewCollisionRepository creates a repository that inserts batchSize rows per statement
func NewCollisionRepository(db *sql.DB, batchSize int) *CollisionRepository {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &CollisionRepository{db: db, batchSize: batchSize}
}

// ReplaceEnriched drops and recreates the enriched table with one TEXT column per
// table column, then inserts every row in one transaction. Missing cells become NULL.
// SQLite column names ignore case while table columns do not, so columns are stored
// positionally as c0..cN and their names are kept in enriched_columns.
func (r *CollisionRepository) ReplaceEnriched(t *table.Table) (int, error) {
	columns := t.Columns()
	if len(columns) == 0 {
		return 0, fmt.Errorf("table %s has no columns", t.Name())
	}

	names := make([]string, len(columns))
	defs := make([]string, len(columns))
	for i := range columns {
		names[i] = positionalColumn(i)
		defs[i] = names[i] + " TEXT"
	}

	batch := r.batchSize
	if perStmt := maxVariables / len(columns); batch > perStmt {
		batch = perStmt
	}

	inserted := 0
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(EnrichedTable)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", EnrichedTable, err)
		}
		create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(EnrichedTable), strings.Join(defs, ", "))
		if _, err := tx.Exec(create); err != nil {
			return fmt.Errorf("failed to create %s: %w", EnrichedTable, err)
		}

		if _, err := tx.Exec("DELETE FROM " + columnsTable); err != nil {
			return fmt.Errorf("failed to clear %s: %w", columnsTable, err)
		}
		for i, c := range columns {
			if _, err := tx.Exec("INSERT INTO "+columnsTable+" (position, name) VALUES (?, ?)", i, c); err != nil {
				return fmt.Errorf("failed to record column %q: %w", c, err)
			}
		}

		rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
		prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", quoteIdent(EnrichedTable), strings.Join(names, ", "))

		for start := 0; start < t.Len(); start += batch {
			end := start + batch
			if end > t.Len() {
				end = t.Len()
			}

			placeholders := make([]string, 0, end-start)
			args := make([]interface{}, 0, (end-start)*len(columns))
			for i := start; i < end; i++ {
				placeholders = append(placeholders, rowPlaceholder)
				for _, v := range t.Row(i) {
					if v.Missing {
						args = append(args, nil)
					} else {
						args = append(args, v.Raw)
					}
				}
			}

			if _, err := tx.Exec(prefix+strings.Join(placeholders, ", "), args...); err != nil {
				return fmt.Errorf("failed to insert rows %d-%d: %w", start, end-1, err)
			}
			inserted += end - start
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// LoadEnriched reads the stored enriched table back, NULL cells as missing
func (r *CollisionRepository) LoadEnriched() (*table.Table, error) {
	columns, err := r.enrichedColumns()
	if err != nil {
		return nil, err
	}
	t, err := table.New(EnrichedTable, columns...)
	if err != nil {
		return nil, err
	}

	selected := make([]string, len(columns))
	for i := range columns {
		selected[i] = positionalColumn(i)
	}
	rows, err := r.db.Query(fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(selected, ", "), quoteIdent(EnrichedTable)))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", EnrichedTable, err)
	}
	defer rows.Close()

	cells := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]table.Value, len(columns))
		for i, c := range cells {
			if c.Valid {
				row[i] = table.Text(c.String)
			} else {
				row[i] = table.Missing()
			}
		}
		if err := t.AddRow(row); err != nil {
			return nil, err
		}
	}
	return t, rows.Err()
}

func (r *CollisionRepository) enrichedColumns() ([]string, error) {
	rows, err := r.db.Query("SELECT name FROM " + columnsTable + " ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", columnsTable, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no enriched table stored")
	}
	return columns, nil
}

// CountEnriched returns the number of stored enriched rows
func (r *CollisionRepository) CountEnriched() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + quoteIdent(EnrichedTable)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", EnrichedTable, err)
	}
	return n, nil
}

func positionalColumn(i int) string {
	return fmt.Sprintf("c%d", i)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
