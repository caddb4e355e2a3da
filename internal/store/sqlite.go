package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/labinv/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// One writer at a time; backfill writes fan out from several goroutines.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS chemicals (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	name               TEXT NOT NULL,
	category           TEXT NOT NULL DEFAULT 'Uncategorized',
	cas_number         TEXT NOT NULL DEFAULT '',
	formula            TEXT NOT NULL DEFAULT '',
	molecular_weight   REAL,
	quantity           INTEGER NOT NULL DEFAULT 0,
	unit               TEXT NOT NULL DEFAULT '',
	hazard_class       TEXT NOT NULL DEFAULT '',
	storage_conditions TEXT NOT NULL DEFAULT '',
	supplier           TEXT NOT NULL DEFAULT '',
	catalog_number     TEXT NOT NULL DEFAULT '',
	cost               REAL,
	sds_url            TEXT NOT NULL DEFAULT '',
	link               TEXT NOT NULL DEFAULT '',
	date_opened        TEXT NOT NULL DEFAULT '',
	notes              TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS budget_items (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	category     TEXT NOT NULL,
	item         TEXT NOT NULL,
	vendor_model TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	cost         REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS consumables (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	category       TEXT NOT NULL,
	item           TEXT NOT NULL,
	vendor         TEXT NOT NULL DEFAULT '',
	estimated_cost REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS import_runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	chemicals   INTEGER NOT NULL DEFAULT 0,
	budget      INTEGER NOT NULL DEFAULT 0,
	consumables INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_chemicals_category ON chemicals(category);
CREATE INDEX IF NOT EXISTS idx_chemicals_name ON chemicals(name);
CREATE INDEX IF NOT EXISTS idx_import_runs_created_at ON import_runs(created_at);
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// replace deletes every row of each table and inserts its rows, all in
// one transaction. It returns the number of rows loaded per table.
func (s *SQLiteStore) replace(ctx context.Context, loads []tableLoad, run *model.ImportRun) ([]int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin replace")
	}
	defer tx.Rollback() //nolint:errcheck

	counts := make([]int, len(loads))
	for i, l := range loads {
		if counts[i], err = replaceTable(ctx, tx, l); err != nil {
			return nil, err
		}
	}
	if run != nil {
		setRunCounts(run, counts)
		if err := insertImportRun(ctx, tx, run); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit replace")
	}
	return counts, nil
}

func replaceTable(ctx context.Context, tx *sql.Tx, l tableLoad) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+l.table); err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear %s", l.table)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(l.columns)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+l.table+` (`+strings.Join(l.columns, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: prepare insert %s", l.table)
	}
	defer stmt.Close() //nolint:errcheck

	for i, row := range l.rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert %s row %d", l.table, i)
		}
	}
	return len(l.rows), nil
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertImportRun(ctx context.Context, ex sqlExecer, run *model.ImportRun) error {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	_, err := ex.ExecContext(ctx,
		`INSERT INTO import_runs (id, source, chemicals, budget, consumables, skipped, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Chemicals, run.Budget, run.Consumables, run.Skipped, run.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert import run")
}

// ReplaceInventory replaces the chemicals, budget_items and consumables
// tables and records run, all or nothing.
func (s *SQLiteStore) ReplaceInventory(ctx context.Context, inv Inventory, run model.ImportRun) (*model.ImportRun, error) {
	if _, err := s.replace(ctx, inv.loads(), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) replaceOne(ctx context.Context, l tableLoad) (int, error) {
	counts, err := s.replace(ctx, []tableLoad{l}, nil)
	if err != nil {
		return 0, err
	}
	return counts[0], nil
}

func (s *SQLiteStore) ReplaceChemicals(ctx context.Context, recs []model.CanonicalRecord) (int, error) {
	return s.replaceOne(ctx, chemicalLoad(recs))
}

func (s *SQLiteStore) ReplaceBudgetItems(ctx context.Context, items []model.BudgetItem) (int, error) {
	return s.replaceOne(ctx, budgetLoad(items))
}

func (s *SQLiteStore) ReplaceConsumables(ctx context.Context, items []model.Consumable) (int, error) {
	return s.replaceOne(ctx, consumableLoad(items))
}

func (s *SQLiteStore) ListChemicals(ctx context.Context, filter ChemicalFilter) ([]model.StoredChemical, error) {
	query := selectChemical + ` WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		query += ` AND (name LIKE ? OR cas_number LIKE ? OR catalog_number LIKE ?)`
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	query += ` ORDER BY id`

	switch {
	case filter.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	case filter.Offset > 0:
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list chemicals")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.StoredChemical
	for rows.Next() {
		c, err := scanChemical(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan chemical")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list chemicals iterate")
}

func (s *SQLiteStore) GetChemical(ctx context.Context, id int64) (*model.StoredChemical, error) {
	c, err := scanChemical(s.db.QueryRowContext(ctx, selectChemical+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: chemical %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get chemical %d", id)
	}
	return c, nil
}

func (s *SQLiteStore) ApplyBackfill(ctx context.Context, id int64, updates []model.FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	set, args, err := backfillSet(updates, func(int) string { return "?" })
	if err != nil {
		return err
	}
	args = append(args, time.Now().UTC(), id)

	res, err := s.db.ExecContext(ctx, `UPDATE chemicals SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: backfill chemical %d", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) Coverage(ctx context.Context) (*model.Coverage, error) {
	var c model.Coverage
	err := s.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN TRIM(cas_number) <> '' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN TRIM(sds_url) <> '' THEN 1 ELSE 0 END), 0)
		FROM chemicals`).Scan(&c.Total, &c.WithCAS, &c.WithSDS)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: coverage")
	}
	return &c, nil
}

func (s *SQLiteStore) ListBudgetItems(ctx context.Context) ([]model.BudgetItem, error) {
	rows, err := s.db.QueryContext(ctx, selectBudgetItems)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list budget items")
	}
	defer rows.Close() //nolint:errcheck
	items, err := scanBudgetItems(rows)
	return items, eris.Wrap(err, "sqlite")
}

func (s *SQLiteStore) ListConsumables(ctx context.Context) ([]model.Consumable, error) {
	rows, err := s.db.QueryContext(ctx, selectConsumables)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list consumables")
	}
	defer rows.Close() //nolint:errcheck
	items, err := scanConsumables(rows)
	return items, eris.Wrap(err, "sqlite")
}

func (s *SQLiteStore) CreateImportRun(ctx context.Context, run model.ImportRun) (*model.ImportRun, error) {
	if err := insertImportRun(ctx, s.db, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) ListImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, chemicals, budget, consumables, skipped, created_at FROM import_runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list import runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.ImportRun
	for rows.Next() {
		var r model.ImportRun
		if err := rows.Scan(&r.ID, &r.Source, &r.Chemicals, &r.Budget, &r.Consumables, &r.Skipped, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan import run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list import runs iterate")
}

func checkRowsAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "chemical %d", id)
	}
	return nil
}

func scanChemical(row scannable) (*model.StoredChemical, error) {
	var c model.StoredChemical
	err := row.Scan(
		&c.ID, &c.Name, &c.Category, &c.CASNumber, &c.Formula, &c.MolecularWeight, &c.Quantity, &c.Unit,
		&c.HazardClass, &c.StorageConditions, &c.Supplier, &c.CatalogNumber, &c.Cost, &c.SDSURL, &c.Link,
		&c.DateOpened, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
