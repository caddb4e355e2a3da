package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/labinv/internal/db"
	"github.com/sells-group/labinv/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS chemicals (
	id                 BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL,
	category           TEXT NOT NULL DEFAULT 'Uncategorized',
	cas_number         TEXT NOT NULL DEFAULT '',
	formula            TEXT NOT NULL DEFAULT '',
	molecular_weight   DOUBLE PRECISION,
	quantity           INTEGER NOT NULL DEFAULT 0,
	unit               TEXT NOT NULL DEFAULT '',
	hazard_class       TEXT NOT NULL DEFAULT '',
	storage_conditions TEXT NOT NULL DEFAULT '',
	supplier           TEXT NOT NULL DEFAULT '',
	catalog_number     TEXT NOT NULL DEFAULT '',
	cost               DOUBLE PRECISION,
	sds_url            TEXT NOT NULL DEFAULT '',
	link               TEXT NOT NULL DEFAULT '',
	date_opened        TEXT NOT NULL DEFAULT '',
	notes              TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS budget_items (
	id           BIGSERIAL PRIMARY KEY,
	category     TEXT NOT NULL,
	item         TEXT NOT NULL,
	vendor_model TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	cost         DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS consumables (
	id             BIGSERIAL PRIMARY KEY,
	category       TEXT NOT NULL,
	item           TEXT NOT NULL,
	vendor         TEXT NOT NULL DEFAULT '',
	estimated_cost DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS import_runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source      TEXT NOT NULL,
	chemicals   INTEGER NOT NULL DEFAULT 0,
	budget      INTEGER NOT NULL DEFAULT 0,
	consumables INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_chemicals_category ON chemicals(category);
CREATE INDEX IF NOT EXISTS idx_chemicals_name ON chemicals(name);
CREATE INDEX IF NOT EXISTS idx_import_runs_created_at ON import_runs(created_at DESC);
`

const coverageQuery = `SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE TRIM(cas_number) <> ''),
	COUNT(*) FILTER (WHERE TRIM(sds_url) <> '')
	FROM chemicals`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// replace clears each table and bulk-loads its rows with COPY, all in one
// transaction. It returns the number of rows loaded per table.
func (s *PostgresStore) replace(ctx context.Context, loads []tableLoad, run *model.ImportRun) ([]int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin replace")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	counts := make([]int, len(loads))
	for i, l := range loads {
		if _, err := tx.Exec(ctx, `DELETE FROM `+l.table); err != nil {
			return nil, eris.Wrapf(err, "postgres: clear %s", l.table)
		}
		n, err := db.CopyFrom(ctx, tx, l.table, l.columns, l.rows)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: load %s", l.table)
		}
		counts[i] = int(n)
	}
	if run != nil {
		setRunCounts(run, counts)
		if err := insertImportRunPG(ctx, tx, run); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit replace")
	}
	return counts, nil
}

type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertImportRunPG(ctx context.Context, ex pgExecer, run *model.ImportRun) error {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	_, err := ex.Exec(ctx,
		`INSERT INTO import_runs (id, source, chemicals, budget, consumables, skipped, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Source, run.Chemicals, run.Budget, run.Consumables, run.Skipped, run.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert import run")
}

// ReplaceInventory replaces the chemicals, budget_items and consumables
// tables and records run, all or nothing.
func (s *PostgresStore) ReplaceInventory(ctx context.Context, inv Inventory, run model.ImportRun) (*model.ImportRun, error) {
	if _, err := s.replace(ctx, inv.loads(), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *PostgresStore) replaceOne(ctx context.Context, l tableLoad) (int, error) {
	counts, err := s.replace(ctx, []tableLoad{l}, nil)
	if err != nil {
		return 0, err
	}
	return counts[0], nil
}

func (s *PostgresStore) ReplaceChemicals(ctx context.Context, recs []model.CanonicalRecord) (int, error) {
	return s.replaceOne(ctx, chemicalLoad(recs))
}

func (s *PostgresStore) ReplaceBudgetItems(ctx context.Context, items []model.BudgetItem) (int, error) {
	return s.replaceOne(ctx, budgetLoad(items))
}

func (s *PostgresStore) ReplaceConsumables(ctx context.Context, items []model.Consumable) (int, error) {
	return s.replaceOne(ctx, consumableLoad(items))
}

func (s *PostgresStore) ListChemicals(ctx context.Context, filter ChemicalFilter) ([]model.StoredChemical, error) {
	query := selectChemical + ` WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR cas_number ILIKE $%d OR catalog_number ILIKE $%d)`, argIdx, argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	query += ` ORDER BY id`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, filter.Limit)
		argIdx++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list chemicals")
	}
	defer rows.Close()

	var out []model.StoredChemical
	for rows.Next() {
		c, err := scanChemical(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan chemical")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list chemicals iterate")
}

func (s *PostgresStore) GetChemical(ctx context.Context, id int64) (*model.StoredChemical, error) {
	c, err := scanChemical(s.pool.QueryRow(ctx, selectChemical+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: chemical %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get chemical %d", id)
	}
	return c, nil
}

func (s *PostgresStore) ApplyBackfill(ctx context.Context, id int64, updates []model.FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	set, args, err := backfillSet(updates, func(n int) string { return fmt.Sprintf("$%d", n) })
	if err != nil {
		return err
	}
	n := len(args)
	args = append(args, time.Now().UTC(), id)

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE chemicals SET %s, updated_at = $%d WHERE id = $%d`, set, n+1, n+2),
		args...,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: backfill chemical %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "chemical %d", id)
	}
	return nil
}

func (s *PostgresStore) Coverage(ctx context.Context) (*model.Coverage, error) {
	var c model.Coverage
	if err := s.pool.QueryRow(ctx, coverageQuery).Scan(&c.Total, &c.WithCAS, &c.WithSDS); err != nil {
		return nil, eris.Wrap(err, "postgres: coverage")
	}
	return &c, nil
}

func (s *PostgresStore) ListBudgetItems(ctx context.Context) ([]model.BudgetItem, error) {
	rows, err := s.pool.Query(ctx, selectBudgetItems)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list budget items")
	}
	defer rows.Close()
	items, err := scanBudgetItems(rows)
	return items, eris.Wrap(err, "postgres")
}

func (s *PostgresStore) ListConsumables(ctx context.Context) ([]model.Consumable, error) {
	rows, err := s.pool.Query(ctx, selectConsumables)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list consumables")
	}
	defer rows.Close()
	items, err := scanConsumables(rows)
	return items, eris.Wrap(err, "postgres")
}

func (s *PostgresStore) CreateImportRun(ctx context.Context, run model.ImportRun) (*model.ImportRun, error) {
	if err := insertImportRunPG(ctx, s.pool, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *PostgresStore) ListImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, source, chemicals, budget, consumables, skipped, created_at FROM import_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list import runs")
	}
	defer rows.Close()

	var runs []model.ImportRun
	for rows.Next() {
		var r model.ImportRun
		if err := rows.Scan(&r.ID, &r.Source, &r.Chemicals, &r.Budget, &r.Consumables, &r.Skipped, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan import run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list import runs iterate")
}
