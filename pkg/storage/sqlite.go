package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite ledger at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) RecordCost(ctx context.Context, record *model.CostRecord) error {
	if record.CostUSD < 0 {
		return fmt.Errorf("cost must not be negative: %.4f", record.CostUSD)
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	record.Timestamp = record.Timestamp.UTC()
	if record.Metadata == "" {
		record.Metadata = "{}"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cost_records (id, provider, service, cost_usd, resource_count, metadata, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Provider, record.Service,
		record.CostUSD, record.ResourceCount, record.Metadata, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert cost record: %w", err)
	}
	return nil
}

func (s *SQLite) QueryCosts(ctx context.Context, filter model.CostFilter) ([]model.CostRecord, error) {
	query := "SELECT id, provider, service, cost_usd, resource_count, metadata, timestamp FROM cost_records"
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY timestamp DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query costs: %w", err)
	}
	defer rows.Close()

	var records []model.CostRecord
	for rows.Next() {
		var r model.CostRecord
		if err := rows.Scan(&r.ID, &r.Provider, &r.Service, &r.CostUSD,
			&r.ResourceCount, &r.Metadata, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan cost row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) TotalsByService(ctx context.Context, filter model.CostFilter) (map[string]float64, error) {
	query := "SELECT service, COALESCE(SUM(cost_usd), 0) FROM cost_records"
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " GROUP BY service"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate by service: %w", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var name string
		var total float64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("scan service aggregate: %w", err)
		}
		result[name] = total
	}
	return result, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// buildWhereClause constructs a SQL WHERE clause from a CostFilter.
func buildWhereClause(filter model.CostFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Provider != "" {
		conditions = append(conditions, "provider = ?")
		args = append(args, filter.Provider)
	}
	if filter.Service != "" {
		conditions = append(conditions, "service = ?")
		args = append(args, filter.Service)
	}
	if !filter.StartTime.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.StartTime.UTC())
	}
	if !filter.EndTime.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, filter.EndTime.UTC())
	}

	return strings.Join(conditions, " AND "), args
}
