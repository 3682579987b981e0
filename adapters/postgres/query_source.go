package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"autotable/domain/dataset"
	"autotable/internal"
	"autotable/ports"
)

// Connect opens and pings a postgres connection pool
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// QuerySource loads datasets from postgres. The ref passed to Load is
// either a bare table name or a full SELECT statement.
type QuerySource struct {
	db     *sqlx.DB
	logger *internal.Logger
}

var _ ports.DataSource = (*QuerySource)(nil)

// NewQuerySource creates a data source over db
func NewQuerySource(db *sqlx.DB, logger *internal.Logger) *QuerySource {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &QuerySource{db: db, logger: logger.Named("postgres")}
}

// Load runs the query and converts every row into the frame. NULLs
// become missing values.
func (s *QuerySource) Load(ctx context.Context, ref string) (*dataset.Frame, error) {
	query := QueryFor(ref)
	start := time.Now()

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	cols := make([][]dataset.Value, len(columns))
	for rows.Next() {
		rec, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for j, raw := range rec {
			cols[j] = append(cols[j], ValueOf(raw))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	frame, err := dataset.New(columns, cols)
	if err != nil {
		return nil, err
	}
	s.logger.Info("loaded %d rows, %d columns in %s", frame.Len(), len(columns), time.Since(start).Round(time.Millisecond))
	return frame, nil
}

// QueryFor turns a bare table name into a SELECT; anything containing
// whitespace is taken to be a statement already
func QueryFor(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.ContainsAny(ref, " \t\n") {
		return ref
	}
	parts := strings.Split(ref, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return "SELECT * FROM " + strings.Join(parts, ".")
}

// ValueOf converts a scanned driver value
func ValueOf(raw interface{}) dataset.Value {
	switch v := raw.(type) {
	case nil:
		return dataset.Missing()
	case int64:
		return dataset.Number(float64(v))
	case float64:
		return dataset.Number(v)
	case bool:
		if v {
			return dataset.Number(1)
		}
		return dataset.Number(0)
	case []byte:
		return dataset.Parse(string(v))
	case string:
		return dataset.Parse(v)
	case time.Time:
		return dataset.Text(v.UTC().Format(time.RFC3339))
	}
	return dataset.Parse(fmt.Sprint(raw))
}
