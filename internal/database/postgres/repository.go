package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/wesky93/views/internal/database"
	"github.com/wesky93/views/internal/models"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	pgErr, ok := err.(*pgconn.PgError)
	return ok && pgErr.SQLState() == uniqueViolationErrCode
}

// attrs stores namespace-specific counter fields as a jsonb column.
type attrs map[string]string

func (a attrs) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

func (a *attrs) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("attrs: cannot scan %T", src)
	}
}

type counterRecord struct {
	Key         string    `db:"key"`
	Namespace   string    `db:"namespace"`
	Identifier  string    `db:"identifier"`
	Attrs       attrs     `db:"attrs"`
	Total       int64     `db:"total"`
	LastUpdated time.Time `db:"last_updated"`
}

func (r *counterRecord) ToCounter() *models.Counter {
	return &models.Counter{
		Key:         r.Key,
		Namespace:   r.Namespace,
		Identifier:  r.Identifier,
		Attrs:       r.Attrs,
		Total:       r.Total,
		LastUpdated: r.LastUpdated,
	}
}

// CounterRepository persists view counters in a single postgres table. The
// table name comes from configuration, so the queries are built once at
// construction from the sanitized identifier.
type CounterRepository struct {
	db             *sqlx.DB
	insertQuery    string
	selectQuery    string
	incrementQuery string
}

func NewCounterRepository(db *sqlx.DB, table string) *CounterRepository {
	ident := pgx.Identifier{table}.Sanitize()

	return &CounterRepository{
		db: db,
		insertQuery: fmt.Sprintf(`INSERT INTO %s (key, namespace, identifier, attrs, total, last_updated)
			VALUES ($1, $2, $3, $4, 0, $5)
			RETURNING *`, ident),
		selectQuery: fmt.Sprintf(`SELECT * FROM %s WHERE key = $1`, ident),
		incrementQuery: fmt.Sprintf(`UPDATE %s
			SET total = total + 1, last_updated = now()
			WHERE key = $1
			RETURNING total`, ident),
	}
}

// GetOrCreate inserts a fresh record with total 0 for the counter's key, or
// reads the existing one. Concurrent first-access is safe: the insert either
// wins or fails with a unique violation, and the loser falls back to a plain
// read of the record the winner created.
func (r *CounterRepository) GetOrCreate(ctx context.Context, counter *models.Counter) (*models.Counter, error) {
	const op = "database.postgres.CounterRepository.GetOrCreate"

	rec := new(counterRecord)

	err := r.db.GetContext(ctx, rec, r.insertQuery,
		counter.Key, counter.Namespace, counter.Identifier, attrs(counter.Attrs), time.Now().UTC())
	if err != nil {
		if isUniqueViolationError(err) {
			return r.Get(ctx, counter.Key)
		}

		return nil, fmt.Errorf("%s: failed to create counter record: %w", op, err)
	}

	return rec.ToCounter(), nil
}

// Increment atomically adds 1 to the counter's total and stamps
// last_updated, returning the post-increment total. The single UPDATE is the
// only synchronization between concurrent callers; there is no
// read-modify-write anywhere.
func (r *CounterRepository) Increment(ctx context.Context, key string) (int64, error) {
	const op = "database.postgres.CounterRepository.Increment"

	var total int64

	err := r.db.GetContext(ctx, &total, r.incrementQuery, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("%s: %w", op, database.ErrCounterNotFound)
		}

		return 0, fmt.Errorf("%s: failed to increment counter record: %w", op, err)
	}

	return total, nil
}

// Get reads the record for the key without touching it.
func (r *CounterRepository) Get(ctx context.Context, key string) (*models.Counter, error) {
	const op = "database.postgres.CounterRepository.Get"

	rec := new(counterRecord)

	err := r.db.GetContext(ctx, rec, r.selectQuery, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrCounterNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get counter record: %w", op, err)
	}

	return rec.ToCounter(), nil
}
