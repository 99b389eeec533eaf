package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/interfaces"
	"github.com/secmon-lab/ghdigest/pkg/utils/logging"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Client is a PostgreSQL-backed DigestRepository
type Client struct {
	pool *pgxpool.Pool
}

var _ interfaces.DigestRepository = (*Client)(nil)

// New connects to PostgreSQL. Schema is not touched; call Migrate beforehand.
func New(ctx context.Context, dsn string) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, goerr.Wrap(err, "failed to connect to database")
	}

	return &Client{pool: pool}, nil
}

func (x *Client) Close() {
	x.pool.Close()
}

// Migrate applies all embedded schema migrations
func Migrate(ctx context.Context, dsn string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return goerr.Wrap(err, "failed to load migrations")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return goerr.Wrap(err, "failed to open database for migration")
	}
	driver, err := mpg.WithInstance(db, &mpg.Config{})
	if err != nil {
		_ = db.Close()
		return goerr.Wrap(err, "failed to create migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return goerr.Wrap(err, "failed to create migrator")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logging.From(ctx).Warn("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return goerr.Wrap(err, "failed to apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return goerr.Wrap(err, "failed to get migration version")
	}
	logging.From(ctx).Info("database migrated", "version", version, "dirty", dirty)
	return nil
}

const pgForeignKeyViolation = "23503"

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// whereBuilder joins conditions with AND, replacing "?" by the next "$n" placeholder
type whereBuilder struct {
	conds []string
	args  []any
}

func (x *whereBuilder) add(cond string, arg any) {
	x.args = append(x.args, arg)
	x.conds = append(x.conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(x.args))))
}

func (x *whereBuilder) clause() string {
	if len(x.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(x.conds, " AND ")
}
