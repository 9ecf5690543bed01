package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/riskibarqy/scutta-ladder/internal/config"
	"github.com/riskibarqy/scutta-ladder/internal/infrastructure/repository/sqlstore"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const maxTracedQueryLength = 512

func driverDSN(cfg config.Config) string {
	if cfg.DBDriver == config.DBDriverSQLite {
		return sqlstore.SQLiteDSN(cfg.DBURL)
	}
	return cfg.DBURL
}

// openDB opens an otelsql-instrumented pool and verifies it is reachable.
func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	system := "postgresql"
	if cfg.DBDriver == config.DBDriverSQLite {
		system = "sqlite"
	}

	db, err := otelsqlx.Open(cfg.DBDriver, driverDSN(cfg),
		otelsql.WithDBSystem(system),
		otelsql.WithDBName(dbNameFromURL(cfg.DBDriver, cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.DBDriver)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s", redactDBURL(cfg.DBURL))
	}

	otelsql.ReportDBStatsMetrics(db.DB, otelsql.WithDBSystem(system))

	return db, nil
}

type dbHealth struct {
	db *sqlx.DB
}

func (h dbHealth) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
