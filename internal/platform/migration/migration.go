package migration

import (
	"embed"
	"io/fs"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

//go:embed migrations
var files embed.FS

// Files returns the embedded migrations for the driver.
func Files(driver string) (fs.FS, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
		return fs.Sub(files, "migrations/"+driver)
	default:
		return nil, errors.Newf("no migrations for driver %q", driver)
	}
}

// URL turns a configured DB_URL into the url golang-migrate expects. SQLite
// DB_URLs are plain file paths.
func URL(driver, dbURL string) (string, error) {
	dbURL = strings.TrimSpace(dbURL)
	if dbURL == "" {
		return "", errors.New("database url is required")
	}
	switch driver {
	case DriverPostgres:
		return dbURL, nil
	case DriverSQLite:
		path := strings.TrimPrefix(strings.TrimPrefix(dbURL, "sqlite3://"), "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		return "sqlite3://" + path + "?_foreign_keys=on", nil
	default:
		return "", errors.Newf("unsupported migration driver %q", driver)
	}
}

// New builds a migrator over the embedded migrations. Callers own Close.
func New(driver, dbURL string) (*migrate.Migrate, error) {
	sub, err := Files(driver)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, errors.Wrap(err, "open embedded migrations")
	}
	target, err := URL(driver, dbURL)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, target)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s migrator", driver)
	}
	return m, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(driver, dbURL string) (err error) {
	m, err := New(driver, dbURL)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.CombineErrors(srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}
