package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"github.com/riskibarqy/scutta-ladder/internal/platform/migration"
)

const defaultSQLitePath = "scutta.db"

// step runs one subcommand against an open migrator.
type step func(m *migrate.Migrate, args []string, log *logging.Logger) error

var steps = map[string]step{
	"up":      runUp,
	"down":    runDown,
	"version": runVersion,
	"force":   runForce,
	"goto":    runGoto,
	"migrate": runGoto,
}

func main() {
	logger := logging.NewJSON(logging.LevelInfo).With("component", "migration")
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	run, ok := steps[strings.ToLower(strings.TrimSpace(os.Args[1]))]
	if !ok {
		usage()
		os.Exit(2)
	}

	if err := execute(run, os.Args[2:], logger); err != nil {
		logger.Error("migration failed", "command", os.Args[1], "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func execute(run step, args []string, logger *logging.Logger) (err error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "load .env")
	}

	driver, dbURL, err := resolveTarget(os.Getenv)
	if err != nil {
		return err
	}
	m, err := migration.New(driver, dbURL)
	if err != nil {
		return errors.Wrap(err, "create migrator")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		err = errors.CombineErrors(err, errors.CombineErrors(srcErr, dbErr))
	}()

	return run(m, args, logger.With("driver", driver))
}

// resolveTarget reads DB_DRIVER and DB_URL the way the API does. The memory
// driver has no schema to migrate.
func resolveTarget(getenv func(string) string) (driver, dbURL string, err error) {
	driver = strings.ToLower(strings.TrimSpace(getenv("DB_DRIVER")))
	switch driver {
	case "":
		driver = migration.DriverSQLite
	case "memory":
		return "", "", errors.New("DB_DRIVER=memory has no migrations")
	}

	dbURL = strings.TrimSpace(getenv("DB_URL"))
	if dbURL == "" && driver == migration.DriverSQLite {
		dbURL = defaultSQLitePath
	}
	if dbURL == "" {
		return "", "", errors.Newf("DB_URL is required for DB_DRIVER=%s", driver)
	}
	return driver, dbURL, nil
}

func runUp(m *migrate.Migrate, _ []string, log *logging.Logger) error {
	return report(log, m.Up(), "schema up to date")
}

func runDown(m *migrate.Migrate, args []string, log *logging.Logger) error {
	n := 1
	if len(args) > 0 {
		parsed, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || parsed <= 0 {
			return errors.Newf("down steps must be a positive integer, got %q", args[0])
		}
		n = parsed
	}
	return report(log.With("steps", n), m.Steps(-n), "rolled back")
}

func runVersion(m *migrate.Migrate, _ []string, _ *logging.Logger) error {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("version: none\ndirty: false")
		return nil
	case err != nil:
		return errors.Wrap(err, "read version")
	}
	fmt.Printf("version: %d\ndirty: %t\n", version, dirty)
	return nil
}

func runForce(m *migrate.Migrate, args []string, log *logging.Logger) error {
	version, err := versionArg(args)
	if err != nil {
		return err
	}
	// Force takes an int; -1 would mean "no version", which is not offered here.
	if version > uint64(^uint(0)>>1) {
		return errors.Newf("version %d is too large", version)
	}
	if err := m.Force(int(version)); err != nil {
		return errors.Wrapf(err, "force version %d", version)
	}
	log.Info("forced version", "version", version)
	return nil
}

func runGoto(m *migrate.Migrate, args []string, log *logging.Logger) error {
	version, err := versionArg(args)
	if err != nil {
		return err
	}
	return report(log.With("version", version), m.Migrate(uint(version)), "migrated")
}

func versionArg(args []string) (uint64, error) {
	if len(args) == 0 {
		return 0, errors.New("a version argument is required")
	}
	version, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, errors.Newf("version must be a non-negative integer, got %q", args[0])
	}
	return version, nil
}

// report treats ErrNoChange as success.
func report(log *logging.Logger, err error, done string) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migration changes")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info(done)
	return nil
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, `usage: %[1]s <up|down [N]|version|force V|goto V>
reads DB_DRIVER (postgres|sqlite3, default sqlite3) and DB_URL from the environment or .env
examples:
  %[1]s up
  %[1]s down 1
  %[1]s force 1
`, name)
}
