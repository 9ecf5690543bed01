package sqlstore

import "strings"

// SQLiteDSN builds the go-sqlite3 DSN for a database file. Foreign keys are
// enforced and write transactions take the lock up front, which avoids
// SQLITE_BUSY upgrades when two approvals race.
func SQLiteDSN(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}
