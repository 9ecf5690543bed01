package app

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/scutta-ladder/internal/config"
)

// redactDBURL hides credentials so the target can be logged. Plain paths and
// key=value DSNs are returned with any password=... token masked.
func redactDBURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" && parsed.Host != "" {
		return parsed.Redacted()
	}

	fields := strings.Fields(raw)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}

// dbNameFromURL names the database for span attributes: the sqlite file name,
// the URL path, or the dbname= token of a key=value DSN.
func dbNameFromURL(driver, raw string) string {
	raw = strings.TrimSpace(raw)
	if driver == config.DBDriverSQLite {
		path, _, _ := strings.Cut(strings.TrimPrefix(raw, "file:"), "?")
		return filepath.Base(path)
	}

	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		return strings.Trim(parsed.Path, "/ ")
	}
	for _, f := range strings.Fields(raw) {
		if name, ok := strings.CutPrefix(f, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

// formatDBQueryForTrace collapses whitespace and caps the statement length
// recorded on db spans.
func formatDBQueryForTrace(query string) string {
	out := strings.Join(strings.Fields(query), " ")
	if len(out) > maxTracedQueryLength {
		return out[:maxTracedQueryLength] + "..."
	}
	return out
}
