package player

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Metric is a leaderboard category.
type Metric string

const (
	MetricWins      Metric = "wins"
	MetricLosses    Metric = "losses"
	MetricWinRate   Metric = "win_rate"
	MetricMatches   Metric = "matches"
	MetricOpponents Metric = "opponents"
)

var ErrUnknownMetric = errors.New("unknown leaderboard category")

var allMetrics = []Metric{MetricWins, MetricLosses, MetricWinRate, MetricMatches, MetricOpponents}

// Metrics returns every supported category in display order.
func Metrics() []Metric {
	out := make([]Metric, len(allMetrics))
	copy(out, allMetrics)
	return out
}

// MetricNames returns the category names, used in validation messages.
func MetricNames() []string {
	out := make([]string, 0, len(allMetrics))
	for _, m := range allMetrics {
		out = append(out, string(m))
	}
	return out
}

func ParseMetric(raw string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(raw)))
	if m.Valid() {
		return m, nil
	}
	return "", errors.Wrapf(ErrUnknownMetric, "%q, valid categories: %s", raw, strings.Join(MetricNames(), ", "))
}

func (m Metric) Valid() bool {
	for _, item := range allMetrics {
		if item == m {
			return true
		}
	}
	return false
}

// Value projects the player statistic the category sorts by.
func (m Metric) Value(p Player) float64 {
	switch m {
	case MetricWins:
		return float64(p.WinCount)
	case MetricLosses:
		return float64(p.LossCount)
	case MetricWinRate:
		return p.WinRate
	case MetricMatches:
		return float64(p.MatchCount)
	case MetricOpponents:
		return float64(p.UniqueOpponents)
	default:
		return 0
	}
}

// Column is the players column backing the category.
func (m Metric) Column() string {
	switch m {
	case MetricWins:
		return "win_count"
	case MetricLosses:
		return "loss_count"
	case MetricWinRate:
		return "win_rate"
	case MetricMatches:
		return "match_count"
	case MetricOpponents:
		return "unique_opponents"
	default:
		return ""
	}
}

// Less orders a before b on the leaderboard: higher value first, then lower id.
func (m Metric) Less(a, b Player) bool {
	va, vb := m.Value(a), m.Value(b)
	if va != vb {
		return va > vb
	}
	return a.ID < b.ID
}
