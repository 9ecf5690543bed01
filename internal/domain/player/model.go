package player

import (
	"fmt"
	"strings"
	"time"
)

// MaxNameLength bounds a registered player name after trimming.
const MaxNameLength = 80

// Player is a registered competitor with aggregate match statistics.
//
// Rank fields are assigned outside this service and are carried as-is.
type Player struct {
	ID              int64
	Name            string
	PreviousRank    *string
	Rank            *string
	RankChange      *string
	MatchCount      int
	WinCount        int
	LossCount       int
	WinRate         float64
	UniqueOpponents int
	CreatedAt       time.Time
}

// Stats is the counter triple touched by match approval.
type Stats struct {
	WinCount   int
	LossCount  int
	MatchCount int
}

// WinRate returns wins/matches, or zero when no match has been played.
func WinRate(wins, matches int) float64 {
	if matches <= 0 {
		return 0
	}
	return float64(wins) / float64(matches)
}

// WinRate recomputes the ratio from the counters.
func (s Stats) WinRate() float64 {
	return WinRate(s.WinCount, s.MatchCount)
}

func (p Player) Stats() Stats {
	return Stats{WinCount: p.WinCount, LossCount: p.LossCount, MatchCount: p.MatchCount}
}

// RecordWin applies one won match and keeps WinRate consistent with the counters.
func (p *Player) RecordWin() {
	p.WinCount++
	p.MatchCount++
	p.WinRate = WinRate(p.WinCount, p.MatchCount)
}

// RecordLoss applies one lost match and keeps WinRate consistent with the counters.
func (p *Player) RecordLoss() {
	p.LossCount++
	p.MatchCount++
	p.WinRate = WinRate(p.WinCount, p.MatchCount)
}

// NormalizeName trims the name and validates its length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("player name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return "", fmt.Errorf("player name %q exceeds %d characters", name, MaxNameLength)
	}
	return name, nil
}
