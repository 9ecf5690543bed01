package match

import (
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// MaxSetScoreLength bounds the free-form set score, e.g. "21-15".
const MaxSetScoreLength = 10

var (
	ErrSelfMatch       = errors.New("a player cannot play against themselves")
	ErrMissingSetScore = errors.New("set score is required")
	ErrSetScoreTooLong = errors.Newf("set score exceeds %d characters", MaxSetScoreLength)
)

// Status is derived from IsApproved; PENDING is the only non-terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Match is a reported result between two registered players.
type Match struct {
	ID         int64
	WinnerID   int64
	LoserID    int64
	WinnerName string
	LoserName  string
	SetScore   string
	CreatedAt  time.Time
	IsApproved bool
	ApprovedAt *time.Time
}

func (m Match) Status() Status {
	if m.IsApproved {
		return StatusApproved
	}
	return StatusPending
}

// New builds a pending match. Player ids must already be resolved.
func New(winnerID, loserID int64, setScore string, createdAt time.Time) (Match, error) {
	if winnerID == loserID {
		return Match{}, ErrSelfMatch
	}
	setScore = strings.TrimSpace(setScore)
	if setScore == "" {
		return Match{}, ErrMissingSetScore
	}
	if len([]rune(setScore)) > MaxSetScoreLength {
		return Match{}, ErrSetScoreTooLong
	}

	return Match{
		WinnerID:  winnerID,
		LoserID:   loserID,
		SetScore:  setScore,
		CreatedAt: createdAt,
	}, nil
}

// NormalizeIDs de-duplicates ids, drops non-positive values and sorts ascending.
func NormalizeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
