package match

import (
	"context"
	"time"

	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
)

// Repository describes match persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, m Match) (Match, error)
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	ListPending(ctx context.Context, limit int) ([]Match, error)
	// InTx runs fn in one transaction; fn's error rolls every write back.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write surface available inside an approval transaction.
type Tx interface {
	// ClaimPending flips a pending match to approved. It reports false when the
	// id is unknown or was already approved, in which case nothing changes.
	ClaimPending(ctx context.Context, id int64, approvedAt time.Time) (Match, bool, error)
	// RecordResult increments the player's counters and returns the new values.
	RecordResult(ctx context.Context, playerID int64, won bool) (player.Stats, error)
	SetWinRate(ctx context.Context, playerID int64, rate float64) error
}
