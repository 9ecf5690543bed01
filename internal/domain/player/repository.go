package player

import (
	"context"
	"time"
)

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetByName(ctx context.Context, name string) (Player, bool, error)
	GetByID(ctx context.Context, id int64) (Player, bool, error)
	Top(ctx context.Context, metric Metric, limit int) ([]Player, error)
	// InTx runs fn in one transaction; fn's error rolls every write back.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write surface available inside a registration transaction.
type Tx interface {
	// InsertIfAbsent creates a zero-stat player unless the name is taken.
	InsertIfAbsent(ctx context.Context, name string, createdAt time.Time) (Player, bool, error)
}
