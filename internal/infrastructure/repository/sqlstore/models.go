package sqlstore

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
)

type playerTableModel struct {
	ID              int64          `db:"id"`
	Name            string         `db:"name"`
	PreviousRank    sql.NullString `db:"previous_rank"`
	Rank            sql.NullString `db:"rank"`
	RankChange      sql.NullString `db:"rank_change"`
	MatchCount      int            `db:"match_count"`
	WinCount        int            `db:"win_count"`
	LossCount       int            `db:"loss_count"`
	WinRate         float64        `db:"win_rate"`
	UniqueOpponents int            `db:"unique_opponents"`
	CreatedAt       time.Time      `db:"created_at"`
}

var playerSelectColumns = []string{
	"id",
	"name",
	"previous_rank",
	"rank",
	"rank_change",
	"match_count",
	"win_count",
	"loss_count",
	"win_rate",
	"unique_opponents",
	"created_at",
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:              m.ID,
		Name:            m.Name,
		PreviousRank:    nullStringPtr(m.PreviousRank),
		Rank:            nullStringPtr(m.Rank),
		RankChange:      nullStringPtr(m.RankChange),
		MatchCount:      m.MatchCount,
		WinCount:        m.WinCount,
		LossCount:       m.LossCount,
		WinRate:         m.WinRate,
		UniqueOpponents: m.UniqueOpponents,
		CreatedAt:       m.CreatedAt,
	}
}

type playerInsertModel struct {
	Name            string    `db:"name"`
	MatchCount      int       `db:"match_count"`
	WinCount        int       `db:"win_count"`
	LossCount       int       `db:"loss_count"`
	WinRate         float64   `db:"win_rate"`
	UniqueOpponents int       `db:"unique_opponents"`
	CreatedAt       time.Time `db:"created_at"`
}

type playerStatsModel struct {
	WinCount   int `db:"win_count"`
	LossCount  int `db:"loss_count"`
	MatchCount int `db:"match_count"`
}

type matchTableModel struct {
	ID         int64          `db:"id,readonly"`
	WinnerID   int64          `db:"winner_id"`
	LoserID    int64          `db:"loser_id"`
	WinnerName sql.NullString `db:"winner_name,readonly"`
	LoserName  sql.NullString `db:"loser_name,readonly"`
	SetScore   string         `db:"set_score"`
	IsApproved bool           `db:"is_approved"`
	CreatedAt  time.Time      `db:"created_at"`
	ApprovedAt sql.NullTime   `db:"approved_at"`
}

var matchSelectColumns = []string{
	"m.id",
	"m.winner_id",
	"m.loser_id",
	"w.name AS winner_name",
	"l.name AS loser_name",
	"m.set_score",
	"m.is_approved",
	"m.created_at",
	"m.approved_at",
}

func (m matchTableModel) toDomain() match.Match {
	out := match.Match{
		ID:         m.ID,
		WinnerID:   m.WinnerID,
		LoserID:    m.LoserID,
		WinnerName: m.WinnerName.String,
		LoserName:  m.LoserName.String,
		SetScore:   m.SetScore,
		IsApproved: m.IsApproved,
		CreatedAt:  m.CreatedAt,
	}
	if m.ApprovedAt.Valid {
		approvedAt := m.ApprovedAt.Time
		out.ApprovedAt = &approvedAt
	}
	return out
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
