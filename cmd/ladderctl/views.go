package main

import (
	"time"

	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	"github.com/riskibarqy/scutta-ladder/internal/usecase"
)

type registerOutput struct {
	Registered    []string `json:"registered"`
	AlreadyExists []string `json:"already_exists"`
}

type approveView struct {
	Approved    int     `json:"approved"`
	ApprovedIDs []int64 `json:"approved_ids"`
	SkippedIDs  []int64 `json:"skipped_ids"`
}

type matchView struct {
	ID         int64      `json:"id"`
	Winner     string     `json:"winner"`
	Loser      string     `json:"loser"`
	SetScore   string     `json:"set_score"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

type playerView struct {
	Name            string  `json:"name"`
	Rank            *string `json:"rank"`
	WinCount        int     `json:"win_count"`
	LossCount       int     `json:"loss_count"`
	MatchCount      int     `json:"match_count"`
	WinRate         float64 `json:"win_rate"`
	UniqueOpponents int     `json:"unique_opponents"`
}

func registerView(result usecase.RegisterResult) registerOutput {
	registered := result.Registered
	if registered == nil {
		registered = []string{}
	}
	existing := result.AlreadyExists
	if existing == nil {
		existing = []string{}
	}
	return registerOutput{Registered: registered, AlreadyExists: existing}
}

func toMatchView(m match.Match) matchView {
	return matchView{
		ID:         m.ID,
		Winner:     m.WinnerName,
		Loser:      m.LoserName,
		SetScore:   m.SetScore,
		Status:     string(m.Status()),
		CreatedAt:  m.CreatedAt,
		ApprovedAt: m.ApprovedAt,
	}
}

func toPlayerView(p player.Player) playerView {
	return playerView{
		Name:            p.Name,
		Rank:            p.Rank,
		WinCount:        p.WinCount,
		LossCount:       p.LossCount,
		MatchCount:      p.MatchCount,
		WinRate:         p.WinRate,
		UniqueOpponents: p.UniqueOpponents,
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
