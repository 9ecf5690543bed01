package httpapi

import (
	"time"

	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	"github.com/riskibarqy/scutta-ladder/internal/usecase"
)

type registerPlayersRequest struct {
	Names []string `json:"names" validate:"required,min=1,max=1000"`
}

type submitMatchRequest struct {
	Winner   string `json:"winner" validate:"required"`
	Loser    string `json:"loser" validate:"required"`
	SetScore string `json:"set_score" validate:"required"`
}

// A missing match_ids decodes to nil and fails "required". An explicit empty
// list approves nothing.
type approveMatchesRequest struct {
	MatchIDs []int64 `json:"match_ids" validate:"required"`
}

type registerPlayersResponse struct {
	Registered    []string `json:"registered"`
	AlreadyExists []string `json:"already_exists"`
}

type playerDTO struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Rank            *string   `json:"rank"`
	PreviousRank    *string   `json:"previous_rank"`
	RankChange      *string   `json:"rank_change"`
	MatchCount      int       `json:"match_count"`
	WinCount        int       `json:"win_count"`
	LossCount       int       `json:"loss_count"`
	WinRate         float64   `json:"win_rate"`
	UniqueOpponents int       `json:"unique_opponents"`
	CreatedAt       time.Time `json:"created_at"`
}

type matchDTO struct {
	ID         int64      `json:"id"`
	Winner     string     `json:"winner"`
	Loser      string     `json:"loser"`
	WinnerID   int64      `json:"winner_id"`
	LoserID    int64      `json:"loser_id"`
	SetScore   string     `json:"set_score"`
	Status     string     `json:"status"`
	IsApproved bool       `json:"is_approved"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedAt *time.Time `json:"approved_at"`
}

type submitMatchResponse struct {
	Message string   `json:"message"`
	Match   matchDTO `json:"match"`
}

type approveMatchesResponse struct {
	Message     string  `json:"message"`
	Approved    int     `json:"approved"`
	ApprovedIDs []int64 `json:"approved_ids"`
	SkippedIDs  []int64 `json:"skipped_ids"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:              p.ID,
		Name:            p.Name,
		Rank:            p.Rank,
		PreviousRank:    p.PreviousRank,
		RankChange:      p.RankChange,
		MatchCount:      p.MatchCount,
		WinCount:        p.WinCount,
		LossCount:       p.LossCount,
		WinRate:         p.WinRate,
		UniqueOpponents: p.UniqueOpponents,
		CreatedAt:       p.CreatedAt,
	}
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:         m.ID,
		Winner:     m.WinnerName,
		Loser:      m.LoserName,
		WinnerID:   m.WinnerID,
		LoserID:    m.LoserID,
		SetScore:   m.SetScore,
		Status:     string(m.Status()),
		IsApproved: m.IsApproved,
		CreatedAt:  m.CreatedAt,
		ApprovedAt: m.ApprovedAt,
	}
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, m := range items {
		out = append(out, matchToDTO(m))
	}
	return out
}

// leaderboardEntries renders {name, rank, <category>: value}. Counter
// categories stay integral.
func leaderboardEntries(metric player.Metric, items []player.Player) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, p := range items {
		var value any
		if metric == player.MetricWinRate {
			value = p.WinRate
		} else {
			value = int(metric.Value(p))
		}
		out = append(out, map[string]any{
			"name":         p.Name,
			"rank":         p.Rank,
			string(metric): value,
		})
	}
	return out
}

func approveResponse(result usecase.ApproveResult) approveMatchesResponse {
	approvedIDs := result.ApprovedIDs
	if approvedIDs == nil {
		approvedIDs = []int64{}
	}
	skippedIDs := result.SkippedIDs
	if skippedIDs == nil {
		skippedIDs = []int64{}
	}
	return approveMatchesResponse{
		Message:     approvedMessage(result.Approved()),
		Approved:    result.Approved(),
		ApprovedIDs: approvedIDs,
		SkippedIDs:  skippedIDs,
	}
}
