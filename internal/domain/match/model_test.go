package match

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		winnerID  int64
		loserID   int64
		setScore  string
		targetErr error
	}{
		{name: "valid", winnerID: 1, loserID: 2, setScore: "21-15"},
		{name: "self match", winnerID: 1, loserID: 1, setScore: "21-15", targetErr: ErrSelfMatch},
		{name: "blank score", winnerID: 1, loserID: 2, setScore: "  ", targetErr: ErrMissingSetScore},
		{name: "long score", winnerID: 1, loserID: 2, setScore: "21-15 19-21 21-9", targetErr: ErrSetScoreTooLong},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := New(tc.winnerID, tc.loserID, tc.setScore, now)
			if tc.targetErr != nil {
				if !errors.Is(err, tc.targetErr) {
					t.Fatalf("expected %v, got %v", tc.targetErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("new match: %v", err)
			}
			if m.IsApproved || m.ApprovedAt != nil {
				t.Fatalf("new match must be pending: %+v", m)
			}
			if m.Status() != StatusPending {
				t.Fatalf("unexpected status: %s", m.Status())
			}
			if !m.CreatedAt.Equal(now) {
				t.Fatalf("unexpected created at: %v", m.CreatedAt)
			}
		})
	}
}

func TestNormalizeIDs(t *testing.T) {
	got := NormalizeIDs([]int64{5, 2, 5, 0, -1, 2, 9})
	want := []int64{2, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("unexpected ids: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected ids: got=%v want=%v", got, want)
		}
	}

	if len(NormalizeIDs(nil)) != 0 {
		t.Fatalf("expected empty ids")
	}
}
