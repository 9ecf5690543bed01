package usecase

// Recorder receives domain counters. The prometheus implementation lives in
// platform/metrics; NopRecorder is used when metrics are disabled.
type Recorder interface {
	PlayersRegistered(n int)
	MatchSubmitted()
	MatchesApproved(n int)
}

type NopRecorder struct{}

func (NopRecorder) PlayersRegistered(int) {}
func (NopRecorder) MatchSubmitted()       {}
func (NopRecorder) MatchesApproved(int)   {}
