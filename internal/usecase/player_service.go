package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

type RegisterResult struct {
	Registered    []string
	AlreadyExists []string
}

type PlayerService struct {
	playerRepo      player.Repository
	leaderboardSize int
	recorder        Recorder
	logger          *logging.Logger
	now             func() time.Time
}

func NewPlayerService(playerRepo player.Repository, leaderboardSize int, recorder Recorder, logger *logging.Logger) *PlayerService {
	if leaderboardSize <= 0 || leaderboardSize > MaxLeaderboardSize {
		leaderboardSize = DefaultLeaderboardSize
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &PlayerService{
		playerRepo:      playerRepo,
		leaderboardSize: leaderboardSize,
		recorder:        recorder,
		logger:          logger,
		now:             time.Now,
	}
}

// Register creates every name that is not taken yet. The batch is validated up
// front and written in a single transaction.
func (s *PlayerService) Register(ctx context.Context, names []string) (RegisterResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Register", attribute.Int("player.batch_size", len(names)))
	defer span.End()

	if len(names) == 0 {
		return RegisterResult{}, errors.Wrap(ErrInvalidInput, "names is required")
	}

	normalized := make([]string, 0, len(names))
	for i, raw := range names {
		name, err := player.NormalizeName(raw)
		if err != nil {
			return RegisterResult{}, errors.Mark(errors.Wrapf(err, "names[%d]", i), ErrInvalidInput)
		}
		normalized = append(normalized, name)
	}

	now := s.now().UTC()
	var result RegisterResult
	err := s.playerRepo.InTx(ctx, func(tx player.Tx) error {
		result = RegisterResult{
			Registered:    make([]string, 0, len(normalized)),
			AlreadyExists: make([]string, 0),
		}
		seen := make(map[string]struct{}, len(normalized))
		for _, name := range normalized {
			if _, ok := seen[name]; ok {
				result.AlreadyExists = append(result.AlreadyExists, name)
				continue
			}
			seen[name] = struct{}{}

			_, created, err := tx.InsertIfAbsent(ctx, name, now)
			if err != nil {
				return errors.Wrapf(err, "insert player %q", name)
			}
			if created {
				result.Registered = append(result.Registered, name)
			} else {
				result.AlreadyExists = append(result.AlreadyExists, name)
			}
		}
		return nil
	})
	if err != nil {
		failSpan(span, err)
		s.logger.ErrorContext(ctx, "register players failed", "count", len(normalized), "error", err)
		return RegisterResult{}, errors.Wrap(err, "register players")
	}

	s.recorder.PlayersRegistered(len(result.Registered))
	s.logger.InfoContext(ctx, "players registered",
		"registered", len(result.Registered),
		"already_exists", len(result.AlreadyExists),
	)

	return result, nil
}

func (s *PlayerService) FindByName(ctx context.Context, name string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.FindByName")
	defer span.End()

	name, err := player.NormalizeName(name)
	if err != nil {
		return player.Player{}, errors.Mark(err, ErrInvalidInput)
	}

	item, exists, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		return player.Player{}, errors.Wrap(err, "get player by name")
	}
	if !exists {
		return player.Player{}, errors.Wrapf(ErrNotFound, "player=%s", name)
	}

	return item, nil
}

func (s *PlayerService) FindByID(ctx context.Context, id int64) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.FindByID")
	defer span.End()

	if id <= 0 {
		return player.Player{}, errors.Wrapf(ErrNotFound, "player id=%d", id)
	}

	item, exists, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return player.Player{}, errors.Wrap(err, "get player by id")
	}
	if !exists {
		return player.Player{}, errors.Wrapf(ErrNotFound, "player id=%d", id)
	}

	return item, nil
}

// TopN returns at most limit players ordered by the category, highest first.
// A zero limit falls back to the configured leaderboard size.
func (s *PlayerService) TopN(ctx context.Context, category string, limit int) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.TopN",
		attribute.String("leaderboard.category", category),
		attribute.Int("leaderboard.limit", limit),
	)
	defer span.End()

	metric, err := player.ParseMetric(category)
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidInput)
	}
	limit, err = s.resolveLimit(limit)
	if err != nil {
		return nil, err
	}

	items, err := s.playerRepo.Top(ctx, metric, limit)
	if err != nil {
		failSpan(span, err)
		return nil, errors.Wrapf(err, "top players by %s", metric)
	}

	return items, nil
}

// Overview loads the top players of every category concurrently.
func (s *PlayerService) Overview(ctx context.Context, limit int) (map[player.Metric][]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Overview")
	defer span.End()

	limit, err := s.resolveLimit(limit)
	if err != nil {
		return nil, err
	}

	metrics := player.Metrics()
	pool, err := ants.NewPool(len(metrics))
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	type boardResult struct {
		metric  player.Metric
		players []player.Player
		err     error
	}
	results := make(chan boardResult, len(metrics))

	var workers sync.WaitGroup
	for _, metric := range metrics {
		metric := metric
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			items, err := s.playerRepo.Top(ctx, metric, limit)
			results <- boardResult{metric: metric, players: items, err: err}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, errors.Wrap(err, "submit task to worker pool")
		}
	}

	workers.Wait()
	close(results)

	out := make(map[player.Metric][]player.Player, len(metrics))
	var failed []player.Metric
	var firstErr error
	for row := range results {
		if row.err != nil {
			failed = append(failed, row.metric)
			if firstErr == nil {
				firstErr = row.err
			}
			continue
		}
		out[row.metric] = row.players
	}
	if firstErr != nil {
		sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
		failSpan(span, firstErr)
		s.logger.WarnContext(ctx, "leaderboard overview failed", "categories", failed, "error", firstErr)
		return nil, errors.Wrap(firstErr, "leaderboard overview")
	}

	return out, nil
}

func (s *PlayerService) resolveLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return s.leaderboardSize, nil
	case limit < 0 || limit > MaxLeaderboardSize:
		return 0, errors.Wrapf(ErrInvalidInput, "limit must be between 1 and %d", MaxLeaderboardSize)
	default:
		return limit, nil
	}
}
