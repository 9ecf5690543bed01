package app

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/scutta-ladder/internal/config"
	"github.com/riskibarqy/scutta-ladder/internal/domain/match"
	"github.com/riskibarqy/scutta-ladder/internal/domain/player"
	cacherepo "github.com/riskibarqy/scutta-ladder/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/scutta-ladder/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/scutta-ladder/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/scutta-ladder/internal/interfaces/httpapi"
	"github.com/riskibarqy/scutta-ladder/internal/platform/cache"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"github.com/riskibarqy/scutta-ladder/internal/platform/metrics"
	"github.com/riskibarqy/scutta-ladder/internal/platform/migration"
	"github.com/riskibarqy/scutta-ladder/internal/platform/resilience"
	"github.com/riskibarqy/scutta-ladder/internal/usecase"
)

// App holds the wired services shared by the API server and the operator CLI.
type App struct {
	PlayerService *usecase.PlayerService
	MatchService  *usecase.MatchService
	Metrics       *metrics.Service
	Health        httpapi.HealthChecker

	cfg     config.Config
	logger  *logging.Logger
	closers []func() error
}

type stores struct {
	players player.Repository
	matches match.Repository
	health  httpapi.HealthChecker
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	repos, err := a.openStores(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if cfg.CacheEnabled {
		rt, err := a.openCache(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		repos.players = cacherepo.NewPlayerRepository(repos.players, rt)
		repos.matches = cacherepo.NewMatchRepository(repos.matches, rt)
	}

	var recorder usecase.Recorder
	if cfg.MetricsEnabled {
		a.Metrics = metrics.NewService()
		recorder = a.Metrics
	}

	a.Health = repos.health
	a.PlayerService = usecase.NewPlayerService(repos.players, cfg.LeaderboardSize, recorder, logger)
	a.MatchService = usecase.NewMatchService(repos.matches, repos.players, recorder, logger)

	return a, nil
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	if a.cfg.DBDriver == config.DBDriverMemory {
		a.logger.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return stores{
			players: memory.NewPlayerRepository(store),
			matches: memory.NewMatchRepository(store),
			health:  store,
		}, nil
	}

	if a.cfg.MigrateOnStart {
		if err := migration.Up(a.cfg.DBDriver, a.cfg.DBURL); err != nil {
			return stores{}, errors.Wrap(err, "migrate on start")
		}
		a.logger.Info("database schema up to date", "driver", a.cfg.DBDriver)
	}

	db, err := openDB(ctx, a.cfg)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, db.Close)
	a.logger.Info("database connected",
		"driver", a.cfg.DBDriver,
		"target", redactDBURL(a.cfg.DBURL),
		"max_open_conns", a.cfg.DBMaxOpenConns,
	)

	return stores{
		players: sqlstore.NewPlayerRepository(db),
		matches: sqlstore.NewMatchRepository(db),
		health:  dbHealth{db: db},
	}, nil
}

// openCache builds the leaderboard cache. An unreachable redis is logged, not
// fatal: the circuit breaker routes reads to the store until it recovers.
func (a *App) openCache(ctx context.Context) (*cache.ReadThrough, error) {
	var backend cache.Backend
	switch a.cfg.CacheDriver {
	case config.CacheDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		a.closers = append(a.closers, client.Close)
		store := cache.NewRedisStore(client, redisKeyPrefix(a.cfg.RedisNamespace), a.cfg.CacheTTL)
		if err := store.Ping(ctx); err != nil {
			a.logger.Warn("redis unreachable at startup", "addr", a.cfg.RedisAddr, "error", err)
		}
		backend = store
	case config.CacheDriverMemory:
		backend = cache.NewStore(a.cfg.CacheTTL)
	default:
		return nil, errors.Newf("unsupported cache driver %q", a.cfg.CacheDriver)
	}

	a.logger.Info("leaderboard cache enabled",
		"driver", a.cfg.CacheDriver,
		"ttl", a.cfg.CacheTTL.String(),
		"circuit_enabled", a.cfg.CacheCircuit.Enabled,
	)
	breaker := resilience.NewCircuitBreakerFromConfig(a.cfg.CacheCircuit)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		a.logger.Warn("cache circuit state changed", "from", string(from), "to", string(to))
	})
	return cache.NewReadThrough(backend, breaker, a.logger), nil
}

func redisKeyPrefix(namespace string) string {
	namespace = strings.TrimSuffix(strings.TrimSpace(namespace), ":")
	if namespace == "" {
		return ""
	}
	return namespace + ":"
}

// Router builds the HTTP surface over the wired services.
func (a *App) Router() http.Handler {
	opts := httpapi.RouterOptions{CORSAllowedOrigins: a.cfg.CORSAllowedOrigins}
	if a.Metrics != nil {
		opts.MetricsHandler = a.Metrics.Handler()
		opts.Observer = a.Metrics
	}

	handler := httpapi.NewHandler(a.PlayerService, a.MatchService, a.Health, a.logger)
	return httpapi.NewRouter(handler, a.logger, opts)
}

func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.cfg.HTTPAddr == "" {
		return nil, errors.New("http server addr cannot be empty")
	}

	return &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      a.Router(),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = errors.CombineErrors(err, a.closers[i]())
	}
	a.closers = nil
	return err
}
