package observability

import (
	"fmt"
	"runtime"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/scutta-ladder/internal/config"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
)

// contentionSampleRate feeds runtime.SetMutexProfileFraction and
// SetBlockProfileRate; without it the mutex and block profiles stay empty.
const contentionSampleRate = 5

// InitPyroscope starts continuous profiling when enabled. The returned stop
// func is always non-nil on success.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "pyroscope")

	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	runtime.SetMutexProfileFraction(contentionSampleRate)
	runtime.SetBlockProfileRate(contentionSampleRate)

	profiler, err := pyroscope.Start(profilerConfig(cfg, logger))
	if err != nil {
		return nil, err
	}
	logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)

	return func() error {
		defer runtime.SetMutexProfileFraction(0)
		defer runtime.SetBlockProfileRate(0)
		return profiler.Stop()
	}, nil
}

func profilerConfig(cfg config.Config, logger *logging.Logger) pyroscope.Config {
	tags := map[string]string{
		"env":       cfg.AppEnv,
		"service":   cfg.ServiceName,
		"version":   cfg.ServiceVersion,
		"db_driver": cfg.DBDriver,
	}
	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}

	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Logger:            profilerLogger{logger},
		Tags:              tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockDuration,
		},
	}
}

// profilerLogger adapts the profiler's printf logging. Its info lines are
// per-upload noise, so they go to debug.
type profilerLogger struct {
	*logging.Logger
}

func (l profilerLogger) Infof(format string, args ...any)  { l.Debug(fmt.Sprintf(format, args...)) }
func (l profilerLogger) Debugf(format string, args ...any) { l.Debug(fmt.Sprintf(format, args...)) }
func (l profilerLogger) Errorf(format string, args ...any) { l.Error(fmt.Sprintf(format, args...)) }
