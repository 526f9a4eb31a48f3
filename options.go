package sortition

// Option configures an Engine with optional dependencies.
type Option func(*engineOptions)

// engineOptions holds optional Engine configuration.
type engineOptions struct {
	recorder Recorder
	hooks    *Hooks
	metrics  MetricsCollector
	logger   Logger
}

// WithRecorder sets the assignment recorder.
//
// Without a recorder, Record and ResolveAndRecord still return valid
// assignments; they simply skip persistence.
//
// Parameters:
//   - rec: Recorder implementation
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	rec := recorder.NewMemory()
//	eng, err := sortition.NewEngine(&cfg, sortition.WithRecorder(rec))
func WithRecorder(rec Recorder) Option {
	return func(o *engineOptions) {
		o.recorder = rec
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	hooks := &sortition.Hooks{
//	    OnFirstExposure: func(ctx context.Context, subject string, a sortition.Assignment) {
//	        analytics.Track(subject, a)
//	    },
//	}
//	eng, err := sortition.NewEngine(&cfg, sortition.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *engineOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - collector: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	collector := myPrometheusCollector
//	eng, err := sortition.NewEngine(&cfg, sortition.WithMetrics(collector))
func WithMetrics(collector MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = collector
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	eng, err := sortition.NewEngine(&cfg, sortition.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}
