package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/sortition/internal/logging"
	"github.com/arloliu/sortition/types"
)

// watchDebounce batches rapid editor write/rename sequences into a single
// change notification.
const watchDebounce = 100 * time.Millisecond

// File implements an experiment source backed by a YAML definition file.
//
// The file holds the complete experiment set:
//
//	experiments:
//	  - key: inv.strategy
//	    name: Inventory reservation strategy
//	    variants: [optimistic, pessimistic]
//	    sampling: 1.0
//	    status: active
//
// Watch turns the file into a hot-reload source: on every change the
// provided callback fires, and typical wiring re-runs
// Engine.LoadFromSource from it.
type File struct {
	path   string
	logger types.Logger
}

var _ types.ExperimentSource = (*File)(nil)

// fileDoc is the YAML document shape.
type fileDoc struct {
	Experiments []types.Experiment `yaml:"experiments"`
}

// NewFile creates a new file-backed experiment source.
//
// Parameters:
//   - path: Path to the YAML definition file
//   - logger: Logger for watch events (nop logger if nil)
//
// Returns:
//   - *File: Initialized file source
func NewFile(path string, logger types.Logger) *File {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &File{path: path, logger: logger}
}

// ListExperiments reads and decodes the definition file.
//
// Returns:
//   - []types.Experiment: All experiments declared in the file
//   - error: Read or YAML decode failure
func (f *File) ListExperiments(_ context.Context) ([]types.Experiment, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file %q: %w", f.path, err)
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse experiment file %q: %w", f.path, err)
	}

	return doc.Experiments, nil
}

// Watch invokes onChange whenever the definition file changes.
//
// The watcher observes the containing directory rather than the file
// itself, because editors and config management tools typically replace
// the file (write-temp-then-rename) and a direct file watch would be
// lost after the first replacement. Rapid event bursts are debounced.
//
// The watch runs until ctx is cancelled. Watcher errors are logged and
// the loop continues; only watcher setup failures are returned.
//
// Parameters:
//   - ctx: Context controlling the watch lifetime
//   - onChange: Callback fired after each (debounced) file change
//
// Returns:
//   - error: Wrapped types.ErrWatcherFailed on setup failure
//
// Example:
//
//	src := source.NewFile("experiments.yaml", logger)
//	err := src.Watch(ctx, func(ctx context.Context) {
//	    if err := eng.LoadFromSource(ctx, src); err != nil {
//	        logger.Error("experiment reload failed", "error", err)
//	    }
//	})
func (f *File) Watch(ctx context.Context, onChange func(ctx context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrWatcherFailed, err)
	}

	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()

		return fmt.Errorf("%w: watch %q: %w", types.ErrWatcherFailed, dir, err)
	}

	go f.watchLoop(ctx, watcher, onChange)

	return nil
}

// watchLoop handles fsnotify events until the context is cancelled.
func (f *File) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func(ctx context.Context)) {
	defer watcher.Close()

	base := filepath.Base(f.path)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			f.logger.Debug("experiment file changed", "path", f.path, "op", event.Op.String())

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			onChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Error("experiment file watcher error", "path", f.path, "error", err)
		}
	}
}
