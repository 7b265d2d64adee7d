// Package filewatch fires trigger_file_watch nodes on file system events.
package filewatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

const (
	EventAll    = "all"
	EventCreate = "create"
	EventModify = "modify"
	EventDelete = "delete"
)

var (
	ErrPathRequired = errors.New("file watch trigger path is required")
	ErrUnknownEvent = errors.New("unknown file watch event")
)

// Host keeps one fsnotify watcher per registered trigger node.
type Host struct {
	logger   *slog.Logger
	mu       sync.Mutex
	watchers map[string][]*watch
}

type watch struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewHost(logger *slog.Logger) *Host {
	return &Host{
		logger:   logger.With("module", "file_watch_trigger"),
		watchers: make(map[string][]*watch),
	}
}

func (h *Host) Type() models.NodeType {
	return models.NodeTypeTriggerFileWatch
}

func (h *Host) Register(ctx context.Context, flowID string, node models.Node, callback protocol.TriggerCallback) error {
	path := nodeconfig.String(node.Config, "path", "")
	if path == "" {
		return ErrPathRequired
	}

	filter := nodeconfig.String(node.Config, "events", EventAll)
	switch filter {
	case EventAll, EventCreate, EventModify, EventDelete:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, filter)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	err = watcher.Add(path)
	if err != nil {
		_ = watcher.Close()

		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &watch{watcher: watcher, done: make(chan struct{})}
	logger := h.logger.With("flow_id", flowID, "node_id", node.ID, "path", path, "events", filter)

	go w.loop(context.WithoutCancel(ctx), logger, filter, func(ctx context.Context, payload map[string]any) {
		err := callback(ctx, flowID, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Error starting flow for trigger", "error", err)
		}
	})

	h.mu.Lock()
	h.watchers[flowID] = append(h.watchers[flowID], w)
	h.mu.Unlock()

	logger.InfoContext(ctx, "Watching path")

	return nil
}

func (h *Host) Unregister(_ context.Context, flowID string) error {
	h.mu.Lock()
	watches := h.watchers[flowID]
	delete(h.watchers, flowID)
	h.mu.Unlock()

	return closeAll(watches)
}

func (h *Host) Stop(_ context.Context) error {
	h.mu.Lock()
	var watches []*watch
	for flowID, list := range h.watchers {
		watches = append(watches, list...)
		delete(h.watchers, flowID)
	}
	h.mu.Unlock()

	return closeAll(watches)
}

func closeAll(watches []*watch) error {
	var errs []error

	for _, w := range watches {
		errs = append(errs, w.watcher.Close())
		<-w.done
	}

	return errors.Join(errs...)
}

func (w *watch) loop(ctx context.Context, logger *slog.Logger, filter string, fire func(context.Context, map[string]any)) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			kind := Classify(event.Op)
			if kind == "" || (filter != EventAll && filter != kind) {
				continue
			}

			logger.DebugContext(ctx, "File event", "event", kind, "name", event.Name)

			fire(ctx, map[string]any{
				"path":      event.Name,
				"event":     kind,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			logger.ErrorContext(ctx, "Watcher error", "error", err)
		}
	}
}

// Classify maps an fsnotify operation to a trigger event name. Chmod-only events map to "".
func Classify(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreate
	case op.Has(fsnotify.Write):
		return EventModify
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return EventDelete
	default:
		return ""
	}
}
