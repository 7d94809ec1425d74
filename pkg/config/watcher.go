package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/listen-stream/music-svc/pkg/logger"
)

// ChangeHandler receives the business configuration after a reload.
type ChangeHandler func(cfg *BusinessConfig) error

// Watcher polls the Consul KV prefix and re-applies the overlay when its
// modify index moves. Keys deleted from KV keep their last loaded value.
type Watcher struct {
	loader   *ConsulLoader
	interval time.Duration
	log      logger.Logger

	mu        sync.Mutex
	current   BusinessConfig
	lastIndex uint64
	handlers  []ChangeHandler

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts from current, the configuration already in effect.
func NewWatcher(loader *ConsulLoader, current BusinessConfig, interval time.Duration, log logger.Logger) *Watcher {
	return &Watcher{
		loader:   loader,
		interval: interval,
		log:      log,
		current:  current,
	}
}

// OnChange registers a handler to be called when configuration changes.
func (w *Watcher) OnChange(handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start polls until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.watch(ctx)
}

// Stop stops polling and waits for an in-flight reload to finish.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) watch(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.checkForChanges(ctx); err != nil && ctx.Err() == nil {
				w.log.Warn("config reload failed", logger.Error(err))
			}
		}
	}
}

// checkForChanges reloads when the KV index moved and reports whether it did.
// The first call only records the index.
func (w *Watcher) checkForChanges(ctx context.Context) (bool, error) {
	w.mu.Lock()
	last := w.lastIndex
	w.mu.Unlock()

	index, err := w.loader.lastIndex(ctx, last, w.interval)
	if err != nil {
		return false, err
	}
	if last == 0 || index == last {
		w.mu.Lock()
		w.lastIndex = index
		w.mu.Unlock()
		return false, nil
	}

	w.mu.Lock()
	next := w.current
	w.mu.Unlock()

	if err := w.loader.Overlay(ctx, &next); err != nil {
		return false, err
	}
	if err := NewValidator().ValidateBusiness(&next); err != nil {
		return false, fmt.Errorf("invalid business config: %w", err)
	}

	w.mu.Lock()
	w.current = next
	w.lastIndex = index
	handlers := append([]ChangeHandler(nil), w.handlers...)
	w.mu.Unlock()

	w.log.Info("business config reloaded", logger.Int64("index", int64(index)))
	for _, handler := range handlers {
		if err := handler(&next); err != nil {
			w.log.Warn("config change handler failed", logger.Error(err))
		}
	}
	return true, nil
}
