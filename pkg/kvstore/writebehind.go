package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Aleksandergreg/storefront/config"
	"github.com/Aleksandergreg/storefront/pkg/logger"
	"github.com/Aleksandergreg/storefront/pkg/metrics"
)

// WriteBehind decouples in-memory mutations from durable writes: Set/Delete
// record the new value in an overlay and return immediately, while a single
// background goroutine drains writes to the inner store in order. Readers
// always see the overlay first, so a caller can never read a value older
// than its own write.
//
// The window between the in-memory update and the completed durable write is
// a known consistency gap: a crash inside it loses that mutation. Callers
// that need a durability barrier (order completion) call Flush.
type WriteBehind struct {
	inner Store

	mu      sync.Mutex
	seq     uint64
	overlay map[string]wbEntry

	queue chan wbOp
	wg    sync.WaitGroup
	quit  chan struct{}
	once  sync.Once
}

type wbEntry struct {
	seq       uint64
	raw       json.RawMessage
	tombstone bool
}

type wbOp struct {
	key string
	seq uint64
}

// NewWriteBehind wraps inner. Call Close to drain and stop the writer.
func NewWriteBehind(inner Store) *WriteBehind {
	w := &WriteBehind{
		inner:   inner,
		overlay: make(map[string]wbEntry),
		queue:   make(chan wbOp, 1024),
		quit:    make(chan struct{}),
	}
	go w.writeLoop()
	return w
}

func (w *WriteBehind) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	w.mu.Lock()
	e, ok := w.overlay[key]
	w.mu.Unlock()

	if ok {
		if e.tombstone {
			return false, nil
		}
		if err := json.Unmarshal(e.raw, dest); err != nil {
			return false, fmt.Errorf("kvstore/writebehind: unmarshal %s: %w", key, err)
		}
		return true, nil
	}

	return w.inner.Get(ctx, key, dest)
}

func (w *WriteBehind) Set(_ context.Context, key string, value interface{}) error {
	// Marshal now so the queued write is a snapshot of the value at Set
	// time, not of whatever the caller mutates afterwards.
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore/writebehind: marshal %s: %w", key, err)
	}
	w.enqueue(key, wbEntry{raw: raw})
	return nil
}

func (w *WriteBehind) Delete(_ context.Context, key string) error {
	w.enqueue(key, wbEntry{tombstone: true})
	return nil
}

func (w *WriteBehind) enqueue(key string, e wbEntry) {
	w.mu.Lock()
	w.seq++
	e.seq = w.seq
	w.overlay[key] = e
	w.mu.Unlock()

	w.wg.Add(1)
	metrics.KVPendingWrites.Inc()
	w.queue <- wbOp{key: key, seq: e.seq}
}

// Flush blocks until every write enqueued before the call has reached the
// inner store (or ctx is done). This is the durability barrier used by
// order completion.
func (w *WriteBehind) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the background writer.
func (w *WriteBehind) Close() error {
	var err error
	w.once.Do(func() {
		w.wg.Wait()
		close(w.quit)
		err = w.inner.Close()
	})
	return err
}

func (w *WriteBehind) writeLoop() {
	for {
		select {
		case op := <-w.queue:
			w.apply(op)
		case <-w.quit:
			return
		}
	}
}

func (w *WriteBehind) apply(op wbOp) {
	defer w.wg.Done()
	defer metrics.KVPendingWrites.Dec()

	w.mu.Lock()
	e, ok := w.overlay[op.key]
	stale := !ok || e.seq != op.seq
	w.mu.Unlock()

	// A newer write for the same key supersedes this one; the newer op
	// will carry the value.
	if stale {
		return
	}

	ctx := context.Background()
	start := time.Now()
	var err error
	if e.tombstone {
		err = w.inner.Delete(ctx, op.key)
		metrics.ObserveKVWrite(config.KVDriver(), "delete", start)
	} else {
		err = w.inner.Set(ctx, op.key, e.raw)
		metrics.ObserveKVWrite(config.KVDriver(), "set", start)
	}
	if err != nil {
		// The in-memory state stays authoritative for this process; the
		// durable copy is behind until the next write of this key.
		logger.Error("kvstore: write-behind flush failed", "key", op.key, "error", err)
		return
	}

	w.mu.Lock()
	if cur, ok := w.overlay[op.key]; ok && cur.seq == op.seq {
		delete(w.overlay, op.key)
	}
	w.mu.Unlock()
}
