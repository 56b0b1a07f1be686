package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Handler processes one item.
type Handler[T any] func(ctx context.Context, item T) error

// Dispatcher routes items to a fixed set of workers using consistent hashing
// on the item key, so items sharing a key are handled in enqueue order.
type Dispatcher[T any] struct {
	workers []chan T
	key     func(T) string
	handle  Handler[T]
	log     zerolog.Logger

	ctx  context.Context
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher[T any](numWorkers int, key func(T) string, handle Handler[T], log zerolog.Logger) *Dispatcher[T] {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher[T]{
		workers: make([]chan T, numWorkers),
		key:     key,
		handle:  handle,
		log:     log,
		ctx:     context.Background(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan T, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher[T]) Start(ctx context.Context) {
	d.ctx = ctx
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an item to the worker responsible for its key. It blocks
// while that worker's buffer is full, and gives up once the context passed
// to Start is cancelled.
func (d *Dispatcher[T]) Enqueue(item T) {
	select {
	case d.workers[d.shardIndex(d.key(item))] <- item:
	case <-d.ctx.Done():
	}
}

// EnqueueBatch enqueues multiple items preserving per-key ordering.
func (d *Dispatcher[T]) EnqueueBatch(items []T) {
	for _, item := range items {
		d.Enqueue(item)
	}
}

// Close stops accepting items, waits for the workers to drain and returns
// every handler failure joined together.
func (d *Dispatcher[T]) Close() error {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ctx.Err(); err != nil {
		d.errs = append(d.errs, err)
	}
	return errors.Join(d.errs...)
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher[T]) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher[T]) runWorker(ctx context.Context, id int, ch <-chan T) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-ch:
			if !ok {
				return
			}
			if err := d.handle(ctx, item); err != nil {
				d.log.Error().Err(err).
					Str("key", d.key(item)).
					Int("worker_id", id).
					Msg("item processing failed")
				d.mu.Lock()
				d.errs = append(d.errs, err)
				d.mu.Unlock()
			}
		}
	}
}
