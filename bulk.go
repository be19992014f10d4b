package mailverify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/optimode/mailverify/types"
)

// RetryItem is an address queued for another attempt within a bulk run.
type RetryItem struct {
	Address string
	Attempt int // attempt number the retry will run as

	slot int // index of the address within its chunk
}

// retryQueue is the FIFO of pending retries for one chunk. Pool workers
// push concurrently; draining happens on a single goroutine.
type retryQueue struct {
	mu    sync.Mutex
	items []RetryItem
}

func (q *retryQueue) push(item RetryItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

func (q *retryQueue) pop() (RetryItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return RetryItem{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Bulk is the chunked bulk validation engine.
type Bulk struct {
	validator AddressValidator
	opts      BulkOptions
}

// NewBulk creates a bulk engine driving v. Start from DefaultBulkOptions()
// to get the standard pacing.
func NewBulk(v AddressValidator, opts BulkOptions) *Bulk {
	return &Bulk{validator: v, opts: opts.withDefaults()}
}

func (o BulkOptions) withDefaults() BulkOptions {
	def := DefaultBulkOptions()
	if o.Workers <= 0 {
		o.Workers = def.Workers
	}
	if o.Observer == nil {
		o.Observer = def.Observer
	}
	if o.AttemptDelay < 0 {
		o.AttemptDelay = 0
	}
	if o.ChunkPause < 0 {
		o.ChunkPause = 0
	}
	return o
}

// Run validates addresses and returns one result per distinct address.
//
// Addresses are split into consecutive chunks of at most chunkSize
// (chunkSize <= 0 means a single chunk). Within a chunk up to Workers
// validations run concurrently, each preceded by AttemptDelay. An attempt
// that returns an error (or panics) is queued for retry while its attempt
// number is below maxRetries, otherwise it becomes an
// "Error after N attempts: <cause>" result. Once the chunk's pool has
// drained, its retries run one at a time before the next chunk starts,
// and ChunkPause separates chunks.
//
// An address that occurs more than once is validated once per occurrence;
// the result of the last occurrence in input order is kept.
//
// Run does not stop early when ctx is done. Pacing sleeps are cut short
// and the remaining attempts fail with the context error, so every
// address still receives a result.
func (b *Bulk) Run(ctx context.Context, addresses []string, chunkSize, maxRetries int) *ResultSet {
	results := NewResultSet()
	total := len(addresses)
	if total == 0 {
		return results
	}
	if chunkSize <= 0 || chunkSize > total {
		chunkSize = total
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	chunks := (total + chunkSize - 1) / chunkSize
	for ci := 0; ci < chunks; ci++ {
		start := ci * chunkSize
		end := min(start+chunkSize, total)
		chunk := addresses[start:end]

		info := ChunkInfo{
			Index:     ci,
			Chunks:    chunks,
			Size:      len(chunk),
			Processed: start,
			Total:     total,
			Progress:  percent(start, total),
		}
		b.opts.Observer.ChunkStarted(info)

		slots := b.runChunk(ctx, chunk, maxRetries)
		for i, address := range chunk {
			results.Set(address, slots[i])
		}

		info.Processed = end
		info.Progress = percent(end, total)
		b.opts.Observer.ChunkDone(info)

		if ci < chunks-1 {
			sleep(ctx, b.opts.ChunkPause)
		}
	}
	return results
}

// runChunk validates one chunk and returns its results by position.
func (b *Bulk) runChunk(ctx context.Context, chunk []string, maxRetries int) []Result {
	slots := make([]Result, len(chunk))
	queue := &retryQueue{}

	var g errgroup.Group
	g.SetLimit(b.opts.Workers)
	for i, address := range chunk {
		i, address := i, address
		g.Go(func() error {
			if r, done := b.process(ctx, address, 1, maxRetries); done {
				slots[i] = r
			} else {
				queue.push(RetryItem{Address: address, Attempt: 2, slot: i})
			}
			return nil
		})
	}
	_ = g.Wait()

	// Retries drain one at a time in FIFO order.
	for {
		item, ok := queue.pop()
		if !ok {
			break
		}
		r, done := b.process(ctx, item.Address, item.Attempt, maxRetries)
		if done {
			slots[item.slot] = r
			continue
		}
		item.Attempt++
		queue.push(item)
	}
	return slots
}

// process runs one attempt. It returns done=false when the attempt failed
// and should be retried.
func (b *Bulk) process(ctx context.Context, address string, attempt, maxRetries int) (Result, bool) {
	sleep(ctx, b.opts.AttemptDelay)

	r, err := b.attempt(ctx, address)
	if err == nil {
		return r, true
	}

	willRetry := attempt < maxRetries
	b.opts.Observer.AttemptFailed(address, attempt, err, willRetry)
	if willRetry {
		return Result{}, false
	}
	return types.Invalid(fmt.Sprintf("Error after %d attempts: %v", attempt, err)), true
}

// attempt calls the validator, turning a panic into an error.
func (b *Bulk) attempt(ctx context.Context, address string) (r Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return b.validator.Validate(ctx, address)
}

func percent(done, total int) int {
	return min(100, done*100/total)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
