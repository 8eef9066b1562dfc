package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/campaign-system/internal/api/metrics"
	"github.com/99minutos/campaign-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	touchTimeout   = 5 * time.Second
)

// LastLoginStore is the subset of the account repository the workers need.
type LastLoginStore interface {
	TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error
}

type loginEvent struct {
	accountID int64
	at        time.Time
}

// Dispatcher applies last-login updates off the request path. Updates for the
// same account always land on the same worker, so they are applied in order.
type Dispatcher struct {
	workers []chan loginEvent
	store   LastLoginStore
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.LoginRecorder = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store LastLoginStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan loginEvent, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan loginEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record queues a last-login update. It never blocks: when the worker's
// buffer is full the update is dropped.
func (d *Dispatcher) Record(accountID int64, at time.Time) {
	idx := d.shardIndex(accountID)
	select {
	case d.workers[idx] <- loginEvent{accountID: accountID, at: at}:
		metrics.LoginQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.LoginUpdatesTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Int64("account_id", accountID).Int("worker_id", idx).Msg("login queue full, last-login update dropped")
	}
}

// shardIndex maps an account ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(accountID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(accountID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan loginEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			metrics.LoginQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.apply(ctx, id, ev)
		}
	}
}

func (d *Dispatcher) apply(ctx context.Context, id int, ev loginEvent) {
	ctx, cancel := context.WithTimeout(ctx, touchTimeout)
	defer cancel()

	if err := d.store.TouchLastLogin(ctx, ev.accountID, ev.at); err != nil {
		metrics.LoginUpdatesTotal.WithLabelValues("failed").Inc()
		d.log.Warn().Err(err).
			Int64("account_id", ev.accountID).
			Int("worker_id", id).
			Msg("last-login update failed")
		return
	}
	metrics.LoginUpdatesTotal.WithLabelValues("applied").Inc()
}
