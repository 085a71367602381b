// Package progress counts completed measurements across sweep workers.
//
// Workers hold a [Sender] and only ever send; a single consumer goroutine
// running [Aggregator.Run] owns the count and forwards it to an observer
// (a progress bar, a logger). The sweep driver closes the aggregator once
// every worker has returned and waits for Run to finish before handing
// results on.
package progress

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrIncomplete indicates the input was closed before the expected number
	// of signals arrived.
	ErrIncomplete = errors.New("progress: input closed before all signals arrived")

	// ErrObserver indicates the observer panicked while handling a signal.
	ErrObserver = errors.New("progress: observer failed")
)

// Observer is called by the consumer after every signal with the running
// count and the expected total.
type Observer func(done, total int64)

type Aggregator struct {
	total    int64
	signals  chan struct{}
	count    atomic.Int64
	observer Observer

	done      chan struct{}
	closeOnce sync.Once
}

// New returns an aggregator expecting total signals. The input is buffered
// to total, so senders never wait on the consumer.
func New(total int64, observer Observer) *Aggregator {
	if total < 0 {
		total = 0
	}
	return &Aggregator{
		total:    total,
		signals:  make(chan struct{}, total),
		observer: observer,
		done:     make(chan struct{}),
	}
}

// Sender is the producer side handed to a worker.
type Sender struct {
	ch chan<- struct{}
}

// Signal records one completed measurement.
func (s Sender) Signal() {
	s.ch <- struct{}{}
}

func (a *Aggregator) Sender() Sender {
	return Sender{ch: a.signals}
}

func (a *Aggregator) Total() int64 { return a.total }

// Count is the number of signals consumed so far.
func (a *Aggregator) Count() int64 { return a.count.Load() }

// Done is closed when Run returns.
func (a *Aggregator) Done() <-chan struct{} { return a.done }

// Close ends the input. It must only be called once no Sender will signal
// again; further calls are no-ops.
func (a *Aggregator) Close() {
	a.closeOnce.Do(func() { close(a.signals) })
}

// Run consumes signals until the expected total has been received. It
// returns ErrIncomplete if the input is closed early.
func (a *Aggregator) Run() (err error) {
	defer close(a.done)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrObserver, r)
		}
	}()

	for a.count.Load() < a.total {
		if _, ok := <-a.signals; !ok {
			return fmt.Errorf("%w: received %d of %d", ErrIncomplete, a.count.Load(), a.total)
		}
		n := a.count.Add(1)
		if a.observer != nil {
			a.observer(n, a.total)
		}
	}
	return nil
}
