package xfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/sirupsen/logrus"
)

// Record is what a worker leaves behind when it exits.
type Record struct {
	ID       uint64
	Remote   string
	Bytes    int64
	Err      error
	Started  time.Time
	Finished time.Time
}

// Reaper tracks spawned workers and reclaims their records once they
// exit. Exits are announced on a one-slot channel, so several exits can
// collapse into a single wake-up; every wake-up drains the whole queue.
type Reaper struct {
	mu     sync.Mutex
	dead   *queue.Queue
	live   int
	nextID uint64
	reaped uint64
	wg     sync.WaitGroup
	notify chan struct{}
	onReap func(Record)
}

// NewReaper returns a reaper that calls onReap, if set, for every record
// it reclaims. onReap runs on the reaper's goroutine.
func NewReaper(onReap func(Record)) *Reaper {
	return &Reaper{
		dead:   queue.New(),
		notify: make(chan struct{}, 1),
		onReap: onReap,
	}
}

// Spawn runs fn on its own goroutine and returns the worker's id. fn fills
// in the record; a panic in fn is recorded as a resource failure instead
// of taking the process down.
func (r *Reaper) Spawn(remote string, fn func(rec *Record)) uint64 {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.live++
	r.mu.Unlock()
	r.wg.Add(1)

	rec := &Record{ID: id, Remote: remote, Started: time.Now()}
	go func() {
		defer func() {
			if p := recover(); p != nil {
				rec.Err = newError(KindResource, "worker", fmt.Errorf("panic: %v", p))
			}
			r.exit(*rec)
		}()
		fn(rec)
	}()
	return id
}

func (r *Reaper) exit(rec Record) {
	rec.Finished = time.Now()

	r.mu.Lock()
	r.dead.Add(rec)
	r.live--
	if r.live < 0 {
		r.mu.Unlock()
		panic("live worker count went under 0")
	}
	r.mu.Unlock()
	r.wg.Done()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Run reaps until ctx is done, then makes one last sweep.
func (r *Reaper) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.Sweep()
			return nil
		case <-r.notify:
			r.Sweep()
		}
	}
}

// Sweep reclaims every record that is already queued and returns how many
// it took. It never waits for a worker.
func (r *Reaper) Sweep() int {
	n := 0
	for {
		r.mu.Lock()
		if r.dead.Length() == 0 {
			r.mu.Unlock()
			break
		}
		rec := r.dead.Remove().(Record)
		r.reaped++
		r.mu.Unlock()

		n++
		if r.onReap != nil {
			r.onReap(rec)
		}
	}

	if n > 0 {
		incr("reaper_sweep")
		logrus.WithFields(logrus.Fields{
			"function": "Sweep",
			"reaped":   n,
		}).Debug("Reaped terminated workers")
	}
	return n
}

// Wait blocks until no spawned worker is still running.
func (r *Reaper) Wait() {
	r.wg.Wait()
}

func (r *Reaper) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Unreaped is the number of exited workers whose record is still queued.
func (r *Reaper) Unreaped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dead.Length()
}

func (r *Reaper) Reaped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reaped
}
