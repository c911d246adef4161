package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/model"
)

const saveTimeout = 5 * time.Second

type saveJob struct {
	mode       string
	opponentID string
	snap       *model.Snapshot
}

// AsyncSaver decouples snapshot writes from the decision path: Enqueue
// never blocks, and a single background goroutine drains the queue.
// When the queue is full or a write fails the snapshot is dropped with
// a warning; the next periodic save will carry the same counters.
type AsyncSaver struct {
	store SnapshotStore
	jobs  chan saveJob

	closeOnce sync.Once
	done      chan struct{}
}

// NewAsyncSaver starts a saver draining into store. bufSize bounds the
// number of pending snapshots.
func NewAsyncSaver(store SnapshotStore, bufSize int) *AsyncSaver {
	if bufSize <= 0 {
		bufSize = 16
	}
	s := &AsyncSaver{
		store: store,
		jobs:  make(chan saveJob, bufSize),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncSaver) run() {
	defer close(s.done)
	for job := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := s.store.SaveSnapshot(ctx, job.mode, job.opponentID, job.snap)
		cancel()
		if err != nil {
			log.Warn().Err(err).
				Str("mode", job.mode).
				Str("opponent", job.opponentID).
				Msg("snapshot save failed; dropping")
		}
	}
}

// Enqueue submits a snapshot for saving without blocking. A full queue
// drops the snapshot.
func (s *AsyncSaver) Enqueue(mode, opponentID string, snap *model.Snapshot) {
	select {
	case s.jobs <- saveJob{mode: mode, opponentID: opponentID, snap: snap}:
	default:
		log.Warn().
			Str("mode", mode).
			Str("opponent", opponentID).
			Msg("snapshot queue full; dropping save")
	}
}

// Close stops accepting work and waits for queued saves to drain.
func (s *AsyncSaver) Close() {
	s.closeOnce.Do(func() { close(s.jobs) })
	<-s.done
}
