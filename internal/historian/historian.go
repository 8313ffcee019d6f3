// Package historian drains finished turn and game records from Redis and
// archives them in Postgres in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/sketch/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// popTimeout bounds each blocking pop so flushes and shutdown are noticed.
const popTimeout = time.Second

// pendingBatches caps how many batches' worth of records are held for retry
// while the store is failing.
const pendingBatches = 50

// Source yields queued records. ok is false when nothing arrived before the timeout.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (rec cache.ResultRecord, ok bool, err error)
}

// Store persists a batch of records atomically.
type Store interface {
	InsertResults(ctx context.Context, recs []cache.ResultRecord) error
}

// RedisSource BLPops JSON records from a Redis list.
type RedisSource struct {
	client *redis.Client
	queue  string
}

func NewRedisSource(client *redis.Client, queue string) *RedisSource {
	if queue == "" {
		queue = cache.DefaultQueueName
	}
	return &RedisSource{client: client, queue: queue}
}

func (s *RedisSource) Pop(ctx context.Context, timeout time.Duration) (cache.ResultRecord, bool, error) {
	res, err := s.client.BLPop(ctx, timeout, s.queue).Result()
	if errors.Is(err, redis.Nil) {
		return cache.ResultRecord{}, false, nil
	}
	if err != nil {
		return cache.ResultRecord{}, false, fmt.Errorf("BLPop %s: %w", s.queue, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return cache.ResultRecord{}, false, nil
	}
	var rec cache.ResultRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return cache.ResultRecord{}, false, fmt.Errorf("invalid result record: %w", err)
	}
	return rec, true, nil
}

// Service batches records from a Source into a Store. A batch is written when
// it reaches BatchSize, when FlushEvery has passed since the last write, and
// on shutdown. A failed write keeps its records and is retried on the next
// interval, oldest records dropped first once maxPending is exceeded.
type Service struct {
	source     Source
	store      Store
	batchSize  int
	maxPending int
	flushEvery time.Duration
	logger     *logrus.Logger

	batch     []cache.ResultRecord
	lastFlush time.Time
	retrying  bool
}

func NewService(source Source, store Store, batchSize int, flushEvery time.Duration, logger *logrus.Logger) *Service {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Service{
		source:     source,
		store:      store,
		batchSize:  batchSize,
		maxPending: batchSize * pendingBatches,
		flushEvery: flushEvery,
		logger:     logger,
		batch:      make([]cache.ResultRecord, 0, batchSize),
	}
}

// Run consumes until ctx is cancelled, then writes whatever is still buffered.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info("sketch-historian service started.")
	s.lastFlush = time.Now()

	for ctx.Err() == nil {
		timeout := popTimeout
		if s.flushEvery > 0 && s.flushEvery < timeout {
			timeout = s.flushEvery
		}
		rec, ok, err := s.source.Pop(ctx, timeout)
		switch {
		case err != nil && ctx.Err() == nil:
			s.logger.WithError(err).Error("pop failed")
		case ok:
			s.batch = append(s.batch, rec)
		}

		full := !s.retrying && len(s.batch) >= s.batchSize
		if full || time.Since(s.lastFlush) >= s.flushEvery {
			s.flush(ctx)
		}
	}

	// Drain with a fresh context so the final write is not cancelled with the loop.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(shutdownCtx)
	s.logger.Info("sketch-historian shutting down.")
}

func (s *Service) flush(ctx context.Context) {
	s.lastFlush = time.Now()
	if len(s.batch) == 0 {
		return
	}
	if err := s.store.InsertResults(ctx, s.batch); err != nil {
		s.retrying = true
		if over := len(s.batch) - s.maxPending; over > 0 {
			s.logger.WithField("records", over).Warn("retry buffer full, dropping oldest records")
			s.batch = append([]cache.ResultRecord(nil), s.batch[over:]...)
		}
		s.logger.WithError(err).WithField("records", len(s.batch)).Error("flush failed")
		return
	}
	s.logger.Debugf("Flushed %d records to DB.", len(s.batch))
	s.retrying = false
	s.batch = make([]cache.ResultRecord, 0, s.batchSize)
}
