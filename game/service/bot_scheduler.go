package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrSchedulerClosed is returned by Close when called twice
var ErrSchedulerClosed = errors.New("bot scheduler closed")

// BotScheduler runs bot turn chains off the request path. Each game is
// queued at most once; a game scheduled while its chain is running is
// queued again once that chain finishes.
type BotScheduler struct {
	run     func(ctx context.Context, gameID string)
	logger  *zap.SugaredLogger
	workers int

	mu      sync.Mutex
	queue   []string
	pending map[string]bool
	requeue map[string]bool
	closed  bool
	wake    chan struct{}

	inflight sync.WaitGroup
	done     sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewBotScheduler starts workers goroutines that call run for every
// scheduled game id
func NewBotScheduler(workers int, logger *zap.SugaredLogger, run func(ctx context.Context, gameID string)) *BotScheduler {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &BotScheduler{
		run:     run,
		logger:  logger,
		workers: workers,
		pending: make(map[string]bool),
		requeue: make(map[string]bool),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workers; i++ {
		b.done.Add(1)
		go b.worker()
	}
	return b
}

// Schedule queues a bot chain for the game
func (b *BotScheduler) Schedule(gameID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.pending[gameID] {
		b.requeue[gameID] = true
		return
	}
	b.enqueueLocked(gameID)
}

func (b *BotScheduler) enqueueLocked(gameID string) {
	b.pending[gameID] = true
	b.inflight.Add(1)
	b.queue = append(b.queue, gameID)
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Wait blocks until the queue is empty and no chain is running
func (b *BotScheduler) Wait() {
	b.inflight.Wait()
}

// Close stops accepting work, cancels running chains and waits for the
// workers to exit or ctx to expire
func (b *BotScheduler) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrSchedulerClosed
	}
	b.closed = true
	dropped := len(b.queue)
	b.queue = nil
	b.mu.Unlock()

	for i := 0; i < dropped; i++ {
		b.inflight.Done()
	}
	b.cancel()

	stopped := make(chan struct{})
	go func() {
		b.done.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *BotScheduler) worker() {
	defer b.done.Done()
	for {
		gameID, ok := b.next()
		if !ok {
			select {
			case <-b.wake:
				continue
			case <-b.ctx.Done():
				return
			}
		}
		b.process(gameID)
	}
}

func (b *BotScheduler) next() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return "", false
	}
	gameID := b.queue[0]
	b.queue = b.queue[1:]
	if len(b.queue) > 0 {
		// let another idle worker pick up the rest
		select {
		case b.wake <- struct{}{}:
		default:
		}
	}
	return gameID, true
}

func (b *BotScheduler) process(gameID string) {
	defer b.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorw("bot chain panicked", "game", gameID, "panic", r)
		}
		b.mu.Lock()
		delete(b.pending, gameID)
		again := b.requeue[gameID]
		delete(b.requeue, gameID)
		if again && !b.closed {
			b.enqueueLocked(gameID)
		}
		b.mu.Unlock()
	}()

	b.logger.Debugw("running bot chain", "game", gameID)
	b.run(b.ctx, gameID)
}
