package usecase

import (
	"context"
	"sync"
	"time"

	"webshop/internal/domain/entity"
	"webshop/internal/infrastructure/metrics"
	"webshop/pkg/logger"
)

const (
	sourceActivate = "activate"
	sourcePush     = "push"
	sourcePoll     = "poll"
)

// LiveUpdateChannel keeps the messages view fresh while it is open. It is
// active only while the view is open and a user is logged in. Push
// notifications and the poll ticker both feed a one-slot trigger, so bursts
// collapse into a single pending refresh handled by one goroutine.
type LiveUpdateChannel struct {
	messages     *MessageUseCase
	push         PushListener
	pollInterval time.Duration
	metrics      *metrics.MetricsManager

	mu         sync.Mutex
	viewActive bool
	email      string
	running    *liveRun
}

type liveRun struct {
	email  string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewLiveUpdateChannel(messages *MessageUseCase, push PushListener, pollInterval time.Duration, m *metrics.MetricsManager) *LiveUpdateChannel {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &LiveUpdateChannel{
		messages:     messages,
		push:         push,
		pollInterval: pollInterval,
		metrics:      m,
	}
}

func (ch *LiveUpdateChannel) SetViewActive(active bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.viewActive = active
	ch.reconcileLocked()
}

// SetUser follows session changes; "" means logged out.
func (ch *LiveUpdateChannel) SetUser(email string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.email = email
	ch.reconcileLocked()
}

func (ch *LiveUpdateChannel) Active() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.running != nil
}

// Stop deactivates the channel and waits for its goroutines.
func (ch *LiveUpdateChannel) Stop() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.viewActive = false
	ch.reconcileLocked()
}

func (ch *LiveUpdateChannel) reconcileLocked() {
	want := ch.viewActive && ch.email != ""
	if ch.running != nil && (!want || ch.running.email != ch.email) {
		ch.running.cancel()
		ch.running.wg.Wait()
		ch.running = nil
		logger.Debug("live updates stopped")
	}
	if want && ch.running == nil {
		ch.running = ch.start(ch.email)
		logger.Debug("live updates started for %s", ch.email)
	}
}

func (ch *LiveUpdateChannel) start(email string) *liveRun {
	ctx, cancel := context.WithCancel(context.Background())
	run := &liveRun{email: email, cancel: cancel}
	trigger := make(chan string, 1)
	signal := func(source string) {
		select {
		case trigger <- source:
		default:
		}
	}

	signal(sourceActivate)

	run.wg.Add(2)
	go func() {
		defer run.wg.Done()
		ticker := time.NewTicker(ch.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				signal(sourcePoll)
			}
		}
	}()

	go func() {
		defer run.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case source := <-trigger:
				ch.metrics.ObserveLiveRefresh(source)
				if err := ch.messages.RefreshMessages(ctx); err != nil && ctx.Err() == nil {
					logger.Debug("message refresh (%s) failed: %v", source, err)
				}
			}
		}
	}()

	if ch.push != nil {
		run.wg.Add(1)
		go func() {
			defer run.wg.Done()
			ch.push.Listen(ctx, entity.UserTopic(email), func() { signal(sourcePush) })
		}()
	}

	return run
}
