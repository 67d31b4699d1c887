// Package client implements the offline-first sync client: changes are
// applied locally, queued durably and delivered to the server in batches.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
)

// Queue is the durable local queue of undelivered changes.
type Queue interface {
	Enqueue(ctx context.Context, change model.Change) (model.QueueEntry, error)
	Pending(ctx context.Context) ([]model.QueueEntry, error)
	Ack(ctx context.Context, ids []int64) error
	Clear(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}

// Profile caches the user record and optimistic progress.
type Profile interface {
	SaveUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, name string) (model.User, error)
	MarkProgress(ctx context.Context, name, moduleID string) error
	Progress(ctx context.Context, name string) ([]model.ModuleProgress, error)
}

// Transport delivers batches to the server.
type Transport interface {
	Sync(ctx context.Context, req model.SyncRequest) (model.User, error)
}

// SubmitResult reports what happened to a submitted change. Synced is false
// when the change is saved locally only and waits for the next flush.
type SubmitResult struct {
	Entry  model.QueueEntry
	Synced bool
	User   model.User
}

// Status is what the client knows without asking the server.
type Status struct {
	User      model.User
	Completed []model.ModuleProgress
	Pending   int
}

// FlushResult reports a delivered batch.
type FlushResult struct {
	Sent int
	User model.User
}

type Client struct {
	name      string
	queue     Queue
	profile   Profile
	transport Transport
	timeout   time.Duration
	logger    *logger.Logger

	// mu serializes flushes. Enqueue never takes it.
	mu     sync.Mutex
	notify chan struct{}
}

func New(name string, queue Queue, profile Profile, transport Transport, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		name:      name,
		queue:     queue,
		profile:   profile,
		transport: transport,
		timeout:   timeout,
		logger:    logger,
		notify:    make(chan struct{}, 1),
	}
}

// Name is the user the client syncs for.
func (c *Client) Name() string {
	return c.name
}

// Enqueue validates and durably appends a change. It never touches the
// network.
func (c *Client) Enqueue(ctx context.Context, change model.Change) (model.QueueEntry, error) {
	if err := change.Validate(); err != nil {
		return model.QueueEntry{}, err
	}
	entry, err := c.queue.Enqueue(ctx, change)
	if err != nil {
		return model.QueueEntry{}, fmt.Errorf("failed to enqueue change: %w", err)
	}
	c.logger.Debug("Sync client: change queued",
		"kind", string(change.Kind()),
		"id", entry.ID)
	return entry, nil
}

// Submit applies a change optimistically, queues it and tries to deliver
// the queue right away. A failed delivery is not an error: the change stays
// queued for the next flush.
func (c *Client) Submit(ctx context.Context, change model.Change) (SubmitResult, error) {
	if err := change.Validate(); err != nil {
		return SubmitResult{}, err
	}

	if err := c.applyLocal(ctx, change); err != nil {
		return SubmitResult{}, err
	}

	entry, err := c.Enqueue(ctx, change)
	if err != nil {
		return SubmitResult{}, err
	}

	res := SubmitResult{Entry: entry}
	flushed, err := c.Flush(ctx)
	if err != nil {
		c.logger.Info("Sync client: saved offline", "error", err.Error())
		res.User, _ = c.localUser(ctx)
		return res, nil
	}

	res.Synced = true
	res.User = flushed.User
	return res, nil
}

// applyLocal updates the cached record the way the server will.
func (c *Client) applyLocal(ctx context.Context, change model.Change) error {
	cm, ok := change.(model.CompleteModule)
	if !ok {
		return nil
	}

	if err := c.profile.MarkProgress(ctx, c.name, cm.ModuleID); err != nil {
		return fmt.Errorf("failed to record progress: %w", err)
	}

	user, err := c.localUser(ctx)
	if err != nil {
		return err
	}
	user.CompleteModule(cm.ModuleID)
	if user.Path != nil {
		user.Path.MarkModule(cm.ModuleID)
	}
	if err := c.profile.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}
	return nil
}

func (c *Client) localUser(ctx context.Context) (model.User, error) {
	user, err := c.profile.GetUser(ctx, c.name)
	if errors.Is(err, model.ErrNotFound) {
		return model.NewUser(c.name), nil
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to load cached user: %w", err)
	}
	return user, nil
}

// SetPath replaces the locally known path snapshot sent with every batch.
func (c *Client) SetPath(ctx context.Context, path model.Path) error {
	if err := path.Validate(); err != nil {
		return err
	}
	user, err := c.localUser(ctx)
	if err != nil {
		return err
	}
	p := path.Clone()
	user.Path = &p
	return c.profile.SaveUser(ctx, user)
}

// Flush delivers every queued entry as one batch. On success exactly the
// delivered entries are removed; entries queued meanwhile stay. On failure
// the queue is left untouched.
func (c *Client) Flush(ctx context.Context) (FlushResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending, err := c.queue.Pending(ctx)
	if err != nil {
		return FlushResult{}, fmt.Errorf("failed to read queue: %w", err)
	}
	if len(pending) == 0 {
		user, err := c.localUser(ctx)
		return FlushResult{User: user}, err
	}

	local, err := c.localUser(ctx)
	if err != nil {
		return FlushResult{}, err
	}

	req := model.SyncRequest{Name: c.name, Path: local.Path, Changes: make(model.Changes, 0, len(pending))}
	ids := make([]int64, 0, len(pending))
	for _, e := range pending {
		req.Changes = append(req.Changes, e.Change)
		ids = append(ids, e.ID)
	}

	sendCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	user, err := c.transport.Sync(sendCtx, req)
	if err != nil {
		c.logger.Debug("Sync client: delivery failed",
			"pending", len(pending),
			"error", err.Error())
		return FlushResult{}, err
	}

	if err := c.queue.Ack(ctx, ids); err != nil {
		// The server has the batch; redelivery later is harmless.
		return FlushResult{}, fmt.Errorf("failed to ack delivered entries: %w", err)
	}
	if err := c.profile.SaveUser(ctx, user); err != nil {
		c.logger.Warn("Sync client: failed to cache user", "error", err.Error())
	}

	c.logger.Info("Sync client: batch delivered",
		"sent", len(pending),
		"points", user.Points)
	return FlushResult{Sent: len(pending), User: user}, nil
}

// Pending lists queued entries.
func (c *Client) Pending(ctx context.Context) ([]model.QueueEntry, error) {
	return c.queue.Pending(ctx)
}

// Status reports the cached user, locally completed modules and the number
// of queued changes.
func (c *Client) Status(ctx context.Context) (Status, error) {
	user, err := c.localUser(ctx)
	if err != nil {
		return Status{}, err
	}
	completed, err := c.profile.Progress(ctx, c.name)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read progress: %w", err)
	}
	pending, err := c.queue.Count(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to count queue: %w", err)
	}
	return Status{User: user, Completed: completed, Pending: pending}, nil
}

// Clear drops every queued entry without delivering it.
func (c *Client) Clear(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Clear(ctx)
}

// Notify asks Run to flush now, typically after the connection came back.
func (c *Client) Notify() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Run flushes on every interval tick and on Notify until ctx is done.
func (c *Client) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-c.notify:
		}

		if _, err := c.Flush(ctx); err != nil && ctx.Err() == nil {
			c.logger.Debug("Sync client: background flush failed", "error", err.Error())
		}
	}
}
