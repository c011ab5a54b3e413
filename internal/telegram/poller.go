package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const maxPollBackoff = 30 * time.Second

// UpdateSink consumes incoming updates. The poller delivers sequentially,
// so implementations should queue work rather than process inline.
type UpdateSink interface {
	HandleUpdate(ctx context.Context, update Update)
}

// Poller fetches updates in a long-poll loop and hands them to a sink.
type Poller struct {
	client  *Client
	sink    UpdateSink
	timeout int
	logger  *slog.Logger
}

// NewPoller creates a poller. timeoutSeconds is the long-poll hold time
// passed to getUpdates.
func NewPoller(client *Client, sink UpdateSink, timeoutSeconds int, logger *slog.Logger) *Poller {
	return &Poller{
		client:  client,
		sink:    sink,
		timeout: timeoutSeconds,
		logger:  logger,
	}
}

// Run polls until ctx is cancelled. The backlog accumulated while the bot
// was down is dropped first so restarts do not replay stale interactions.
// Fetch errors are logged and retried with capped exponential backoff.
func (p *Poller) Run(ctx context.Context) error {
	offset, err := p.dropPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop pending updates: %w", err)
	}
	p.logger.Info("polling started", "offset", offset, "timeout_seconds", p.timeout)

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("failed to fetch updates", "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < maxPollBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, update := range updates {
			p.sink.HandleUpdate(ctx, update)
			offset = update.UpdateID + 1
		}
	}
}

// dropPending advances the offset past any queued backlog. getUpdates with
// offset -1 returns at most the newest pending update.
func (p *Poller) dropPending(ctx context.Context) (int64, error) {
	updates, err := p.client.GetUpdates(ctx, -1, 0)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, nil
	}
	last := updates[len(updates)-1]
	p.logger.Info("dropped pending backlog", "last_update_id", last.UpdateID)
	return last.UpdateID + 1, nil
}
