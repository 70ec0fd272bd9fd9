package chatingest

import (
	"context"
	"errors"
	"time"

	"github.com/dkoraitest/consultant-copilot/internal/logger"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// Run drives the ingestor until ctx is cancelled: connect, subscribe to
// every active room, run an immediate catch-up reconciliation, then loop the
// periodic reconciler on a fixed interval. A dropped connection triggers a
// reconnect with capped exponential backoff; authorization failures are
// fatal and return ErrAuthFailed so the caller can exit the process with a
// distinctive code.
func (in *Ingestor) Run(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := in.runConnected(ctx)
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrAuthFailed) {
			return err
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		if backoff > reconnectBackoffCap {
			backoff = reconnectBackoffCap
		}
		attempt++
		logger.GetLogger(ctx).WithField("component", "chatingest").
			Errorf("chat session disconnected, reconnecting in %v: %v", backoff, err)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runConnected connects once, subscribes the live handler, and runs the
// periodic reconciler until ctx is cancelled or the session reports an
// error. It returns nil only on a clean shutdown via ctx cancellation.
func (in *Ingestor) runConnected(ctx context.Context) error {
	log := logger.GetLogger(ctx).WithField("component", "chatingest")

	if err := in.session.Connect(ctx); err != nil {
		return err
	}
	defer in.disconnect(ctx)

	if _, err := in.session.Self(ctx); err != nil {
		return ErrAuthFailed
	}

	rooms, err := in.store.ListActiveChatRooms(ctx)
	if err != nil {
		return err
	}
	roomIDs := make([]int64, len(rooms))
	for idx, r := range rooms {
		roomIDs[idx] = r.ExternalID
	}
	log.Infof("monitoring %d active chat rooms", len(roomIDs))

	unsubscribe, err := in.session.Subscribe(ctx, roomIDs, func(m interfaces.ChatMessage) {
		if err := in.handleMessage(ctx, m.ChatID, m); err != nil {
			log.Errorf("live message handler: %v", err)
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	if err := in.Reconcile(ctx); err != nil {
		log.Errorf("startup reconciliation: %v", err)
	}

	ticker := time.NewTicker(in.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := in.Reconcile(ctx); err != nil {
				log.Errorf("periodic reconciliation: %v", err)
			}
		}
	}
}

// disconnect tears the session down within the shutdown grace period,
// independent of the (possibly already-cancelled) run context.
func (in *Ingestor) disconnect(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := in.session.Disconnect(shutdownCtx); err != nil {
		logger.GetLogger(ctx).WithField("component", "chatingest").Warnf("disconnect: %v", err)
	}
}
