// Package engine drives the migration loop: pick an archived message, publish
// it, record the outcome, repeat until nothing is left to do. Strictly
// sequential; replies can only be linked once their ancestor's new id is in
// the ledger, and the channel rate-limits us anyway.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shouya/telegram-undelete/internal/store"
)

// Publisher renders and sends one archived message, returning the id the
// channel assigned to the re-published copy.
type Publisher interface {
	Dispatch(ctx context.Context, msg *store.Message, replyTo int64) (int64, error)
}

// Stats summarizes a run.
type Stats struct {
	Attempted int
	Sent      int
	Failed    int
}

// Engine owns the migration loop. All ledger writes go through the store's
// ledger methods; nothing else may mutate migration state.
type Engine struct {
	db      *store.DB
	pub     Publisher
	sel     *Selector
	ceiling int
	logger  *zap.Logger
}

// New creates an engine with the given retry ceiling.
func New(db *store.DB, pub Publisher, ceiling int, logger *zap.Logger) *Engine {
	return &Engine{
		db:      db,
		pub:     pub,
		sel:     NewSelector(db, ceiling),
		ceiling: ceiling,
		logger:  logger,
	}
}

// Run processes messages until the selector is exhausted or the context is
// cancelled. Publish failures are absorbed into the retry ledger; only
// archive inconsistencies and ledger contract violations abort the run.
// Interrupting at any item boundary is safe: the ledger is the only state,
// and the next run resumes from it.
func (e *Engine) Run(ctx context.Context) (*Stats, error) {
	total, err := e.db.CountEligible()
	if err != nil {
		return &Stats{}, err
	}
	e.logger.Info("starting migration", zap.Int("eligible_messages", total))

	stats := &Stats{}
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("migration interrupted", zap.Int("sent", stats.Sent))
			return stats, ctx.Err()
		default:
		}

		id, ok, err := e.sel.Next()
		if err != nil {
			return stats, fmt.Errorf("select next message: %w", err)
		}
		if !ok {
			break
		}

		if err := e.processOne(ctx, id, stats); err != nil {
			return stats, err
		}
	}

	e.reportPermanentFailures()
	e.logger.Info("migration finished",
		zap.Int("attempted", stats.Attempted),
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

func (e *Engine) processOne(ctx context.Context, id int64, stats *Stats) error {
	msg, err := e.db.FetchMessage(id)
	if err != nil {
		// The selector promised this id exists; a miss means the archive and
		// the ledger disagree. Not retryable.
		return err
	}

	var replyTo int64
	if msg.ReplyTo != 0 {
		newID, ok, err := e.db.ResolveNewID(msg.ReplyTo)
		if err != nil {
			return err
		}
		if ok {
			replyTo = newID
		} else {
			e.logger.Info("reply target not migrated, sending unlinked",
				zap.Int64("old_id", id),
				zap.Int64("reply_to", msg.ReplyTo),
			)
		}
	}

	// The pending marker must be durable before the network call, so a crash
	// mid-publish is visible to the next run.
	if err := e.db.RecordAttempt(id); err != nil {
		return err
	}
	stats.Attempted++

	e.logger.Info("processing message",
		zap.Int64("old_id", id),
		zap.String("author", msg.AuthorName),
	)

	newID, err := e.pub.Dispatch(ctx, msg, replyTo)
	if err != nil {
		e.logger.Warn("publish failed",
			zap.Int64("old_id", id),
			zap.Error(err),
		)
		stats.Failed++
		return e.db.RecordFailure(id)
	}

	if err := e.db.RecordSuccess(id, newID); err != nil {
		return err
	}
	stats.Sent++
	e.logger.Info("message republished",
		zap.Int64("old_id", id),
		zap.Int64("new_id", newID),
	)
	return nil
}

func (e *Engine) reportPermanentFailures() {
	entries, err := e.db.PermanentFailures(e.ceiling)
	if err != nil {
		e.logger.Warn("could not list permanent failures", zap.Error(err))
		return
	}
	for _, entry := range entries {
		e.logger.Warn("message abandoned after repeated failures, kept in ledger",
			zap.Int64("old_id", entry.OldID),
			zap.Int("retries", entry.Retries),
		)
	}
}
