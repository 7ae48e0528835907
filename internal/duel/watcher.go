package duel

import (
	"context"
	"time"

	"github.com/diogo-fc/quiz-copa-do-mundo/internal/models"
)

// Watcher polls a duel at a fixed interval so one participant can observe
// the other's join or score submission. Watching stops as soon as the done
// condition holds or the context is canceled; there is no background task
// outliving its caller.
type Watcher struct {
	store    Store
	interval time.Duration
}

func NewWatcher(store Store, interval time.Duration) *Watcher {
	return &Watcher{store: store, interval: interval}
}

// Completed reports whether the duel has finished; the default stop
// condition for a watch.
func Completed(d *models.Duel) bool {
	return d.Status == models.DuelCompleted
}

// OpponentJoined reports whether the opponent seat is taken; the stop
// condition for a challenger waiting on an opponent.
func OpponentJoined(d *models.Duel) bool {
	return d.OpponentID != nil
}

// Watch emits the current duel state immediately and then on every observed
// change. The channel closes once done(duel) is true or ctx ends.
func (w *Watcher) Watch(ctx context.Context, duelID string, done func(*models.Duel) bool) (<-chan *models.Duel, error) {
	current, err := w.store.Get(duelID)
	if err != nil {
		return nil, err
	}

	updates := make(chan *models.Duel, 1)
	updates <- current
	if done(current) {
		close(updates)
		return updates, nil
	}

	go func() {
		defer close(updates)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		prev := current
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d, err := w.store.Get(duelID)
				if err != nil {
					continue
				}
				if changed(prev, d) {
					select {
					case updates <- d:
					case <-ctx.Done():
						return
					}
					prev = d
				}
				if done(d) {
					return
				}
			}
		}
	}()

	return updates, nil
}

func changed(a, b *models.Duel) bool {
	if a.Status != b.Status {
		return true
	}
	if (a.OpponentID == nil) != (b.OpponentID == nil) {
		return true
	}
	if (a.ChallengerScore == nil) != (b.ChallengerScore == nil) {
		return true
	}
	if (a.OpponentScore == nil) != (b.OpponentScore == nil) {
		return true
	}
	return false
}
