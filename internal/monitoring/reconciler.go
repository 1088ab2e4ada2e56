package monitoring

import (
	"fmt"
	"time"

	"github.com/realworld-go/conduit-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Reconciler periodically recomputes every article's favorites counter from
// the favorites table. The counter is also recomputed inline after each
// favorite/unfavorite; this job repairs any drift from racing writers.
type Reconciler struct {
	articles services.ArticleServiceProvider
	schedule cron.Schedule
	ticker   *time.Ticker
	done     chan bool
	nextRun  time.Time
}

// NewReconciler creates a reconciler firing on the given cron expression.
func NewReconciler(articles services.ArticleServiceProvider, cronExpr string) (*Reconciler, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return &Reconciler{
		articles: articles,
		schedule: schedule,
		done:     make(chan bool),
		nextRun:  schedule.Next(time.Now()),
	}, nil
}

// Run starts the reconciler's ticking loop.
func (r *Reconciler) Run() {
	log.Info().Msg("Starting favorites reconciler")
	r.ticker = time.NewTicker(1 * time.Minute)
	defer r.ticker.Stop()

	for {
		select {
		case <-r.done:
			log.Info().Msg("Stopping favorites reconciler")
			return
		case <-r.ticker.C:
			now := time.Now()
			if now.After(r.nextRun) {
				r.reconcile()
				r.nextRun = r.schedule.Next(now)
			}
		}
	}
}

// Stop halts the reconciler.
func (r *Reconciler) Stop() {
	r.done <- true
}

func (r *Reconciler) reconcile() {
	n, err := r.articles.RecountAllFavorites()
	if err != nil {
		log.Error().Err(err).Msg("Favorites recount failed")
		return
	}
	log.Info().Int64("articles", n).Msg("Favorites counters reconciled")
}
