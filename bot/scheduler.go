package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/misscatmint/kzkitty/catalog"
	"github.com/misscatmint/kzkitty/model"
)

// CatalogRefresher is what the scheduler needs from the catalog.
type CatalogRefresher interface {
	Refresh(ctx context.Context) catalog.RefreshResult
	Count() int
}

// Scheduler fires the daily map catalog refresh at the configured local
// hour, plus once on startup so a fresh install is usable immediately.
type Scheduler struct {
	catalog CatalogRefresher
	config  *model.Config
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewScheduler(b *Bot) *Scheduler {
	return &Scheduler{
		catalog: b.Catalog,
		config:  b.Config,
		done:    make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	if s.config.DisableRefresh {
		log.Println("Scheduled map refresh is disabled by environment variable.")
		return
	}
	s.wg.Add(1)
	go s.runDailyRefresh()
}

// Stop terminates the scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	close(s.done)
	s.wg.Wait()
}

func (s *Scheduler) runDailyRefresh() {
	defer s.wg.Done()

	if s.catalog.Count() == 0 {
		log.Println("Map catalog is empty, refreshing now...")
		s.refresh()
	}

	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), s.config.RefreshHour, 0, 0, 0, now.Location())
		if !now.Before(next) {
			next = next.Add(24 * time.Hour)
		}
		log.Printf("Next map catalog refresh scheduled for: %v", next)

		select {
		case <-time.After(next.Sub(now)):
			s.refresh()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result := s.catalog.Refresh(ctx)
	switch result.Status {
	case catalog.Updated:
		log.Printf("Scheduled refresh complete: %d maps", result.Count)
	case catalog.Stale:
		log.Printf("Scheduled refresh failed, catalog is stale since %v", result.RefreshedAt)
	case catalog.Skipped:
		log.Println("Scheduled refresh skipped, another refresh is in progress")
	}
}
