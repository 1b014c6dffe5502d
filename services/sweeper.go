package services

import (
	"context"
	"log"
	"time"
)

// Sweeper runs a named sweep function on a fixed interval until stopped. A
// failed sweep waits for the next tick; there is no internal cancellation of
// an in-flight sweep beyond the context.
type Sweeper struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error

	stop chan struct{}
	done chan struct{}
}

// Start launches the sweep loop. Call Stop to halt it.
func (s *Sweeper) Start(ctx context.Context) {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		log.Printf("⏰ %s sweep started (every %s)", s.Name, s.Interval)
		for {
			select {
			case <-ticker.C:
				if err := s.Run(ctx); err != nil {
					log.Printf("⚠️ %s sweep failed: %v", s.Name, err)
				}
			case <-s.stop:
				log.Printf("⏰ %s sweep stopped", s.Name)
				return
			case <-ctx.Done():
				log.Printf("⏰ %s sweep stopped: %v", s.Name, ctx.Err())
				return
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
}
