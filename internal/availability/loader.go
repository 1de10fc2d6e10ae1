package availability

import (
	"context"
	"sync"
	"time"
)

// LoadSnapshot fetches the constraint sets for one request. Business
// hours are always fetched; staff-scoped sets only when staffID is
// non-empty. The fetches have no ordering dependency, so they run
// concurrently. Any fetch error fails the whole load.
func LoadSnapshot(ctx context.Context, src Source, staffID string, from, to time.Time) (*Snapshot, error) {
	snap := &Snapshot{}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	run(func() error {
		week, err := src.BusinessWeek(ctx)
		if err != nil {
			return err
		}
		snap.Business = week
		return nil
	})

	if staffID != "" {
		run(func() error {
			hours, err := src.StaffHours(ctx, staffID)
			if err != nil {
				return err
			}
			snap.Staff = hours
			return nil
		})
		run(func() error {
			off, err := src.TimeOff(ctx, staffID)
			if err != nil {
				return err
			}
			snap.TimeOff = off
			return nil
		})
		run(func() error {
			blocks, err := src.TimeBlocks(ctx, staffID)
			if err != nil {
				return err
			}
			snap.Blocks = blocks
			return nil
		})
		run(func() error {
			bookings, err := src.Bookings(ctx, staffID, from, to)
			if err != nil {
				return err
			}
			snap.Bookings = bookings
			return nil
		})
	}

	wg.Wait()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return snap, nil
}
