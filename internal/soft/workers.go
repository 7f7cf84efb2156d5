package soft

import (
	"context"
	"sync"
)

// bandRows is the height of one unit of work handed to a worker.
const bandRows = 16

// forEachBand splits [0, height) into row bands and runs fn on them from a
// fixed pool of workers. Bands never overlap, so fn may write its rows
// without locking.
func forEachBand(ctx context.Context, workers, height int, fn func(y0, y1 int)) error {
	if workers < 1 {
		workers = 1
	}
	bands := make(chan [2]int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range bands {
				fn(b[0], b[1])
			}
		}()
	}

	var err error
	for y := 0; y < height; y += bandRows {
		if err = ctx.Err(); err != nil {
			break
		}
		bands <- [2]int{y, min(y+bandRows, height)}
	}
	close(bands)
	wg.Wait()
	return err
}
