package reactive

// Batch groups multiple signal updates into a single notification phase.
// Listeners affected by several writes inside the batch are notified once,
// when the outermost batch returns.
//
//	Batch(func() {
//	    first.Set("John")
//	    last.Set("Doe")
//	})
func Batch(fn func()) {
	ctx := getTrackingContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			processPendingUpdates(ctx)
		}
	}()

	fn()
}

func processPendingUpdates(ctx *TrackingContext) {
	for len(ctx.pendingUpdates) > 0 {
		updates := ctx.pendingUpdates
		ctx.pendingUpdates = nil

		seen := make(map[uint64]bool, len(updates))
		for _, l := range updates {
			id := l.ID()
			if seen[id] {
				continue
			}
			seen[id] = true
			l.MarkDirty()
		}
	}
}
