// Package broadcast fans a stream of state values out to many readers.
//
// Broadcaster keeps only the most recent value. A new subscriber receives
// that value straight away, and a subscriber that falls behind loses the
// intermediate values but never the newest one: each subscription buffers a
// single value which a newer Publish replaces. This suits state snapshots,
// where a reader only ever needs to render the latest.
//
//	b := broadcast.New[session.State]()
//	defer b.Close()
//
//	sub := b.Subscribe(ctx) // closed when ctx is cancelled
//	go func() {
//	    for state := range sub.C() {
//	        render(state)
//	    }
//	}()
//
//	b.Publish(state)
//
// Publish never blocks on readers. All methods are safe for concurrent use.
package broadcast
