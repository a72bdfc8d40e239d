package root

// Do submits fn to Root's single dispatch goroutine and blocks until it
// finishes running there. Every command-protocol request and every
// layout-protocol request lands on its own connection goroutine
// (internal/control, internal/layoutproto), but Do is the only door
// into Root's state: fn always runs serialized against every other
// submitted fn, one at a time, on whichever goroutine called Run
// (spec.md §5: "Single-threaded cooperative... no worker threads, no
// locks, and no shared mutable state across threads. All compositor
// logic runs on the loop.").
func (r *Root) Do(fn func()) {
	done := make(chan struct{})
	r.jobs <- func() {
		fn()
		close(done)
	}
	<-done
}

// Run drains submitted jobs one at a time until stop is closed. It must
// be started on exactly one goroutine for the life of the daemon; every
// access to Root's maps and slices happens either from that goroutine
// or from inside a job Do submitted to it.
func (r *Root) Run(stop <-chan struct{}) {
	for {
		select {
		case fn := <-r.jobs:
			fn()
		case <-stop:
			return
		}
	}
}
