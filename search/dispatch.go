package search

// Dispatcher runs result callbacks. Implementations must run functions one
// at a time, in the order they were dispatched.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface, for example
// to post callbacks onto an existing UI or event loop.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn)
func (f DispatcherFunc) Dispatch(fn func()) {
	f(fn)
}

// SerialDispatcher runs callbacks on its own goroutine.
type SerialDispatcher struct {
	q *workQueue
}

// NewSerialDispatcher starts a dispatcher goroutine. Call Close to stop it.
func NewSerialDispatcher() *SerialDispatcher {
	return &SerialDispatcher{q: newWorkQueue()}
}

// Dispatch queues fn. It is dropped if the dispatcher is closed.
func (d *SerialDispatcher) Dispatch(fn func()) {
	d.q.push(fn)
}

// Close stops the dispatcher after pending callbacks have run
func (d *SerialDispatcher) Close() {
	d.q.close()
}
