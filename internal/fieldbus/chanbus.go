package fieldbus

import "context"

// ChanBus is an in-memory SourceSink backed by buffered channels. It
// stands in for the physical field-bus driver in tests and in the
// reference CLI wiring, the way the teacher repo's scrapers stand behind a
// narrow interface rather than hardcoding one transport.
type ChanBus struct {
	in  chan Frame
	out chan Frame
}

// NewChanBus creates a ChanBus with the given channel capacity.
func NewChanBus(capacity int) *ChanBus {
	return &ChanBus{
		in:  make(chan Frame, capacity),
		out: make(chan Frame, capacity),
	}
}

// Recv implements Source.
func (b *ChanBus) Recv(ctx context.Context) (Frame, error) {
	select {
	case f := <-b.in:
		return f, nil
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Send implements Sink.
func (b *ChanBus) Send(ctx context.Context, f Frame) error {
	select {
	case b.out <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inject pushes a frame into the inbound queue, as the physical device
// would. Used by tests and by an external bridge process.
func (b *ChanBus) Inject(f Frame) { b.in <- f }

// Outbound returns the channel carrying frames emitted toward the
// field-bus, for a test or bridge to observe.
func (b *ChanBus) Outbound() <-chan Frame { return b.out }
