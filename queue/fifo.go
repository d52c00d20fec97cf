package queue

import "github.com/aeolus-sim/ndpsim/packet"

// fifo is a minimal FIFO of *packet.Packet backed by a slice, compacted
// periodically so repeated PopFront doesn't leak backing capacity. Queue
// depths in this simulator are bounded by maxBytes/minimum-packet-size, so
// a slice-based queue comfortably outperforms a linked list for the sizes
// involved.
type fifo struct {
	items []*packet.Packet
	head  int
}

func (f *fifo) Len() int { return len(f.items) - f.head }

func (f *fifo) PushBack(p *packet.Packet) {
	f.items = append(f.items, p)
}

func (f *fifo) Front() *packet.Packet {
	return f.items[f.head]
}

func (f *fifo) PopFront() *packet.Packet {
	p := f.items[f.head]
	f.items[f.head] = nil
	f.head++
	if f.head > 16 && f.head*2 > len(f.items) {
		f.items = append(f.items[:0], f.items[f.head:]...)
		f.head = 0
	}
	return p
}
