package trader

// Buffer is a bounded FIFO of float64 samples. Oldest entries are evicted
// on overflow.
type Buffer struct {
	cap  int
	data []float64
}

// NewBuffer creates a buffer with the given fixed capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{cap: capacity, data: make([]float64, 0, capacity)}
}

// Push appends a sample, evicting the oldest if the buffer is full.
func (b *Buffer) Push(v float64) {
	if len(b.data) == b.cap {
		copy(b.data, b.data[1:])
		b.data[len(b.data)-1] = v
		return
	}
	b.data = append(b.data, v)
}

// Values returns the buffered samples oldest-first. The returned slice is
// the buffer's backing store; callers must not mutate it.
func (b *Buffer) Values() []float64 { return b.data }

// Len returns the number of buffered samples.
func (b *Buffer) Len() int { return len(b.data) }

// History holds the per-run price buffers: a short window for flash-crash
// detection and a longer one for volatility-based cooldown.
type History struct {
	flash  *Buffer
	closes *Buffer
}

// NewHistory creates the two bounded buffers.
func NewHistory(flashWindow, closeCapacity int) *History {
	return &History{
		flash:  NewBuffer(flashWindow),
		closes: NewBuffer(closeCapacity),
	}
}

// Observe records a tick price into both buffers.
func (h *History) Observe(price float64) {
	h.flash.Push(price)
	h.closes.Push(price)
}

// Closes returns the recent price samples for cooldown computation.
func (h *History) Closes() []float64 { return h.closes.Values() }

// FlashCrash reports whether the high-low spread within the flash window
// reaches the threshold as a fraction of the window's maximum. Needs at
// least two samples.
func (h *History) FlashCrash(threshold float64) bool {
	v := h.flash.Values()
	if len(v) < 2 {
		return false
	}
	max, min := v[0], v[0]
	for _, p := range v[1:] {
		if p > max {
			max = p
		}
		if p < min {
			min = p
		}
	}
	if max <= 0 {
		return false
	}
	return (max-min)/max >= threshold
}
