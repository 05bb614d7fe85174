package game

import (
	"slices"
	"time"
)

// History is a fixed-size circular buffer of the most recent frame stats.
type History struct {
	buffer []FrameStats
	head   int // Points to the next write position
	size   int
}

// NewHistory creates a history that keeps the last capacity frames.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{buffer: make([]FrameStats, capacity)}
}

// Add records a frame, evicting the oldest one once the history is full.
func (h *History) Add(s FrameStats) {
	h.buffer[h.head] = s
	h.head = (h.head + 1) % len(h.buffer)
	if h.size < len(h.buffer) {
		h.size++
	}
}

// Len returns the number of frames recorded.
func (h *History) Len() int {
	return h.size
}

// Latest returns the most recent frame, if any.
func (h *History) Latest() (FrameStats, bool) {
	if h.size == 0 {
		return FrameStats{}, false
	}
	return h.buffer[(h.head-1+len(h.buffer))%len(h.buffer)], true
}

// Frames returns the recorded frames, oldest first.
func (h *History) Frames() []FrameStats {
	out := make([]FrameStats, 0, h.size)
	for i := 0; i < h.size; i++ {
		out = append(out, h.buffer[(h.head-h.size+i+len(h.buffer))%len(h.buffer)])
	}
	return out
}

// MeanDuration ...
func (h *History) MeanDuration() time.Duration {
	if h.size == 0 {
		return 0
	}
	var sum time.Duration
	for _, f := range h.Frames() {
		sum += f.Duration
	}
	return sum / time.Duration(h.size)
}

// MedianDuration ...
func (h *History) MedianDuration() time.Duration {
	if h.size == 0 {
		return 0
	}
	d := make([]time.Duration, 0, h.size)
	for _, f := range h.Frames() {
		d = append(d, f.Duration)
	}
	slices.Sort(d)
	if h.size%2 == 0 {
		return (d[h.size/2-1] + d[h.size/2]) / 2
	}
	return d[h.size/2]
}
