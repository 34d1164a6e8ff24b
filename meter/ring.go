package meter

// HistorySize is the number of recent samples averaged by dampening.
const HistorySize = 5

// ring is a fixed-capacity FIFO of samples; pushing into a full ring
// evicts the oldest entry.
type ring struct {
	buf  [HistorySize]float64
	head int // index of the oldest sample
	n    int
}

func (r *ring) push(v float64) {
	if r.n < len(r.buf) {
		r.buf[(r.head+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

func (r *ring) mean() float64 {
	if r.n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < r.n; i++ {
		sum += r.buf[(r.head+i)%len(r.buf)]
	}
	return sum / float64(r.n)
}

func (r *ring) len() int { return r.n }

// values returns the samples oldest first.
func (r *ring) values() []float64 {
	out := make([]float64, r.n)
	for i := range out {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

func (r *ring) reset() {
	r.head, r.n = 0, 0
}
