package cal

// Observer accumulates per-channel extremes during a calibration sweep.
// Feed it every raw sample taken while the array moves across the line,
// then take the Bounds.
type Observer struct {
	bounds Bounds
	seen   bool
}

func NewObserver(channels int) *Observer {
	return &Observer{bounds: make(Bounds, channels)}
}

// Observe widens the recorded extremes with one raw sample. Samples with
// the wrong channel count are ignored.
func (o *Observer) Observe(raw []int) {
	if len(raw) != len(o.bounds) {
		return
	}
	if !o.seen {
		for i, v := range raw {
			o.bounds[i] = Channel{Black: v, White: v}
		}
		o.seen = true
		return
	}
	for i, v := range raw {
		if v > o.bounds[i].Black {
			o.bounds[i].Black = v
		}
		if v < o.bounds[i].White {
			o.bounds[i].White = v
		}
	}
}

// Samples reports whether any sample has been observed yet.
func (o *Observer) Samples() bool {
	return o.seen
}

// Bounds returns a copy of the accumulated extremes.
func (o *Observer) Bounds() Bounds {
	b := make(Bounds, len(o.bounds))
	copy(b, o.bounds)
	return b
}
