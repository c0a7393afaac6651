// Package indicators provides streaming moving averages for bar-close
// series. Each indicator is updated once per bar and reports Ready only
// after its warm-up period.
package indicators

// SMA is a streaming simple moving average over the last period values.
type SMA struct {
	period int
	window []float64
	head   int
	count  int
	sum    float64
}

// NewSMA returns a simple moving average with the given period. Periods < 1
// are clamped to 1.
func NewSMA(period int) *SMA {
	if period < 1 {
		period = 1
	}
	return &SMA{
		period: period,
		window: make([]float64, period),
	}
}

// Update pushes one value into the window.
func (s *SMA) Update(v float64) {
	if s.count == s.period {
		s.sum -= s.window[s.head]
	} else {
		s.count++
	}
	s.window[s.head] = v
	s.sum += v
	s.head = (s.head + 1) % s.period
}

// Ready reports whether a full period has been observed.
func (s *SMA) Ready() bool { return s.count == s.period }

// Value returns the current average; 0 before any update.
func (s *SMA) Value() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

// EMA is a streaming exponential moving average seeded with an SMA of the
// first period values.
type EMA struct {
	period     int
	multiplier float64

	seed  *SMA
	value float64
	ready bool
}

// NewEMA returns an exponential moving average with the given period.
func NewEMA(period int) *EMA {
	if period < 1 {
		period = 1
	}
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
		seed:       NewSMA(period),
	}
}

// Update pushes one value.
func (e *EMA) Update(v float64) {
	if !e.ready {
		e.seed.Update(v)
		if e.seed.Ready() {
			e.value = e.seed.Value()
			e.ready = true
		}
		return
	}
	e.value = (v-e.value)*e.multiplier + e.value
}

// Ready reports whether the warm-up period has completed.
func (e *EMA) Ready() bool { return e.ready }

// Value returns the current EMA; 0 until Ready.
func (e *EMA) Value() float64 { return e.value }
