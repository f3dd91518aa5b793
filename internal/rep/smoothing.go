package rep

// Smoother is an exponential moving average of one scalar signal.
// The first sample seeds the average.
type Smoother struct {
	alpha  float64
	value  float64
	primed bool
}

// NewSmoother returns a smoother giving weight alpha to each new sample.
func NewSmoother(alpha float64) *Smoother {
	return &Smoother{alpha: alpha}
}

// Update folds v into the average and returns the new value.
func (s *Smoother) Update(v float64) float64 {
	if !s.primed {
		s.value = v
		s.primed = true
		return v
	}
	s.value = (1-s.alpha)*s.value + s.alpha*v
	return s.value
}

// Value returns the current average.
func (s *Smoother) Value() float64 {
	return s.value
}

// Reset forgets all samples.
func (s *Smoother) Reset() {
	s.value = 0
	s.primed = false
}
