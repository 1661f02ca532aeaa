package simserver

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/ua"
)

// Walker generates a bounded random walk around a mean. Steps drift
// freely near the mean; the further the value strays, the likelier the
// next step points back.
type Walker struct {
	mean      float64
	deviation float64
	step      float64

	value float64
	rng   *rand.Rand
}

// NewWalker creates a walker around mean with the given deviation. The
// seed fixes the sequence, so equal seeds replay equal walks.
func NewWalker(mean, deviation float64, seed int64) *Walker {
	deviation = math.Abs(deviation)
	rng := rand.New(rand.NewSource(seed))
	return &Walker{
		mean:      mean,
		deviation: deviation,
		step:      deviation / 10,
		value:     mean - rng.Float64(),
		rng:       rng,
	}
}

// Value returns the current value without advancing the walk.
func (w *Walker) Value() float64 { return w.value }

// Next advances the walk one step and returns the new value.
func (w *Walker) Next() float64 {
	w.value += w.rng.Float64() * w.step * w.direction()
	return w.value
}

// direction picks the sign of the next step. The chance of stepping
// further from the mean shrinks with the distance already covered.
func (w *Walker) direction() float64 {
	distance := w.value - w.mean
	away := 1.0
	if distance < 0 {
		distance = -distance
		away = -1.0
	}

	chance := w.deviation/2 - distance/50
	if w.rng.Float64()*w.deviation < chance {
		return away
	}
	return -away
}

// Simulate drives a variable with the walker at the given period until
// the returned stop function is called. The simulation is bound to the
// address space, not the session, so it survives reconnects.
func (s *Server) Simulate(id ua.NodeID, w *Walker, period time.Duration) func() {
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Errors only mean the node vanished; the next
				// tick retries.
				_ = s.space.SetValue(id, w.Next())
			}
		}
	}()

	return func() {
		once.Do(func() { close(stop) })
	}
}
