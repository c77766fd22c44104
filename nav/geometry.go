package nav

import (
	"math"
	"math/rand"
)

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// NormalizeAngle wraps an angle into [-pi, pi].
func NormalizeAngle(theta float64) float64 {
	wrapped := math.Mod(theta+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// Bearing returns the angle of the vector from a to b.
func Bearing(from, to Point) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// NoiseGenerator produces Gaussian samples via the Box-Muller transform.
// The spare value is kept on the generator rather than in hidden function
// state so runs are reproducible from a seed.
type NoiseGenerator struct {
	rng      *rand.Rand
	spare    float64
	hasSpare bool
}

// NewNoiseGenerator creates a generator seeded for deterministic replay.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Reseed resets the generator state, discarding any cached spare sample.
func (g *NoiseGenerator) Reseed(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
	g.spare = 0
	g.hasSpare = false
}

// Uniform returns a uniform sample in [0, 1).
func (g *NoiseGenerator) Uniform() float64 {
	return g.rng.Float64()
}

// Gaussian returns a sample from N(mean, stddev^2). Box-Muller yields two
// independent samples per transform; the second is cached for the next call.
func (g *NoiseGenerator) Gaussian(mean, stddev float64) float64 {
	if g.hasSpare {
		g.hasSpare = false
		return mean + stddev*g.spare
	}

	var u1 float64
	for u1 <= 0 {
		u1 = g.rng.Float64()
	}
	u2 := g.rng.Float64()

	mag := math.Sqrt(-2 * math.Log(u1))
	g.spare = mag * math.Sin(2*math.Pi*u2)
	g.hasSpare = true

	return mean + stddev*mag*math.Cos(2*math.Pi*u2)
}

// GaussianLikelihood evaluates the (unnormalized-safe) Gaussian density of
// value around mean with the given standard deviation. A non-positive
// stddev is floored to avoid division blowups.
func GaussianLikelihood(value, mean, stddev float64) float64 {
	if stddev < 1e-10 {
		stddev = 1e-10
	}
	z := (value - mean) / stddev
	return math.Exp(-0.5*z*z) / (stddev * math.Sqrt(2*math.Pi))
}
