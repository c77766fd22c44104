package nav

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistance_Metric(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 100; trial++ {
		a := Point{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
		b := Point{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
		c := Point{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}

		if Distance(a, a) != 0 {
			t.Fatalf("Distance(a,a) = %f, want 0", Distance(a, a))
		}
		if math.Abs(Distance(a, b)-Distance(b, a)) > 1e-12 {
			t.Fatalf("distance not symmetric: %f vs %f", Distance(a, b), Distance(b, a))
		}
		if Distance(a, c) > Distance(a, b)+Distance(b, c)+1e-12 {
			t.Fatalf("triangle inequality violated for %v %v %v", a, b, c)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{-math.Pi / 2, -math.Pi / 2},
		{3 * math.Pi, -math.Pi},
		{-3 * math.Pi, -math.Pi},
		{2 * math.Pi, 0},
		{5 * math.Pi / 2, math.Pi / 2},
	}
	for _, c := range cases {
		got := NormalizeAngle(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%f) = %f, want %f", c.in, got, c.want)
		}
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		got := NormalizeAngle(rng.Float64()*100 - 50)
		if got < -math.Pi || got > math.Pi {
			t.Fatalf("NormalizeAngle out of range: %f", got)
		}
	}
}

func TestNoiseGenerator_Deterministic(t *testing.T) {
	a := NewNoiseGenerator(99)
	b := NewNoiseGenerator(99)
	for i := 0; i < 100; i++ {
		if a.Gaussian(0, 1) != b.Gaussian(0, 1) {
			t.Fatal("same seed produced diverging samples")
		}
	}

	a.Reseed(99)
	c := NewNoiseGenerator(99)
	for i := 0; i < 100; i++ {
		if a.Gaussian(0, 1) != c.Gaussian(0, 1) {
			t.Fatal("reseed did not reset generator state")
		}
	}
}

func TestNoiseGenerator_Moments(t *testing.T) {
	g := NewNoiseGenerator(1234)
	const n = 50000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		v := g.Gaussian(2.0, 0.5)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean-2.0) > 0.02 {
		t.Errorf("sample mean %f too far from 2.0", mean)
	}
	if math.Abs(variance-0.25) > 0.02 {
		t.Errorf("sample variance %f too far from 0.25", variance)
	}
}

func TestGaussianLikelihood(t *testing.T) {
	peak := GaussianLikelihood(0.9, 0.9, 0.2)
	off := GaussianLikelihood(0.5, 0.9, 0.2)
	if peak <= off {
		t.Errorf("likelihood at mean (%f) should exceed off-mean (%f)", peak, off)
	}

	// Degenerate sigma must not divide by zero.
	v := GaussianLikelihood(1.0, 1.0, 0)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		t.Errorf("zero-sigma likelihood not finite: %f", v)
	}
}
