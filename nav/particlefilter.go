package nav

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// expectedOccupied is the occupancy probability the sensor model expects
	// at a cell struck by a lidar return.
	expectedOccupied = 0.9

	// weightFloor keeps particles alive through a run of bad correspondences
	// so resampling still has something to draw from.
	weightFloor = 1e-10

	// scanSubsample is how many beams of a scan the sensor model evaluates,
	// spread evenly across the sweep.
	scanSubsample = 20
)

// ParticleFilter is a Monte Carlo localizer over a fixed set of pose
// hypotheses. All randomness flows through the injected NoiseGenerator so a
// seeded run replays exactly.
type ParticleFilter struct {
	particles        []Particle
	noise            *NoiseGenerator
	translationNoise float64
	rotationNoise    float64
	sensorNoise      float64
	maxRange         float64
}

// NewParticleFilter creates a filter with n uniform-weight particles at the
// origin. Noise sigmas configure the motion and sensor models.
func NewParticleFilter(n int, translationNoise, rotationNoise, sensorNoise, maxRange float64, noise *NoiseGenerator) (*ParticleFilter, error) {
	if n <= 0 {
		return nil, fmt.Errorf("particle count must be positive, got %d", n)
	}
	if noise == nil {
		return nil, fmt.Errorf("noise generator is required")
	}
	pf := &ParticleFilter{
		particles:        make([]Particle, n),
		noise:            noise,
		translationNoise: translationNoise,
		rotationNoise:    rotationNoise,
		sensorNoise:      sensorNoise,
		maxRange:         maxRange,
	}
	pf.Reset(Pose{}, 0, 0)
	return pf, nil
}

// Particles returns a copy of the current particle set.
func (pf *ParticleFilter) Particles() []Particle {
	out := make([]Particle, len(pf.particles))
	copy(out, pf.particles)
	return out
}

// NumParticles returns the fixed particle count N.
func (pf *ParticleFilter) NumParticles() int {
	return len(pf.particles)
}

// Reset replaces the particle set with a Gaussian cloud around the given
// pose. Zero sigmas collapse the cloud onto the pose exactly.
func (pf *ParticleFilter) Reset(pose Pose, sigmaXY, sigmaTheta float64) {
	n := len(pf.particles)
	uniform := 1.0 / float64(n)
	for i := range pf.particles {
		pf.particles[i] = Particle{
			X:      pf.noise.Gaussian(pose.X, sigmaXY),
			Y:      pf.noise.Gaussian(pose.Y, sigmaXY),
			Theta:  NormalizeAngle(pf.noise.Gaussian(pose.Theta, sigmaTheta)),
			Weight: uniform,
		}
	}
}

// Predict advances every particle by the odometry delta. The delta is
// rotated into each particle's own heading frame before independent
// Gaussian noise is added.
func (pf *ParticleFilter) Predict(odom Odometry) {
	for i := range pf.particles {
		p := &pf.particles[i]
		sin, cos := math.Sincos(p.Theta)
		dx := odom.DX*cos - odom.DY*sin
		dy := odom.DX*sin + odom.DY*cos

		p.X += pf.noise.Gaussian(dx, pf.translationNoise)
		p.Y += pf.noise.Gaussian(dy, pf.translationNoise)
		p.Theta = NormalizeAngle(p.Theta + pf.noise.Gaussian(odom.DTheta, pf.rotationNoise))
	}
}

// Correct reweights particles against a lidar scan using the occupancy
// grid. A fixed subsample of beams is projected through each particle pose
// and scored with a Gaussian likelihood around the expected-occupied
// probability. Weights are renormalized afterwards unless the total
// collapsed to zero, in which case they are left untouched.
func (pf *ParticleFilter) Correct(scan LidarScan, grid *OccupancyGrid) {
	if len(scan) == 0 || grid == nil {
		return
	}

	step := len(scan) / scanSubsample
	if step < 1 {
		step = 1
	}

	for i := range pf.particles {
		p := &pf.particles[i]
		w := p.Weight
		for s := 0; s < len(scan); s += step {
			r := scan[s]
			if r.Range <= 0 || (pf.maxRange > 0 && r.Range > pf.maxRange) {
				continue
			}
			wx := p.X + r.Range*math.Cos(p.Theta+r.Angle)
			wy := p.Y + r.Range*math.Sin(p.Theta+r.Angle)
			prob := grid.ProbabilityAtWorld(wx, wy)
			w *= GaussianLikelihood(prob, expectedOccupied, pf.sensorNoise)
		}
		if w < weightFloor {
			w = weightFloor
		}
		p.Weight = w
	}

	pf.normalizeWeights()
}

// normalizeWeights scales weights to sum to 1. A zero total is left as is;
// the caller sees the uniform floor rather than NaN.
func (pf *ParticleFilter) normalizeWeights() {
	total := 0.0
	for i := range pf.particles {
		total += pf.particles[i].Weight
	}
	if total == 0 {
		return
	}
	for i := range pf.particles {
		pf.particles[i].Weight /= total
	}
}

// EffectiveSampleSize returns 1 / sum(w^2), the usual degeneracy measure.
func (pf *ParticleFilter) EffectiveSampleSize() float64 {
	sumSq := 0.0
	for i := range pf.particles {
		w := pf.particles[i].Weight
		sumSq += w * w
	}
	if sumSq == 0 {
		return float64(len(pf.particles))
	}
	return 1.0 / sumSq
}

// NeedsResample reports whether the effective sample size dropped below N/2.
func (pf *ParticleFilter) NeedsResample() bool {
	return pf.EffectiveSampleSize() < float64(len(pf.particles))/2.0
}

// Resample performs low-variance (systematic) resampling: one random offset
// in [0, 1/N) selects N evenly spaced points on the cumulative weight
// distribution. Every survivor gets uniform weight 1/N.
func (pf *ParticleFilter) Resample() {
	n := len(pf.particles)
	next := make([]Particle, 0, n)

	r := pf.noise.Uniform() / float64(n)
	c := pf.particles[0].Weight
	j := 0
	for i := 0; i < n; i++ {
		u := r + float64(i)/float64(n)
		for u > c && j < n-1 {
			j++
			c += pf.particles[j].Weight
		}
		survivor := pf.particles[j]
		survivor.Weight = 1.0 / float64(n)
		next = append(next, survivor)
	}
	pf.particles = next
}

// Estimate returns the weighted mean pose and a confidence in [0, 1]. The
// heading is a circular mean so estimates straddling +/-pi do not cancel.
// Confidence is exp(-variance) of the particle spread around the mean.
func (pf *ParticleFilter) Estimate() (Pose, float64) {
	n := len(pf.particles)
	xs := make([]float64, n)
	ys := make([]float64, n)
	ws := make([]float64, n)
	sinSum, cosSum := 0.0, 0.0
	total := 0.0

	for i := range pf.particles {
		p := pf.particles[i]
		xs[i] = p.X
		ys[i] = p.Y
		ws[i] = p.Weight
		sinSum += p.Weight * math.Sin(p.Theta)
		cosSum += p.Weight * math.Cos(p.Theta)
		total += p.Weight
	}
	if total == 0 {
		// No mass anywhere: fall back to an unweighted mean.
		for i := range ws {
			ws[i] = 1
		}
		sinSum, cosSum = 0, 0
		for i := range pf.particles {
			sinSum += math.Sin(pf.particles[i].Theta)
			cosSum += math.Cos(pf.particles[i].Theta)
		}
	}

	pose := Pose{
		X:     stat.Mean(xs, ws),
		Y:     stat.Mean(ys, ws),
		Theta: math.Atan2(sinSum, cosSum),
	}

	variance := 0.0
	wTotal := 0.0
	for i := range pf.particles {
		d := Distance(Point{X: xs[i], Y: ys[i]}, pose.Position())
		variance += ws[i] * d * d
		wTotal += ws[i]
	}
	if wTotal > 0 {
		variance /= wTotal
	}

	confidence := math.Exp(-variance)
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}
	return pose, confidence
}
