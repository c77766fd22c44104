package nav

import (
	"math"
)

// VFH tuning: 72 five-degree sectors, a fixed valley threshold, proportional
// steering gain and the floor on the linear slowdown factor.
const (
	vfhSectors         = 72
	vfhValleyThreshold = 0.5
	vfhSteeringGain    = 2.0
	vfhMinSpeedScale   = 0.2
)

// vfhController implements Vector Field Histogram avoidance: obstacles are
// binned into a polar histogram around the robot, and steering targets the
// valley closest to the goal bearing.
type vfhController struct {
	cfg AvoidanceConfig
}

func (c *vfhController) compute(in AvoidanceInput) Velocity {
	histogram := c.buildHistogram(in)

	valleys, fullCircle := findValleys(histogram)
	if len(valleys) == 0 {
		// Every sector is dense: nowhere to go.
		return Velocity{}
	}

	targetBearing := NormalizeAngle(in.goalBearing() - in.Pose.Theta)
	var steer float64
	if fullCircle {
		// Nothing blocks any direction: head straight for the goal.
		steer = targetBearing
	} else {
		steer = c.selectValley(valleys, targetBearing)
	}

	angular := vfhSteeringGain * steer
	if angular > c.cfg.MaxAngularVel {
		angular = c.cfg.MaxAngularVel
	} else if angular < -c.cfg.MaxAngularVel {
		angular = -c.cfg.MaxAngularVel
	}

	// Slow down as the clearest direction fills up.
	minDensity := histogram[0]
	for _, v := range histogram[1:] {
		if v < minDensity {
			minDensity = v
		}
	}
	scale := 1.0 - minDensity
	if scale < vfhMinSpeedScale {
		scale = vfhMinSpeedScale
	} else if scale > 1 {
		scale = 1
	}

	return Velocity{
		Linear:  c.cfg.MaxLinearVel * scale,
		Angular: angular,
	}
}

// buildHistogram bins obstacles into robot-relative sectors weighted by
// inverse distance, so near obstacles dominate.
func (c *vfhController) buildHistogram(in AvoidanceInput) [vfhSectors]float64 {
	var histogram [vfhSectors]float64
	sectorWidth := 2 * math.Pi / vfhSectors

	for _, ob := range in.Obstacles {
		d := Distance(in.Pose.Position(), ob.Center())
		if d < 1e-10 {
			d = 1e-10
		}
		bearing := NormalizeAngle(Bearing(in.Pose.Position(), ob.Center()) - in.Pose.Theta)
		sector := int((bearing + math.Pi) / sectorWidth)
		if sector >= vfhSectors {
			sector = vfhSectors - 1
		}
		histogram[sector] += 1.0 / d
	}
	return histogram
}

// valley is a contiguous run of low-density sectors, identified by its
// center bearing relative to the robot heading.
type valley struct {
	center float64
}

// findValleys scans the circular histogram for maximal runs of sectors
// below the density threshold. Runs wrapping past the last sector are
// merged with the first. The second return reports the degenerate case of
// every sector being open.
func findValleys(histogram [vfhSectors]float64) ([]valley, bool) {
	sectorWidth := 2 * math.Pi / vfhSectors
	sectorAngle := func(i int) float64 {
		return -math.Pi + (float64(i)+0.5)*sectorWidth
	}

	open := func(i int) bool { return histogram[i] < vfhValleyThreshold }

	allOpen := true
	for i := 0; i < vfhSectors; i++ {
		if !open(i) {
			allOpen = false
			break
		}
	}
	if allOpen {
		return []valley{{center: 0}}, true
	}

	// Anchor the scan at a blocked sector so no run is split by the
	// wraparound. One exists because not every sector is open.
	anchor := 0
	for i := 0; i < vfhSectors; i++ {
		if !open(i) {
			anchor = i
			break
		}
	}

	// Walk one full circle from the anchor. The final sector scanned is the
	// anchor's predecessor, and the anchor itself is blocked, so every run
	// gets closed inside the loop.
	var valleys []valley
	runStart := -1
	for k := 1; k <= vfhSectors; k++ {
		i := (anchor + k) % vfhSectors
		if open(i) {
			if runStart == -1 {
				runStart = k
			}
			continue
		}
		if runStart != -1 {
			mid := (anchor + (runStart+k-1)/2) % vfhSectors
			valleys = append(valleys, valley{center: sectorAngle(mid)})
			runStart = -1
		}
	}
	return valleys, false
}

// selectValley returns the center bearing of the valley closest to the
// target bearing.
func (c *vfhController) selectValley(valleys []valley, targetBearing float64) float64 {
	best := valleys[0].center
	bestDiff := math.Abs(NormalizeAngle(valleys[0].center - targetBearing))
	for _, v := range valleys[1:] {
		diff := math.Abs(NormalizeAngle(v.center - targetBearing))
		if diff < bestDiff {
			bestDiff = diff
			best = v.center
		}
	}
	return best
}
