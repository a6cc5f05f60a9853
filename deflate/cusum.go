package deflate

import "math"

const cusumBins = 256

// CusumDetector is an online change-point detector over the empirical byte
// distribution: during warmup it accumulates a baseline histogram; once
// warmed up, each new byte updates a log-likelihood-ratio accumulator
// against that baseline, signaling a change-point (and resetting) once the
// accumulator crosses threshold.
type CusumDetector struct {
	warmupSteps int
	threshold   float64

	currentStep      int
	currentCountsTot int
	cusum            float64

	baselineCounts [cusumBins]float64
	baselineProbs  [cusumBins]float64
	currentCounts  [cusumBins]float64
}

// NewCusumDetector returns a detector with the given warmup length (in
// bytes) and log-likelihood-ratio threshold.
func NewCusumDetector(warmup int, threshold float64) *CusumDetector {
	return &CusumDetector{warmupSteps: warmup, threshold: threshold}
}

// Reset clears all accumulated counts and the running statistic, returning
// the detector to its just-constructed state.
func (d *CusumDetector) Reset() {
	d.currentStep = 0
	d.currentCountsTot = 0
	d.cusum = 0
	for i := range d.baselineCounts {
		d.baselineCounts[i] = 0
		d.baselineProbs[i] = 0
		d.currentCounts[i] = 0
	}
}

// Step observes byte y and reports whether a change-point was detected at
// this step. On detection the detector resets itself before returning.
func (d *CusumDetector) Step(y byte) bool {
	d.currentStep++
	d.currentCounts[y]++
	d.currentCountsTot++

	if d.currentStep == d.warmupSteps {
		d.transition()
		return false
	}

	if d.currentStep < d.warmupSteps {
		return false
	}

	d.updateCusum(y)
	detected := d.cusum > d.threshold
	if detected {
		d.Reset()
	}
	return detected
}

// transition swaps the accumulated warmup histogram into the baseline and
// derives per-symbol baseline probabilities from it. The swap itself
// leaves currentCounts holding the previous (all-zero) baseline, so no
// separate zero-fill of currentCounts is needed afterward.
func (d *CusumDetector) transition() {
	if d.currentCountsTot == 0 {
		return
	}
	d.baselineCounts, d.currentCounts = d.currentCounts, d.baselineCounts
	for i, count := range d.baselineCounts {
		if count > 0 {
			d.baselineProbs[i] = count / float64(d.currentCountsTot)
		} else {
			d.baselineProbs[i] = 1.0 / cusumBins
		}
	}
	d.currentCountsTot = 0
}

func (d *CusumDetector) updateCusum(y byte) {
	count := d.currentCounts[y]
	var p1 float64
	if count > 0 {
		p1 = count / float64(d.currentCountsTot)
	} else {
		p1 = 1.0 / cusumBins
	}
	p0 := d.baselineProbs[y]
	llr := math.Log(p1) - math.Log(p0)
	d.cusum = math.Max(0, d.cusum+llr)
}
