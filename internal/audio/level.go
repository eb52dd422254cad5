package audio

import "math"

// levelGain lifts conversational speech to the upper half of the meter.
const levelGain = 2.56

// Level maps a block of samples to a meter value in [0,1] using the mean
// absolute amplitude.
func Level(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += math.Abs(float64(s))
	}
	level := sum / float64(len(samples)) / 32768 * levelGain
	return math.Min(1, math.Max(0, level))
}
