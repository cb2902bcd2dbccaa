// Package mechanisms holds the small closed vocabularies shared by the
// budget and query packages: the norm used to measure a report's
// sensitivity, and the noise distribution a report request asks the
// (external) aggregator to apply.
package mechanisms

// NormType selects which norm is used to measure a report's sensitivity.
type NormType int

const (
	// L1 is the sum of absolute bin values.
	L1 NormType = iota
	// L2 is the Euclidean norm of bin values. Histogram supports it; the
	// engine itself only measures single-epoch sensitivity with L1.
	L2
)

func (n NormType) String() string {
	switch n {
	case L1:
		return "L1"
	case L2:
		return "L2"
	default:
		return "unknown"
	}
}

// NoiseScale describes the noise an aggregator will add to a report once
// it leaves the device. The PDS never samples this noise itself; it only
// reads the scale to compute the individual privacy loss of a request
// (budget.Finite(sensitivity / b)).
type NoiseScale struct {
	// B is the Laplace scale parameter b in Lap(b). b == 0 is the
	// documented escape hatch for non-private, noiseless requests; see
	// Service.ComputeReport.
	B float64
}

// Laplace builds a NoiseScale for the Laplace mechanism with scale b.
func Laplace(b float64) NoiseScale {
	return NoiseScale{B: b}
}
