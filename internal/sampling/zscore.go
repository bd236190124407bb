package sampling

import "math"

// Coefficients of Acklam's rational approximation to the inverse standard
// normal CDF. These are fixed reference constants: historical sample sizes
// were computed with exactly these values, so they must not be re-derived or
// "improved".
var (
	acklamA = [6]float64{
		-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00,
	}
	acklamB = [5]float64{
		-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01,
	}
	acklamC = [6]float64{
		-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00,
	}
	acklamD = [4]float64{
		7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00,
	}
)

// acklamLow is the tail/central breakpoint of the approximation. The high
// breakpoint is its complement.
const acklamLow = 0.02425

// ZScore maps a confidence level in (0,1) to the two-tailed standard-normal
// critical value.
//
// Confidence 0.99 returns exactly 2.58 rather than the mathematically precise
// 2.5758...: audit methodology tables quote 2.58 and previously issued sample
// sizes depend on it.
func ZScore(confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, errValidation("Confidence must be between 0 and 1 (exclusive), got %v", confidence)
	}
	if math.Abs(confidence-0.99) < 1e-9 {
		return 2.58, nil
	}
	alpha := 1 - confidence
	return inverseNormalCDF(1 - alpha/2), nil
}

// inverseNormalCDF evaluates Acklam's three-branch rational approximation at
// p in (0,1).
func inverseNormalCDF(p float64) float64 {
	a, b, c, d := acklamA, acklamB, acklamC, acklamD

	switch {
	case p < acklamLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p > 1-acklamLow:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	}
}
