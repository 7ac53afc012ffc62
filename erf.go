package quads

import "math"

// twoOverSqrtPi is 2/sqrt(pi), the slope of erf at zero.
const twoOverSqrtPi = 1.1283791670955126

// erfApprox evaluates the Gauss error function with a low-order polynomial
// followed by an algebraic sigmoid. The absolute error stays below 1e-3
// over the whole real line and the function is strictly increasing, which
// is all the shadow falloff needs; it avoids a transcendental call so the
// GPU shading stage can use the identical formula.
func erfApprox(x float64) float64 {
	t := x * twoOverSqrtPi
	tt := t * t
	u := t + (0.24295+(0.03395+0.0104*tt)*tt)*(t*tt)
	return u / math.Sqrt(1+u*u)
}
