package fractal

import "math"

// escapeRadiusSq is the squared bailout radius.
const escapeRadiusSq = 4

// Mandelbrot iterates z = z² + c from z = 0 with c = (x0, y0) and returns
// the number of iterations before |z| > 2, or maxIter if it never escaped.
func Mandelbrot(x0, y0 float64, maxIter int) int {
	x, y := 0.0, 0.0
	i := 0
	for x*x+y*y <= escapeRadiusSq && i < maxIter {
		x, y = x*x-y*y+x0, 2*x*y+y0
		i++
	}
	return i
}

// BurningShip is Mandelbrot with the imaginary part folded: y = 2|xy| + y0.
func BurningShip(x0, y0 float64, maxIter int) int {
	x, y := 0.0, 0.0
	i := 0
	for x*x+y*y <= escapeRadiusSq && i < maxIter {
		x, y = x*x-y*y+x0, 2*math.Abs(x*y)+y0
		i++
	}
	return i
}

// Julia starts at z = (x0, y0) and iterates z = z² + c with the fixed c = (cr, ci).
func Julia(x0, y0, cr, ci float64, maxIter int) int {
	x, y := x0, y0
	i := 0
	for x*x+y*y <= escapeRadiusSq && i < maxIter {
		x, y = x*x-y*y+cr, 2*x*y+ci
		i++
	}
	return i
}

// Escape runs the recurrence selected by p.Kind at plane point (x0, y0).
// Kinds without an escape-time recurrence report maxIter.
func Escape(p Params, x0, y0 float64) int {
	switch p.Kind {
	case KindMandelbrot:
		return Mandelbrot(x0, y0, p.MaxIterations)
	case KindBurningShip:
		return BurningShip(x0, y0, p.MaxIterations)
	case KindJulia:
		return Julia(x0, y0, p.CReal, p.CImag, p.MaxIterations)
	}
	return p.MaxIterations
}

// IsBounded reports whether an iteration count marks an interior point.
// Every colouring path goes through it.
func IsBounded(iter, maxIter int) bool {
	return iter >= maxIter
}
