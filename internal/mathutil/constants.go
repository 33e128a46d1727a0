package mathutil

const (
	besselMaxTerms = 500
	besselEpsilon  = 1e-17
)

// Kaiser & Schafer window formulas.
const (
	kaiserAttHigh          = 50.0
	kaiserAttMedium        = 21.0
	kaiserBetaHighCoeff    = 0.1102
	kaiserBetaHighOffset   = 8.7
	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886

	kaiserLengthOffset  = 7.95
	kaiserLengthDivisor = 14.36
)

const (
	minFilterLength     = 3
	maxFilterLength     = 16383
	defaultTransitionBW = 0.01
)
