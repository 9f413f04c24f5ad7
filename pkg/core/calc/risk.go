package calc

// =============================================================================
// RISK MODELS
// =============================================================================

// AltmanZScore is the original public manufacturer model.
//
// FORMULA: Z = 1.2A + 1.4B + 3.3C + 0.6D + 1.0E
//
//	A = Working Capital / Total Assets
//	B = Retained Earnings / Total Assets
//	C = EBIT / Total Assets
//	D = Market Value of Equity / Total Liabilities
//	E = Sales / Total Assets
//
// Invalid when total assets or total liabilities is zero.
func AltmanZScore(wc, re, ebit, mve, sales, ta, tl float64) Value {
	if ta == 0 || tl == 0 {
		return Invalid()
	}
	return Valid(1.2*wc/ta + 1.4*re/ta + 3.3*ebit/ta + 0.6*mve/tl + 1.0*sales/ta)
}

// AltmanZPrimeScore is the private-firm re-estimation that uses book equity in D.
//
// FORMULA: Z' = 0.717A + 0.847B + 3.107C + 0.420D + 0.998E
func AltmanZPrimeScore(wc, re, ebit, bookEquity, sales, ta, tl float64) Value {
	if ta == 0 || tl == 0 {
		return Invalid()
	}
	return Valid(0.717*wc/ta + 0.847*re/ta + 3.107*ebit/ta + 0.420*bookEquity/tl + 0.998*sales/ta)
}

// Z' zone boundaries.
const (
	AltmanPrimeDistress = 1.23
	AltmanPrimeSafe     = 2.90
)

// AltmanZone classifies a Z' score as "distress", "grey" or "safe".
func AltmanZone(z Value) string {
	switch {
	case !z.Valid:
		return ""
	case z.V < AltmanPrimeDistress:
		return "distress"
	case z.V > AltmanPrimeSafe:
		return "safe"
	default:
		return "grey"
	}
}
