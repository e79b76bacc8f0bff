package calculator

// Convert scales total from one currency to another. Both rates are
// expressed against the same base currency: converted = total / from * to.
func Convert(total, fromRate, toRate float64) (float64, error) {
	if fromRate <= 0 || toRate <= 0 {
		return 0, ErrInvalidRate
	}
	return total / fromRate * toRate, nil
}

// CrossRate is how many units of the target currency one unit of the
// source currency buys.
func CrossRate(fromRate, toRate float64) (float64, error) {
	return Convert(1, fromRate, toRate)
}
