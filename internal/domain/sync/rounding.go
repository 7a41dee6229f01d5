package sync

// OrderQuantity converts a raw sold quantity into a purchasable order
// quantity by rounding up to the next full case. A non-positive case size is
// treated as 1. A sold quantity of zero or less still yields exactly one
// case: zero history is a restock signal, not a skip.
func OrderQuantity(sold, quantityPerCase int) int {
	if quantityPerCase <= 0 {
		quantityPerCase = 1
	}
	if sold <= 0 {
		return quantityPerCase
	}
	if rem := sold % quantityPerCase; rem != 0 {
		return (sold/quantityPerCase + 1) * quantityPerCase
	}
	return sold
}
