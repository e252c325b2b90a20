package domain

// Cart maps product identifiers to desired quantities for one user.
// A missing key is equivalent to quantity zero; quantities are never
// negative.
type Cart map[int64]int32

// TotalItems returns the summed quantity across all entries.
func (c Cart) TotalItems() int32 {
	var total int32
	for _, qty := range c {
		total += qty
	}
	return total
}

// NonZero returns a copy of the cart with zero-quantity entries removed.
func (c Cart) NonZero() Cart {
	out := make(Cart, len(c))
	for id, qty := range c {
		if qty > 0 {
			out[id] = qty
		}
	}
	return out
}
