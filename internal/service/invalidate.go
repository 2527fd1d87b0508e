package service

// Invalidator drops state derived from stored data, such as cached
// dashboard counters.
type Invalidator interface {
	Invalidate()
}

// Invalidate notifies inv when it is set
func Invalidate(inv Invalidator) {
	if inv != nil {
		inv.Invalidate()
	}
}
