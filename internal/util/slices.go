package util

func FindFunc[E any](s []E, f func(E) bool) (e E, ok bool) {
	for _, e := range s {
		if f(e) {
			return e, true
		}
	}
	return e, false
}

// Match returns a function that reports whether its argument equals v.
func Match[E comparable](v E) func(E) bool {
	return func(e E) bool { return e == v }
}
