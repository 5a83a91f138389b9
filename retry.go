package schemagen

// retry calls fn until it reports success, allowing at most limit consecutive
// misses. A miss is fn returning (false, nil); any error stops immediately.
// The bool result is false when the limit was exhausted.
func retry(limit int, fn func() (bool, error)) (bool, error) {
	for attempt := 0; attempt < limit; attempt++ {
		ok, err := fn()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
