package weather

// Recent returns the n most recent records of history, newest first.
// A count at or above the history size yields the whole history; a negative
// count yields ErrInvalidCount.
func Recent(history []Record, n int) ([]Record, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	if n > len(history) {
		n = len(history)
	}

	out := make([]Record, 0, n)
	for i := len(history) - 1; i >= len(history)-n; i-- {
		out = append(out, history[i])
	}
	return out, nil
}
