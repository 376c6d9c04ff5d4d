package proposals

// Window is an inclusive block range
type Window struct {
	From uint64
	To   uint64
}

// Windows splits [from, to] into consecutive inclusive ranges of at most rate blocks
func Windows(from, to, rate uint64) []Window {
	if rate == 0 || from > to {
		return nil
	}

	ws := []Window{}
	for start := from; start <= to; {
		end := start + rate - 1 // filter block range is inclusive
		if end > to || end < start {
			end = to
		}

		ws = append(ws, Window{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ws
}
