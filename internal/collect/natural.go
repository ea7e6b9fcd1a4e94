package collect

// NaturalLess compares two filenames so that embedded digit runs order
// numerically: "page_2.jpg" sorts before "page_10.jpg". Non-digit segments
// compare byte-wise.
func NaturalLess(a, b string) bool {
	indexA, indexB := 0, 0

	for indexA < len(a) && indexB < len(b) {
		if isDigit(a[indexA]) && isDigit(b[indexB]) {
			numberA, nextA := digitRun(a, indexA)
			numberB, nextB := digitRun(b, indexB)

			if numberA != numberB {
				return numberA < numberB
			}

			indexA, indexB = nextA, nextB

			continue
		}

		if a[indexA] != b[indexB] {
			return a[indexA] < b[indexB]
		}

		indexA++
		indexB++
	}

	return len(a)-indexA < len(b)-indexB
}

// digitRun parses a run of consecutive digits starting at position start and
// returns its numeric value along with the index just past the run. Leading
// zeros do not affect the value.
func digitRun(s string, start int) (uint64, int) {
	var value uint64

	end := start
	for end < len(s) && isDigit(s[end]) {
		value = value*10 + uint64(s[end]-'0')
		end++
	}

	return value, end
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
