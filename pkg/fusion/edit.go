package fusion

// isOneDeletionApart reports whether removing exactly one character from
// longer yields shorter. Callers must ensure len(longer) == len(shorter)+1.
func isOneDeletionApart(longer, shorter string) bool {
	if len(longer) != len(shorter)+1 {
		return false
	}
	i, j := 0, 0
	skipped := false
	for i < len(longer) && j < len(shorter) {
		if longer[i] == shorter[j] {
			i++
			j++
			continue
		}
		if skipped {
			return false
		}
		skipped = true
		i++
	}
	return true
}

// editDistanceAtMost1 reports whether a and b are within a single
// insertion, deletion or substitution of one another.
func editDistanceAtMost1(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := len(a), len(b)
	switch {
	case la == lb:
		diffs := 0
		for i := 0; i < la; i++ {
			if a[i] != b[i] {
				diffs++
				if diffs > 1 {
					return false
				}
			}
		}
		return diffs == 1
	case la == lb+1:
		return isOneDeletionApart(a, b)
	case lb == la+1:
		return isOneDeletionApart(b, a)
	default:
		return false
	}
}
