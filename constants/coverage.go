package constants

// Coverage records how a field's value was obtained. It arbitrates merge
// conflicts: a found value is never overwritten by an inferred one.
type Coverage string

// Stable values (persisted alongside entity documents).
const (
	CoverageFound    Coverage = "found"    // matched directly in the document text
	CoverageInferred Coverage = "inferred" // derived from other extracted fields
	CoverageMissing  Coverage = "missing"  // no rule matched
)

// Outranks reports whether c wins a merge conflict against other.
func (c Coverage) Outranks(other Coverage) bool {
	return rank(c) > rank(other)
}

func rank(c Coverage) int {
	switch c {
	case CoverageFound:
		return 2
	case CoverageInferred:
		return 1
	default:
		return 0
	}
}
