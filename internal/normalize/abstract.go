package normalize

import "github.com/matsen/citeline/internal/reference"

// EmptyAbstract stands in for missing abstracts so rendered fields are never empty.
const EmptyAbstract = " "

// NormalizeAbstract collapses an abstract to a single string. Only the first
// section is kept; later sections of structured abstracts are dropped.
func NormalizeAbstract(a reference.AbstractText) string {
	if len(a) == 0 {
		return EmptyAbstract
	}
	return a[0]
}
