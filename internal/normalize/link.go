package normalize

import (
	"sort"
	"strings"
)

// DOIResolverPrefix is prepended to DOIs to form external links.
const DOIResolverPrefix = "https://doi.org/"

// ResolveLink picks an external link from an article's identifier list.
//
// The longest identifier is taken; if it contains a slash it is assumed to be
// a DOI and resolved through doi.org. PMIDs are short numeric strings and
// never qualify. This is a heuristic, not a DOI validator. Among identifiers
// of equal maximal length the last one in input order wins. The input slice
// is not modified.
func ResolveLink(ids []string) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}

	sorted := append([]string(nil), ids...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) < len(sorted[j])
	})

	longest := sorted[len(sorted)-1]
	if !strings.Contains(longest, "/") {
		return "", false
	}
	return DOIResolverPrefix + longest, true
}
