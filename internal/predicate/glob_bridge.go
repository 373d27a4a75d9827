package predicate

import "github.com/dl/findcore/internal/glob"

func init() {
	globToRegex = glob.ToRegex
}
