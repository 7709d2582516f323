// pkg/plan/recovery.go
package plan

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RecoveryFactor controls how many recovery shards accompany the data
// shards. It parses from one of:
//   - a percentage of the data shard count, e.g. "25%"
//   - a multiple followed by "x", e.g. "2x" (same as "200%")
//   - a plain integer, giving a number of extra recovery pages
type RecoveryFactor struct {
	percent float64
	pages   int
}

// DefaultRecoveryFactor adds roughly 25% recovery shards.
var DefaultRecoveryFactor = RecoveryFactor{percent: 25}

// ParseRecoveryFactor parses the textual recovery factor syntax.
func ParseRecoveryFactor(s string) (RecoveryFactor, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "%"):
		p, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil || p < 0 {
			return RecoveryFactor{}, fmt.Errorf("plan: bad recovery percentage %q", s)
		}
		return RecoveryFactor{percent: p}, nil
	case strings.HasSuffix(s, "x"):
		m, err := strconv.ParseFloat(strings.TrimSuffix(s, "x"), 64)
		if err != nil || m < 0 {
			return RecoveryFactor{}, fmt.Errorf("plan: bad recovery multiple %q", s)
		}
		return RecoveryFactor{percent: m * 100}, nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return RecoveryFactor{}, fmt.Errorf("plan: bad recovery page count %q", s)
		}
		return RecoveryFactor{pages: n, percent: math.NaN()}, nil
	}
}

// Shards converts the factor into a recovery shard count for k data
// shards on pages holding perPage large cells each.
func (rf RecoveryFactor) Shards(k, perPage int) int {
	if math.IsNaN(rf.percent) {
		return rf.pages * perPage
	}
	return int(math.Ceil(rf.percent / 100 * float64(k)))
}

func (rf RecoveryFactor) String() string {
	if math.IsNaN(rf.percent) {
		return strconv.Itoa(rf.pages)
	}
	return strconv.FormatFloat(rf.percent, 'f', -1, 64) + "%"
}
