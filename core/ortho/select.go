// core/ortho/select.go
package ortho

import "fmt"

// Hit is one engine-ranked search result: a target sequence matched against a
// marker profile. Included mirrors the engine's own significance criteria;
// hits below the inclusion threshold are reported but never selected.
type Hit struct {
	Marker   string
	Target   string
	EValue   float64
	Score    float64
	Included bool
}

// Policy chooses the representative among one sample's included hits for a
// marker.
type Policy int

const (
	// PolicyFirst takes the first included hit in the engine's rank order.
	PolicyFirst Policy = iota
	// PolicyBestScore takes the included hit with the highest bit score,
	// independent of the engine's output order.
	PolicyBestScore
)

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "first":
		return PolicyFirst, nil
	case "best-score":
		return PolicyBestScore, nil
	}
	return 0, fmt.Errorf("unknown hit policy %q", s)
}

// Select reduces one sample's hit list to at most one representative per
// marker. The input order is the engine's rank order and is significant for
// PolicyFirst.
func Select(hits []Hit, p Policy) map[string]string {
	chosen := make(map[string]string)
	best := make(map[string]float64)
	for _, h := range hits {
		if !h.Included {
			continue
		}
		switch p {
		case PolicyBestScore:
			if _, ok := chosen[h.Marker]; !ok || h.Score > best[h.Marker] {
				chosen[h.Marker] = h.Target
				best[h.Marker] = h.Score
			}
		default:
			if _, ok := chosen[h.Marker]; !ok {
				chosen[h.Marker] = h.Target
			}
		}
	}
	return chosen
}
