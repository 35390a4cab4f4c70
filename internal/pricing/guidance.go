package pricing

import "strings"

// referencePrices is the advisory market price table (currency per kg)
// consulted when bidding closes unresolved. It is read-only and never in
// the transactional path.
var referencePrices = map[string]float64{
	"wheat":     24,
	"rice":      38,
	"maize":     21,
	"pulses":    85,
	"onion":     30,
	"potato":    18,
	"tomato":    26,
	"sugarcane": 3.5,
	"cotton":    62,
	"soybean":   46,
	"groundnut": 58,
	"turmeric":  95,
	"chilli":    120,
}

// ReferencePrice returns the advisory market price for a category and
// whether one is known.
func ReferencePrice(category string) (float64, bool) {
	p, ok := referencePrices[strings.ToLower(strings.TrimSpace(category))]
	return p, ok
}
