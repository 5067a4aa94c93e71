package schedule

import (
	"fmt"

	"github.com/goldenfork/reservation-api/internal/model"
)

// BucketFor maps a party size to the smallest capacity tier that can
// seat it: 1–2→2, 3–4→4, 5–6→6, 7–10→10, 11–15→15.  Sizes outside
// 1..15 fail; there is no tier above 15 and zero or negative parties
// are nonsense.
func BucketFor(partySize int) (int, error) {
	if partySize < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPartySize, partySize)
	}
	for _, tier := range model.CapacityTiers {
		if partySize <= tier {
			return tier, nil
		}
	}
	return 0, ErrCapacityExceeded
}
