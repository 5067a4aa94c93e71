package model

import "time"

// Table statuses.  A table that is under repair is never offered to
// guests regardless of time conflicts.
const (
	TableAvailable   = "available"
	TableUnderRepair = "under-repair"
)

// CapacityTiers lists the fixed table sizes the floor is built from.
// Party sizes are matched to the smallest tier that can seat them;
// there is no tier above 15.
var CapacityTiers = []int{2, 4, 6, 10, 15}

// Table describes one physical table on the restaurant floor.  The
// business identifier TableID is what reservations reference; the
// store-assigned document id stays internal to the persistence layer.
//
// Fields:
//  ID        – opaque store-assigned document id.
//  TableID   – stable business identifier shown to guests (e.g. "T4").
//  Capacity  – one of CapacityTiers.
//  Type      – free-text label for display only (e.g. "window booth").
//  Status    – available or under-repair.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Table struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	TableID   string    `json:"table_id" bson:"table_id"`
	Capacity  int       `json:"capacity" bson:"capacity"`
	Type      string    `json:"type" bson:"type"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ValidCapacity reports whether c is one of the fixed capacity tiers.
func ValidCapacity(c int) bool {
	for _, t := range CapacityTiers {
		if c == t {
			return true
		}
	}
	return false
}
