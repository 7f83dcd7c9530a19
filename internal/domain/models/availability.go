// internal/domain/models/availability.go
package models

import "time"

// AvailabilityRecord marks one user available on one calendar date.
// Date is a plain YYYY-MM-DD string with no time-of-day component; a
// unique (user_id, date) index guarantees at most one record per pair.
// Records are only ever created or deleted (by the toggle operation),
// never updated, so CreatedAt doubles as the "new since yesterday"
// signal for the digest.
type AvailabilityRecord struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	Date      string    `bson:"date" json:"date"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
