// internal/domain/models/divesite.go
package models

import "time"

// DiveSite is a named location divers can register interest in.
// NameCI is the folded form backing the case-insensitive unique index.
// Latitude and Longitude are both set or both nil.
type DiveSite struct {
	ID        string    `bson:"_id" json:"siteId"`
	Name      string    `bson:"name" json:"name"`
	NameCI    string    `bson:"name_ci" json:"-"`
	Depth     int       `bson:"depth" json:"depth"` // meters
	Latitude  *float64  `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64  `bson:"longitude,omitempty" json:"longitude,omitempty"`
	CreatedBy string    `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
