// internal/domain/models/siteinterest.go
package models

import "time"

// SiteInterest records that a user is interested in diving a site.
// Presence of the document is the whole signal; a unique
// (user_id, site_id) index keeps the pair singular. Deleting a site
// cascades and removes every interest referencing it.
type SiteInterest struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	SiteID    string    `bson:"site_id" json:"siteId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
