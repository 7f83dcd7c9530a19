// internal/domain/models/user.go
package models

import "time"

// User is a diver profile. The document id is the identity-provider
// subject id, so there is exactly one profile per authenticated identity.
//
// OperatorNotificationThreshold is only meaningful while IsOperator is
// true; it stays nil for ordinary divers.
type User struct {
	ID        string `bson:"_id" json:"userId"`
	Email     string `bson:"email" json:"email"`
	EmailCI   string `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"` // normalized 04XXXXXXXX
	CertLevel string `bson:"cert_level,omitempty" json:"certLevel,omitempty"`
	MaxDepth  int    `bson:"max_depth,omitempty" json:"maxDepth,omitempty"` // certified depth, meters
	PhotoURL  string `bson:"photo_url,omitempty" json:"photoURL,omitempty"`

	IsOperator                    bool `bson:"is_operator" json:"isOperator"`
	OperatorNotificationThreshold *int `bson:"operator_notification_threshold,omitempty" json:"operatorNotificationThreshold,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	LastLogin time.Time `bson:"last_login" json:"lastLogin"`
}

// FullName returns the display name used in calendars and digests.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
