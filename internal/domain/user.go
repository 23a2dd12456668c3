package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthType selects which credential path is valid for a user's login.
type AuthType string

const (
	AuthLocal    AuthType = "email/password"
	AuthExternal AuthType = "facebook"
)

// User is the single persistent record per email address. A record can
// change from local to external auth over its lifetime (see the merge
// policy in the auth package); its ID never changes.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"         json:"id"`
	ExternalID   string             `bson:"external_id,omitempty" json:"external_id,omitempty"` // provider user id, set iff AuthType == AuthExternal
	Name         string             `bson:"name"                  json:"name"`
	Email        string             `bson:"email"                 json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"` // set iff AuthType == AuthLocal
	AuthType     AuthType           `bson:"auth_type"             json:"auth_type"`
	SessionToken string             `bson:"session_token,omitempty" json:"-"`
	IsLoggedIn   bool               `bson:"is_logged_in"          json:"is_logged_in"`
	CreatedAt    time.Time          `bson:"created_at"            json:"created_at"`
}
