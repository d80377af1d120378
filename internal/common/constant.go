// Package common contains shared constants and sentinel errors used across
// genzes components.
package common

import "time"

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Storage keys of the local tables. The values match the keys the web client
// writes, so a store exported from a browser can be loaded as is.
const (
	UsersKey    = "genzes_local_users"
	SessionKey  = "genzes_local_session"
	ProfilesKey = "genzes_local_profiles"
	MessagesKey = "genzes_local_messages"
)

// DefaultSessionTTL is the lifetime of a locally created session.
const DefaultSessionTTL = 24 * time.Hour
