package riak

import "github.com/google/uuid"

// NewClientID returns a random identifier suitable for Config.ClientID.
func NewClientID() string {
	return uuid.NewString()
}
