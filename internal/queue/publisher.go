package queue

import (
	"context"
)

// Exchange and routing keys for auth events.
const (
	Exchange          = "auth.events"
	KeyUserRegistered = "user.registered"
	KeyUserLoggedIn   = "user.loggedin"
	KeyUserSignedOut  = "user.signedout"
)

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

type UserRegistered struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type UserLoggedIn struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Method string `json:"method"` // "email_password" | "facebook"
}

type UserSignedOut struct {
	UserID string `json:"user_id"`
	Method string `json:"method"`
}

// NoopPub stands in when no broker is configured (tests, local runs).
type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }
