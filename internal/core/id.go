package core

import "github.com/google/uuid"

func NewSessionID() string {
	return uuid.NewString()
}

func NewMessageID() string {
	return uuid.NewString()
}
