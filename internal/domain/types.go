// Package domain contains entities without logic, just meta-data
package domain

type (
	// RoomID is an opaque, case-sensitive room identifier.
	RoomID string
	// ClientID is an opaque client identifier, unique within a room.
	ClientID string
)
