package events

import "github.com/mwaldner/scrawl/internal/contract"

// SocketEvent is pushed to connected clients when a note they can read
// changes.
type SocketEvent interface {
	GetType() contract.EventType
}

// ConnectionKill tells a client its connections were severed server-side
// (e.g. the account was disabled) and it must not reconnect.
type ConnectionKill struct{}

func (*ConnectionKill) GetType() contract.EventType {
	return contract.EventConnectionKill
}

type NoteCreated struct {
	*contract.NoteMetadataResponse
}

func (e *NoteCreated) GetType() contract.EventType {
	return contract.EventNoteCreated
}

type NoteUpdated struct {
	*contract.NoteMetadataResponse
}

func (e *NoteUpdated) GetType() contract.EventType {
	return contract.EventNoteUpdated
}

type NoteDeleted struct {
	NoteID string `json:"id"`
}

func (e *NoteDeleted) GetType() contract.EventType {
	return contract.EventNoteDeleted
}

type PermissionsUpdated struct {
	*contract.NoteMetadataResponse
}

func (e *PermissionsUpdated) GetType() contract.EventType {
	return contract.EventPermissionsUpdated
}
