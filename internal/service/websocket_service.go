package service

import (
	"context"

	"github.com/labstack/gommon/log"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/domain/entity"
	"github.com/mwaldner/scrawl/internal/domain/events"
	"github.com/mwaldner/scrawl/internal/infrastructure/aws/websocket"
	"github.com/mwaldner/scrawl/internal/utils"
)

type ConnectionRepository interface {
	Save(conn *entity.Connection) error
	Delete(connID string) error
	FindByUserID(userID int64) ([]string, error)
	FindByUserIDs(userIDs []int64) ([]string, error)
	FindAll() ([]string, error)
	FindExpired(now int64) ([]*entity.Connection, error)
	UpdateHeartbeat(connID string, now int64) error
}

type WebSocketService struct {
	ConnRepo ConnectionRepository
	Gateway  websocket.GatewayClient
}

func NewWebSocketService(repo ConnectionRepository, gateway websocket.GatewayClient) *WebSocketService {
	return &WebSocketService{
		ConnRepo: repo,
		Gateway:  gateway,
	}
}

func (s *WebSocketService) RegisterConnection(userID int64, connectionID string, exp int64) error {
	now := utils.NowUTC()
	conn := &entity.Connection{
		ConnectionID:    connectionID,
		UserID:          userID,
		ExpiresAt:       exp * 1000, // "exp" is in seconds, our app uses millis
		LastHeartbeatAt: now,        // avoid disconnecting fresh connections
		CreatedAt:       now,
	}
	return s.ConnRepo.Save(conn)
}

func (s *WebSocketService) RemoveConnection(connectionID string) {
	// Not the client's fault if this fails, so no error surfaces
	_ = s.ConnRepo.Delete(connectionID)
}

func (s *WebSocketService) HandleMessage(msg *contract.IncomingSocketMessage, connID string) {
	switch msg.Type {
	case contract.EventPing:
		s.handlePing(connID)
	}
}

// NotifyNote fans a note lifecycle event out to clients that can read
// the note: everyone when the note has a public default access, or just
// the owner and the access list otherwise.
func (s *WebSocketService) NotifyNote(ctx context.Context, note *entity.Note, evt events.SocketEvent) {
	envelope := &contract.OutgoingSocketMessage{
		Type: evt.GetType(),
		Data: evt,
	}

	if note.DefaultAccess != entity.AccessNone {
		s.broadcast(ctx, envelope)
		return
	}

	userIDs := make([]int64, 0, len(note.Grants)+1)
	if note.OwnerID != 0 {
		userIDs = append(userIDs, note.OwnerID)
	}
	for _, g := range note.Grants {
		userIDs = append(userIDs, g.UserID)
	}
	if len(userIDs) == 0 {
		return
	}

	conns, err := s.ConnRepo.FindByUserIDs(userIDs)
	if err != nil {
		log.Errorf("failed to fetch connections for note %s: %v", note.PublicID, err)
		return
	}
	s.post(ctx, conns, envelope)
}

// TerminateUserConnections sends a "poison pill" message and then
// disconnects every connection of a user.
func (s *WebSocketService) TerminateUserConnections(ctx context.Context, userID int64, evt events.SocketEvent) {
	conns, _ := s.ConnRepo.FindByUserID(userID)
	msg := &contract.OutgoingSocketMessage{
		Type: evt.GetType(),
		Data: evt,
	}

	for _, connID := range conns {
		_ = s.Gateway.PostToConnection(ctx, connID, msg)
		_ = s.Gateway.DeleteConnection(ctx, connID)
		_ = s.ConnRepo.Delete(connID)
	}
}

func (s *WebSocketService) broadcast(ctx context.Context, envelope *contract.OutgoingSocketMessage) {
	conns, err := s.ConnRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch connections for broadcast: %v", err)
		return
	}
	s.post(ctx, conns, envelope)
}

func (s *WebSocketService) post(ctx context.Context, conns []string, envelope *contract.OutgoingSocketMessage) {
	for _, connID := range conns {
		// Errors ignored so one stale connection doesn't block others
		_ = s.Gateway.PostToConnection(ctx, connID, envelope)
	}
}

func (s *WebSocketService) handlePing(connID string) {
	now := utils.NowUTC()
	if err := s.ConnRepo.UpdateHeartbeat(connID, now); err != nil {
		log.Errorf("failed to update heartbeat: %v", err)
		return
	}

	go func(conn string) {
		err := s.Gateway.PostToConnection(context.Background(), conn, &contract.OutgoingSocketMessage{
			Type: contract.EventAck,
		})
		if err != nil {
			log.Errorf("failed to post ack to conn %s: %v", conn, err)
		}
	}(connID)
}
