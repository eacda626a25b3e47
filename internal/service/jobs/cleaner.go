package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/service"
	"github.com/mwaldner/scrawl/internal/utils"
)

// ConnectionCleaner drops websocket connections whose token expired or
// whose heartbeat went silent.
type ConnectionCleaner struct {
	wsService *service.WebSocketService
}

func NewConnectionCleaner(wsService *service.WebSocketService) *ConnectionCleaner {
	return &ConnectionCleaner{wsService: wsService}
}

func (c *ConnectionCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	log.Info("Connection cleaner cron started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping connection cleaner...")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *ConnectionCleaner) cleanup() {
	now := utils.NowUTC()
	conns, err := c.wsService.ConnRepo.FindExpired(now)
	if err != nil {
		log.Errorf("Cleaner: failed to fetch expired connections: %v", err)
		return
	}

	if len(conns) == 0 {
		return
	}

	log.Infof("Cleaner: found %d expired connections, terminating...", len(conns))

	envelope := &contract.OutgoingSocketMessage{
		Type: contract.EventSessionExpired,
	}

	for _, conn := range conns {
		// Fresh context for network calls, detached from the ticker's timing
		bgCtx := context.Background()

		// Notify the client so it knows not to reconnect
		_ = c.wsService.Gateway.PostToConnection(bgCtx, conn.ConnectionID, envelope)
		_ = c.wsService.Gateway.DeleteConnection(bgCtx, conn.ConnectionID)
		_ = c.wsService.ConnRepo.Delete(conn.ConnectionID)
	}
}
