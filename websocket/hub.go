package websocket

import (
	"log"
	"sync"

	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

type MessagePayload struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// ScheduleChange is pushed to every connected client so open calendars can
// refetch their window instead of showing stale events.
type ScheduleChange struct {
	Type      string    `json:"type"`
	SessionID uuid.UUID `json:"session_id,omitempty"`
	Kind      string    `json:"kind"`
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *models.Message)
var scheduleChanges = make(chan ScheduleChange, 64)

// NotifyScheduleChange fans a calendar update out to all connected clients.
// It never blocks the caller; if the hub is saturated the event is dropped
// and clients pick the change up on their next refresh.
func NotifyScheduleChange(sessionID uuid.UUID, kind string) {
	change := ScheduleChange{Type: "schedule_change", SessionID: sessionID, Kind: kind}
	select {
	case scheduleChanges <- change:
	default:
		log.Printf("Schedule change channel full, dropping %s event for %s", kind, sessionID)
	}
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case change := <-scheduleChanges:
			clientsMu.RLock()
			var stale []uuid.UUID
			for userID, conn := range clients {
				if err := conn.WriteJSON(change); err != nil {
					log.Printf("Error pushing schedule change to client %s: %v", userID, err)
					conn.Close()
					stale = append(stale, userID)
				}
			}
			clientsMu.RUnlock()
			if len(stale) > 0 {
				clientsMu.Lock()
				for _, userID := range stale {
					delete(clients, userID)
				}
				clientsMu.Unlock()
			}
		case message := <-Broadcast:
			var participantIDs []uuid.UUID
			err := database.DB.
				Table("conversation_participants").
				Where("conversation_id = ?", message.ConversationID).
				Pluck("user_id", &participantIDs).Error
			if err != nil {
				log.Printf("Error fetching participant IDs for conversation %s: %v", message.ConversationID, err)
				continue
			}

			clientsMu.RLock()
			for _, participantID := range participantIDs {
				if participantID == message.SenderID {
					continue
				}
				if conn, ok := clients[participantID]; ok {
					if err := conn.WriteJSON(message); err != nil {
						log.Printf("Error sending message to client %s: %v", participantID, err)
						conn.Close()
						clientsMu.RUnlock()
						clientsMu.Lock()
						delete(clients, participantID)
						clientsMu.Unlock()
						clientsMu.RLock()
					}
				}
			}
			clientsMu.RUnlock()
		}
	}
}
