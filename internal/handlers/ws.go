package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/farmconnect-dev/farmconnect/internal/relay"
	"github.com/farmconnect-dev/farmconnect/internal/types"
	"github.com/farmconnect-dev/farmconnect/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// clientFrame is what a connected client may send upward. The only
// supported event is a direct message to another user's room.
type clientFrame struct {
	Event string          `json:"event"`
	To    uint            `json:"to"`
	Data  json.RawMessage `json:"data"`
}

func WebSocket(hub *relay.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		currentUser, err := utils.GetCurrentUser(c)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				for _, allowed := range types.AllowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		conn.SetReadLimit(maxMessageSize)
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set initial read deadline: %v", err)
			conn.Close()
			return
		}
		conn.SetPongHandler(func(string) error {
			if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
				log.Printf("Failed to set read deadline in pong handler: %v", err)
			}
			return nil
		})

		hub.Join(conn, currentUser.ID)

		defer func() {
			hub.Leave(conn)
			conn.Close()

			log.Printf("WebSocket connection closed for user %d", currentUser.ID)
		}()

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for welcome message: %v", err)
			return
		}

		err = conn.WriteJSON(relay.Event{
			Event: "connected",
			Data:  gin.H{"user_id": currentUser.ID},
		})

		if err != nil {
			log.Printf("Failed to send welcome message: %v", err)
			return
		}

		ticker := time.NewTicker(pingPeriod)
		pingDone := make(chan struct{})

		defer func() {
			ticker.Stop()
			close(pingDone)
		}()

		go func() {
			for {
				select {
				case <-pingDone:
					return
				case <-ticker.C:
					if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
						log.Printf("Failed to set write deadline for user %d: %v", currentUser.ID, err)
						return
					}
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						log.Printf("Ping failed for user %d: %v", currentUser.ID, err)
						return
					}
				}
			}
		}()

		for {
			if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
				log.Printf("Failed to set read deadline for user %d: %v", currentUser.ID, err)
				break
			}

			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket error for user %d: %v", currentUser.ID, err)
				}
				break
			}

			if messageType != websocket.TextMessage {
				continue
			}

			var frame clientFrame

			if err := json.Unmarshal(message, &frame); err != nil {
				log.Printf("Invalid frame from user %d: %v", currentUser.ID, err)
				continue
			}

			// Direct messages are relayed, never persisted.
			if frame.Event == "message" && frame.To != 0 {
				hub.SendToUser(frame.To, "newMessage", gin.H{
					"from":     currentUser.ID,
					"username": currentUser.Username,
					"data":     frame.Data,
				})
			}
		}
	}
}
