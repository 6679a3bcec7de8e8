package agenda

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lovelog/lovelog/internal/event_bus"
	"github.com/lovelog/lovelog/internal/notify"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// RebuiltMessage is pushed to websocket clients after each committed rebuild.
type RebuiltMessage struct {
	Type    string  `json:"type"`
	Summary Summary `json:"summary"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// calendar clients are native apps without a stable Origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ForwardRebuilds broadcasts every agenda.rebuilt event to the hub.
func ForwardRebuilds(bus *event_bus.EventBus, hub *notify.Hub) (unsubscribe func()) {
	return event_bus.SubscribeTyped(bus, event_bus.AgendaRebuilt, func(e event_bus.EventT[event_bus.AgendaRebuiltPayload]) error {
		msg, err := json.Marshal(RebuiltMessage{
			Type: string(event_bus.AgendaRebuilt),
			Summary: Summary{
				Generation:  e.Data.Generation,
				Events:      e.Data.Events,
				Dates:       e.Data.Dates,
				MarkedDates: e.Data.MarkedDates,
				BuiltAt:     e.Data.BuiltAt,
			},
		})
		if err != nil {
			return err
		}
		hub.Broadcast(msg)
		return nil
	})
}

// Subscribe upgrades the request to a websocket that receives rebuild
// notifications. Incoming messages are ignored.
func Subscribe(hub *notify.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnf("websocket upgrade failed: %v", err)
			return
		}

		client := notify.NewClient()
		hub.Register(client)

		go writePump(conn, client)
		go readPump(conn, client, hub)
	}
}

func writePump(conn *websocket.Conn, client *notify.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn, client *notify.Client, hub *notify.Hub) {
	defer func() {
		hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debugf("websocket read error: %v", err)
			}
			return
		}
	}
}
