package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/middleware"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/utils"
	"github.com/kollektive-hackathon/flog-progression/internal/pkg/ws"
	"github.com/rs/zerolog/log"
)

type wsHandler struct {
	notificationHub *ws.WebSocketNotificationHub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func RegisterRoutes(rg *gin.RouterGroup, hub *ws.WebSocketNotificationHub) {
	handler := wsHandler{
		notificationHub: hub,
	}

	routes := rg.Group("/ws")
	routes.GET("/progress", middleware.VerifyAuthToken, handler.serveWs)
}

// serveWs streams the caller's own progress events until the client disconnects.
func (wsh *wsHandler) serveWs(c *gin.Context) {
	topic := ws.UserTopic(utils.GetUsername(c))
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Error upgrading ws connection")
		return
	}
	defer conn.Close()
	defer wsh.notificationHub.UnregisterListener(topic, conn)

	wsh.notificationHub.RegisterListener(topic, conn)

	for {
		var buffer any
		err := conn.ReadJSON(&buffer)
		if err != nil {
			log.Debug().Err(err).Str("topic", topic).Msg("ws listener disconnected")
			return
		}
	}
}
