package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kento-cell/MyHobbyCoffee/feed"
	"github.com/kento-cell/MyHobbyCoffee/middlewares"
	"github.com/kento-cell/MyHobbyCoffee/utils"
)

type FeedController struct {
	Hub      *feed.Hub
	upgrader websocket.Upgrader
}

// NewFeedController accepts upgrades only from the allowed origins; "*" allows any.
func NewFeedController(hub *feed.Hub, allowedOrigins []string) *FeedController {
	return &FeedController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range allowedOrigins {
					if o == "*" || o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// OrderFeed upgrades the connection and keeps it registered until the client leaves.
func (fc *FeedController) OrderFeed(c *gin.Context) {
	email := c.GetString(middlewares.ContextAdminEmail)

	conn, err := fc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("order feed upgrade: %v", err)
		return
	}

	fc.Hub.Register(conn, email)
	defer fc.Hub.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
