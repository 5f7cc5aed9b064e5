package controller

import (
	"net/http"

	"github.com/evacgrid/backend/internal/gateway"
	"github.com/evacgrid/backend/internal/service"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type StreamController interface {
	Stream(c echo.Context) error
}

type streamController struct {
	router   *gateway.Router
	services service.Services
	upgrader websocket.Upgrader
}

func newStreamController(services service.Services) StreamController {
	return &streamController{
		router:   gateway.NewRouter(services),
		services: services,
		upgrader: websocket.Upgrader{
			// Clients are mobile apps and IoT devices, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *streamController) Stream(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logrus.WithError(err).Error("WebSocket upgrade failed")
		return err
	}
	defer conn.Close()

	session := gateway.NewSession(conn, s.router, s.services)
	session.Run(c.Request().Context())
	return nil
}
