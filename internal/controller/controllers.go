package controller

import (
	"github.com/evacgrid/backend/internal/service"
	"github.com/labstack/echo/v4"
)

type Controllers interface {
	Info() InfoController
	Registry() RegistryController
	Stream() StreamController

	Route(e *echo.Echo)
}

type controllers struct {
	infoController     InfoController
	registryController RegistryController
	streamController   StreamController
}

func NewControllers(services service.Services) Controllers {
	infoController := newInfoController()
	registryController := newRegistryController(services.Zone(), services.Center(), services.Evacuation())
	streamController := newStreamController(services)
	return &controllers{
		infoController:     infoController,
		registryController: registryController,
		streamController:   streamController,
	}
}

func (c controllers) Info() InfoController {
	return c.infoController
}

func (c controllers) Registry() RegistryController {
	return c.registryController
}

func (c controllers) Stream() StreamController {
	return c.streamController
}

func (c controllers) Route(e *echo.Echo) {
	e.GET("/", c.infoController.Info)
	e.GET("/ws", c.streamController.Stream)

	api := e.Group("/api")
	api.GET("/zones", c.registryController.ListZones)
	api.GET("/centers", c.registryController.ListCenters)
	api.GET("/evacuations", c.registryController.ListEvacuations)
	api.GET("/evacuations/:userId", c.registryController.ListEvacuationsByUser)
}
