package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/evacgrid/backend/internal/dto"
	"github.com/evacgrid/backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RegistryController exposes read-only views over zones, centers and the
// evacuations currently in flight.
type RegistryController interface {
	ListZones(c echo.Context) error
	ListCenters(c echo.Context) error
	ListEvacuations(c echo.Context) error
	ListEvacuationsByUser(c echo.Context) error
}

type registryController struct {
	zoneService       service.ZoneService
	centerService     service.CenterService
	evacuationService service.EvacuationService
}

func newRegistryController(
	zoneService service.ZoneService,
	centerService service.CenterService,
	evacuationService service.EvacuationService,
) RegistryController {
	return &registryController{
		zoneService:       zoneService,
		centerService:     centerService,
		evacuationService: evacuationService,
	}
}

func (r *registryController) ListZones(c echo.Context) error {
	zones, err := r.zoneService.FindActive(c.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list active zones")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server Error"})
	}
	return c.JSON(http.StatusOK, zones)
}

func (r *registryController) ListCenters(c echo.Context) error {
	centers, err := r.centerService.FindAll(c.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list centers")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server Error"})
	}
	return c.JSON(http.StatusOK, centers)
}

func (r *registryController) ListEvacuations(c echo.Context) error {
	evacuations, err := r.evacuationService.FindAll(c.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list evacuations")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server Error"})
	}
	return c.JSON(http.StatusOK, evacuations)
}

func (r *registryController) ListEvacuationsByUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid user id"})
	}

	evacuations, err := r.evacuationService.FindByUser(c.Request().Context(), uint(userID))
	if errors.Is(err, dto.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Evacuation not found"})
	} else if err != nil {
		logrus.WithError(err).Errorf("Failed to list evacuations for user %d", userID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server Error"})
	}
	return c.JSON(http.StatusOK, evacuations)
}
