package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const pingTimeout = 2 * time.Second

// Pinger checks storage reachability
type Pinger interface {
	Ping(context.Context, *readpref.ReadPref) error
}

type health struct {
	Status string `json:"status"`
}

// HealthHTTPHandler is http handler for health endpoint
type HealthHTTPHandler struct {
	pinger Pinger
}

// NewHealthHTTPHandler builds new HealthHTTPHandler
func NewHealthHTTPHandler(pinger Pinger) *HealthHTTPHandler {
	return &HealthHTTPHandler{pinger: pinger}
}

// Get reports service health
// @Summary     Health check
// @Description Reports whether document store answers ping
// @Tags        health
// @Produce     json
// @Success     200 {object} health
// @Failure     503 {object} health
// @Router      /healthz [get]
func (h *HealthHTTPHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx, readpref.Primary()); err != nil {
		logrus.Warnf("document store is unreachable - %v", err)
		return c.JSON(http.StatusServiceUnavailable, &health{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, &health{Status: "ok"})
}
