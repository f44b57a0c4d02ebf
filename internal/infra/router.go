package infra

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	_ "github.com/umalmyha/contacts-api/docs" // registers OpenAPI document
	"github.com/umalmyha/contacts-api/internal/config"
	"github.com/umalmyha/contacts-api/internal/handlers"
	"github.com/umalmyha/contacts-api/internal/middleware"
	"github.com/umalmyha/contacts-api/internal/service"
	"github.com/umalmyha/contacts-api/internal/validation"
)

const apiDocsPath = "/api-docs"

func Router(cfg config.HTTPCfg, logger *logrus.Logger, contactSvc service.ContactService, pinger handlers.Pinger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.PlainTextErrorHandler(logger)

	validator, err := validation.English()
	if err != nil {
		return nil, fmt.Errorf("failed to build validator - %w", err)
	}
	e.Validator = validator

	// Middleware
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CorsAllowOrigins}))

	// Handlers
	contactHandler := handlers.NewContactHTTPHandler(contactSvc)
	healthHandler := handlers.NewHealthHTTPHandler(pinger)

	e.GET("/healthz", healthHandler.Get)

	// contacts
	contactsAPI := e.Group("/contacts")
	contactsAPI.GET("", contactHandler.GetAll)
	contactsAPI.GET("/:id", contactHandler.Get)
	contactsAPI.POST("", contactHandler.Post)
	contactsAPI.PUT("/:id", contactHandler.Put)
	contactsAPI.DELETE("/:id", contactHandler.DeleteByID)

	// docs
	e.GET(apiDocsPath, func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, apiDocsPath+"/index.html")
	})
	e.GET(apiDocsPath+"/*", echoSwagger.WrapHandler)

	// static front end
	e.File("/", filepath.Join(cfg.StaticDir, "index.html"))
	e.Static("/", cfg.StaticDir)

	return e, nil
}
