package server

import (
	"context"
	"net"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kitbuilder587/dealscout/internal/config"
	"github.com/kitbuilder587/dealscout/internal/metrics"
)

type Deps struct {
	Config  config.ServerConfig
	Handler *Handler
	Logger  *zap.Logger
}

type Server struct {
	echo *echo.Echo
	addr string
}

func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			deps.Logger.Error("panic recovered",
				zap.Error(err),
				zap.ByteString("stack", stack),
			)
			return nil
		},
	}))
	e.Use(logRequest(deps.Logger))

	e.GET("/search", deps.Handler.Search)
	e.GET("/health", deps.Handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return &Server{
		echo: e,
		addr: net.JoinHostPort(deps.Config.Host, deps.Config.Port),
	}
}

func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// logRequest логирует клиентские запросы; health и metrics не шумят.
func logRequest(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if path == "/health" || path == "/metrics" {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", path),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}
