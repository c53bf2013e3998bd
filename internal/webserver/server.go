package webserver

import (
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/croplink/agrimarket/config"
)

// AppContext is the slice of the application the web layer needs.
type AppContext interface {
	DB() *gorm.DB
	Config() *config.AppConfig
}

type WebServer struct {
	root   *echo.Echo
	appCtx AppContext
}

var server *WebServer

// jsonSerializer plugs json-iterator into echo's response encoding.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := jsoniter.NewDecoder(c.Request().Body).Decode(i)
	if err == io.EOF {
		return nil
	}
	return err
}

// Init builds the echo instance and its middleware stack.
func Init(appCtx AppContext) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	server = &WebServer{root: e, appCtx: appCtx}
	return server
}

// Instance returns the initialized web server.
func Instance() *WebServer {
	return server
}

// GetDB returns the application database handle for handlers.
func GetDB() *gorm.DB {
	return server.appCtx.DB()
}

// Listen starts serving on the configured address.
func (s *WebServer) Listen() error {
	cfg := s.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("web server listening on %s", addr)
	err := s.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP listener.
func (s *WebServer) Shutdown() {
	_ = s.root.Close()
}

// Echo exposes the underlying router (used by tests).
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// PubRoute registers an unauthenticated route.
func PubRoute(method, path string, h echo.HandlerFunc) {
	server.root.Add(method, path, h)
}

// ApiRoute registers a route behind bearer authentication.
func ApiRoute(method, path string, h echo.HandlerFunc) {
	server.root.Add(method, path, h, JwtMiddleware(server.appCtx), LoadUserMiddleware(server.appCtx))
}

// AdminRoute registers a route behind bearer authentication plus the
// Vendor/Master order-management threshold. Master-only handlers perform an
// additional MustMaster check.
func AdminRoute(method, path string, h echo.HandlerFunc) {
	server.root.Add(method, path, h,
		JwtMiddleware(server.appCtx), LoadUserMiddleware(server.appCtx), RequireAdminMiddleware())
}
