package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/placette/messaging/internal/store"
	"go.uber.org/zap"
)

// Server hosts the placette messaging REST API.
type Server struct {
	app    *fiber.App
	addr   string
	logger *zap.Logger
}

// New builds the fiber app with all routes registered.
func New(addr string, db *store.DB, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "placetted",
		DisableStartupMessage: true,
	})

	h := &handlers{db: db, logger: logger}

	app.Get("/healthz", h.Healthz)
	app.Post("/users", h.Register)

	conv := app.Group("/conversations", h.RequireAuth)
	conv.Get("/", h.ListConversations)
	conv.Post("/start/:targetUserID", h.StartConversation)
	conv.Get("/:id/messages", h.ListMessages)
	conv.Post("/:id/messages", h.SendMessage)
	conv.Post("/:id/mark-as-read", h.MarkAsRead)

	return &Server{app: app, addr: addr, logger: logger}
}

// App exposes the fiber app for in-process request tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start begins serving. Blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.addr))
	return s.app.Listen(s.addr)
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.app.ShutdownWithContext(ctx)
}
