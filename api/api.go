package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/papercomputeco/skillstream/pkg/logger"
)

const (
	serviceName = "skillstream-mock"

	defaultReply = "Thanks for your question about {message}. Here is a short answer."
)

// Server is the mock worker. It keeps the conversations it issued and the
// lesson progress it was sent in memory only.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App

	mu            sync.Mutex
	conversations map[string]int
	progress      map[string]map[string]lessonProgress
}

// NewServer creates a new mock worker server.
func NewServer(config Config) (*Server, error) {
	switch config.Dialect {
	case "":
		config.Dialect = DialectTyped
	case DialectTyped, DialectInferred:
	default:
		return nil, fmt.Errorf("unsupported dialect: %q", config.Dialect)
	}

	if config.Reply == "" {
		config.Reply = defaultReply
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(cors.New())

	s := &Server{
		config:        config,
		logger:        logger.OrNop(config.Logger),
		app:           app,
		conversations: make(map[string]int),
		progress:      make(map[string]map[string]lessonProgress),
	}

	app.Get("/ping", s.handlePing)
	app.Get("/health", s.handleHealth)
	app.Get("/", s.handleHealth)

	app.Post("/chat", s.requireAuth, s.handleCareerChat)
	app.Post("/career-ai-chat", s.requireAuth, s.handleCareerChat)
	app.Post("/ai-tutor-chat", s.requireAuth, s.handleTutorChat)
	app.Post("/ai-tutor-suggestions", s.requireAuth, s.handleSuggestions)
	app.Post("/ai-tutor-feedback", s.requireAuth, s.handleFeedback)
	app.Get("/ai-tutor-progress", s.requireAuth, s.handleGetProgress)
	app.Post("/ai-tutor-progress", s.requireAuth, s.handleUpdateProgress)

	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the mock server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock worker",
		"listen", s.config.ListenAddr,
		"dialect", s.config.Dialect,
		"require_auth", s.config.RequireAuth,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the mock server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting mock worker",
		"listen", listener.Addr().String(),
		"dialect", s.config.Dialect,
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the mock server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler renders router and handler errors as the workers do:
// a JSON object with an "error" field.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
		switch code {
		case fiber.StatusNotFound:
			msg = "Not found"
		case fiber.StatusMethodNotAllowed:
			msg = "Method not allowed"
		default:
			msg = ferr.Message
		}
	}

	return c.Status(code).JSON(ErrorResponse{Error: msg})
}
