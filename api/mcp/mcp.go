// Package mcp provides an MCP (Model Context Protocol) server exposing the
// career assistant and course tutor as tools.
package mcp

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/skillstream/pkg/client/career"
	"github.com/papercomputeco/skillstream/pkg/client/tutor"
	"github.com/papercomputeco/skillstream/pkg/logger"
	"github.com/papercomputeco/skillstream/pkg/utils"
)

// Path is where the MCP handler is mounted.
const Path = "/mcp"

type Config struct {
	// Career enables the career_chat tool.
	Career *career.Client

	// Tutor enables the tutor_chat and tutor_suggestions tools.
	Tutor *tutor.Client

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	logger    *slog.Logger
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
	app       *fiber.App
}

// NewServer creates a new MCP server with a tool per configured worker.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
		logger: logger.OrNop(c.Logger),
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "skillstream",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Career == nil && c.Tutor == nil {
			return nil, errors.New("at least one worker client is required")
		}

		if c.Career != nil {
			mcp.AddTool(mcpServer, &mcp.Tool{
				Name:        careerChatToolName,
				Description: careerChatDescription,
			}, s.handleCareerChat)
		}

		if c.Tutor != nil {
			mcp.AddTool(mcpServer, &mcp.Tool{
				Name:        tutorChatToolName,
				Description: tutorChatDescription,
			}, s.handleTutorChat)

			mcp.AddTool(mcpServer, &mcp.Tool{
				Name:        tutorSuggestionsToolName,
				Description: tutorSuggestionsDescription,
			}, s.handleTutorSuggestions)
		}
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON("pong")
	})
	app.All(Path, adaptor.HTTPHandler(s.handler))
	s.app = app

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// App returns the fiber app serving /ping and the MCP handler.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the MCP server on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("starting MCP server", "listen", addr, "path", Path)
	return s.app.Listen(addr)
}

// RunWithListener starts the MCP server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting MCP server", "listen", listener.Addr().String(), "path", Path)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the MCP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
