// Package mcpadapter exposes document search and record browsing as Model
// Context Protocol tools so assistants can query the corpus directly.
package mcpadapter

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/avezina/propdocs/internal/core/ports"
)

const serverVersion = "0.1.0"

type Server struct {
	search  ports.DocumentSearcher
	records ports.RecordBrowser
	logger  *slog.Logger
	mcp     *server.MCPServer
}

func NewServer(search ports.DocumentSearcher, records ports.RecordBrowser, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		search:  search,
		records: records,
		logger:  logger,
		mcp: server.NewMCPServer("propdocs", serverVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// Run serves the protocol on stdin/stdout until ctx is cancelled. Errors
// go to stderr, stdout belongs to the protocol stream.
func (s *Server) Run(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
