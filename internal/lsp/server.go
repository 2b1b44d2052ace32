// Package lsp implements a Language Server Protocol server for loclink.
//
// Open text-like documents are indexed as the editor reports them. Every
// marker becomes a document link; go-to-definition and find-references on a
// marker search open documents and the filesystem for its partners.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/present"
	"github.com/aidanlsb/loclink/internal/registry"
	"github.com/aidanlsb/loclink/internal/search"
)

// errExit stops the message loop when the client sends "exit".
var errExit = errors.New("exit")

// Options configures a Server.
type Options struct {
	Input  io.Reader // Default: os.Stdin
	Output io.Writer // Default: os.Stdout
	Logger *slog.Logger

	// Delay is the reindex debounce delay. Default: registry.DefaultDelay.
	Delay time.Duration

	// Files searches the filesystem. Nil searches open documents only.
	Files   search.FileSearcher
	Root    string
	Timeout time.Duration

	Extensions  []string
	LanguageIDs []string
}

// Server is the loclink LSP server.
type Server struct {
	logger *slog.Logger

	documents *DocumentManager
	registry  *registry.Registry
	search    *search.Aggregator
	presenter *presenter

	ctx    context.Context
	cancel context.CancelFunc

	// LSP communication
	input  *bufio.Reader
	output io.Writer
	mu     sync.Mutex // Protects output writes

	shutdown bool
}

// NewServer creates a new LSP server.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "lsp")

	input := opts.Input
	if input == nil {
		input = os.Stdin
	}
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		logger:    logger,
		documents: NewDocumentManager(document.NewFilter(opts.Extensions, opts.LanguageIDs)),
		ctx:       ctx,
		cancel:    cancel,
		input:     bufio.NewReader(input),
		output:    output,
	}
	s.presenter = newPresenter(s)

	reg, err := registry.New(registry.Config{
		Host:      editorHost{dm: s.documents},
		Presenter: s.presenter,
		Delay:     opts.Delay,
		Logger:    logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}
	s.registry = reg

	agg, err := search.NewAggregator(reg, opts.Files, search.Options{
		Root:    opts.Root,
		Timeout: opts.Timeout,
		Logger:  logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create search: %w", err)
	}
	s.search = agg
	reg.SetActivator(present.Bind(ctx, agg, s.presenter, logger))

	return s, nil
}

// Registry returns the server's document registry.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Run processes messages until shutdown, exit or end of input.
func (s *Server) Run(ctx context.Context) error {
	defer s.cancel()
	defer s.registry.Close()

	s.logger.Debug("loclink LSP server started", "root", s.search.Root())

	// Main message loop
	for !s.shutdown {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.handleNextMessage(); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, errExit) {
					return nil
				}
				s.logger.Debug("error handling message", "error", err)
			}
		}
	}

	return nil
}

// handleNextMessage reads and processes a single LSP message.
func (s *Server) handleNextMessage() error {
	var contentLength int
	for {
		line, err := s.input.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break // Empty line separates header from content
		}
		if strings.HasPrefix(line, "Content-Length: ") {
			fmt.Sscanf(line, "Content-Length: %d", &contentLength)
		}
	}

	if contentLength == 0 {
		return fmt.Errorf("no Content-Length header")
	}

	content := make([]byte, contentLength)
	if _, err := io.ReadFull(s.input, content); err != nil {
		return err
	}

	var msg jsonRPCMessage
	if err := json.Unmarshal(content, &msg); err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	s.logger.Debug("received", "method", msg.Method)

	return s.dispatch(msg)
}

// dispatch routes a message to the appropriate handler.
func (s *Server) dispatch(msg jsonRPCMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		s.registry.Init()
		return nil
	case "shutdown":
		s.registry.Close()
		s.shutdown = true
		return s.sendResult(msg.ID, nil)
	case "exit":
		return errExit
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/definition", "textDocument/references":
		return s.handlePartners(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/documentLink":
		return s.handleDocumentLink(msg)
	case "documentLink/resolve":
		return s.handleDocumentLinkResolve(msg)
	default:
		s.logger.Debug("unhandled method", "method", msg.Method)
		if msg.ID != nil {
			return s.sendError(msg.ID, codeMethodNotFound, "Method not found: "+msg.Method)
		}
		return nil
	}
}

// sendResult sends a successful response.
func (s *Server) sendResult(id interface{}, result interface{}) error {
	return s.send(jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// sendError sends an error response.
func (s *Server) sendError(id interface{}, code int, message string) error {
	return s.send(jsonRPCErrorResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &jsonRPCError{
			Code:    code,
			Message: message,
		},
	})
}

// sendNotification sends a notification (no response expected).
func (s *Server) sendNotification(method string, params interface{}) error {
	return s.send(jsonRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
		Params:  mustMarshal(params),
	})
}

// send writes a JSON-RPC message to the output.
func (s *Server) send(msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(content))
	if _, err := io.WriteString(s.output, header); err != nil {
		return err
	}
	_, err = s.output.Write(content)
	return err
}

func mustMarshal(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

// JSON-RPC types

const (
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)

type jsonRPCMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result"`
}

type jsonRPCErrorResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Error   *jsonRPCError `json:"error"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
