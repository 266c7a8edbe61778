// Package mcp exposes the task store to MCP clients as a set of tools,
// speaking line-delimited JSON-RPC 2.0 over stdio.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/sharpei/internal/api"
)

const protocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// Server answers MCP requests against a task store. Logs go to the logger
// only; stdout belongs to the protocol.
type Server struct {
	tools   *ToolHandler
	version string
	logger  *log.Logger
}

func NewServer(store api.Store, version string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		tools:   NewToolHandler(store, time.Now),
		version: version,
		logger:  logger.WithPrefix("mcp"),
	}
}

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
	Capabilities    ServerCapabilities `json:"capabilities"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type CallToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Run reads one request per line from in and writes one response per line
// to out until in is exhausted or ctx is cancelled. Notifications get no
// response.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	s.logger.Info("mcp server ready", "version", s.version)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if werr := s.serveLine(ctx, line, out); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
	}
}

func (s *Server) serveLine(ctx context.Context, line []byte, out io.Writer) error {
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("unparseable request", "err", err)
		return writeResponse(out, &Response{JSONRPC: "2.0", Error: &Error{Code: codeParseError, Message: "Parse error"}})
	}
	resp := s.Handle(ctx, &req)
	if resp == nil {
		return nil
	}
	return writeResponse(out, resp)
}

// Handle answers a single request. It returns nil for notifications.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.result(req, InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: "sharpei", Version: s.version},
			Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		})
	case "tools/list":
		return s.result(req, ListToolsResult{Tools: toolDefinitions()})
	case "tools/call":
		return s.callTool(ctx, req)
	case "ping":
		return s.result(req, struct{}{})
	case "notifications/initialized", "notifications/cancelled":
		return nil
	default:
		if req.ID == nil {
			return nil
		}
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: &Error{Code: codeMethodNotFound, Message: "Method not found"}}
	}
}

func (s *Server) callTool(ctx context.Context, req *Request) *Response {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: &Error{Code: codeInvalidParams, Message: "Invalid params"}}
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	s.logger.Debug("tool call", "tool", params.Name)
	result, err := s.tools.Handle(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return s.result(req, CallToolResult{
			Content: []ToolContent{{Type: "text", Text: "Error: " + err.Error()}},
			IsError: true,
		})
	}

	body, err := json.Marshal(result)
	if err != nil {
		return s.result(req, CallToolResult{
			Content: []ToolContent{{Type: "text", Text: "Error: encode result: " + err.Error()}},
			IsError: true,
		})
	}
	return s.result(req, CallToolResult{Content: []ToolContent{{Type: "text", Text: string(body)}}})
}

func (s *Server) result(req *Request, v any) *Response {
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: v}
}

func writeResponse(w io.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
