package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/jsonrpc2"
	websocketjsonrpc2 "github.com/sourcegraph/jsonrpc2/websocket"

	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// JSON-RPC method names
const (
	MethodServerStart      = "server.start"
	MethodServerStop       = "server.stop"
	MethodServerState      = "server.state"
	MethodFilesList        = "files.list"
	MethodFilesAdd         = "files.add"
	MethodFilesDelete      = "files.delete"
	MethodLogsList         = "logs.list"
	MethodLogsClear        = "logs.clear"
	MethodRequestsSimulate = "requests.simulate"
)

// RPCHandler exposes the session over JSON-RPC 2.0
type RPCHandler struct {
	session ports.SessionService
	logger  *HTTPLogger
}

// NewRPCHandler creates a JSON-RPC handler for session
func NewRPCHandler(session ports.SessionService, logger *HTTPLogger) *RPCHandler {
	if logger == nil {
		logger = NewHTTPLogger("rpc", false)
	}
	return &RPCHandler{session: session, logger: logger}
}

// Handle dispatches one request by method name
func (h *RPCHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, request *jsonrpc2.Request) {
	switch request.Method {
	case MethodServerStart:
		h.serverStart(ctx, conn, request)
	case MethodServerStop:
		h.session.Stop()
		h.reply(ctx, conn, request, MessageResponse{Message: "Server stopped", State: h.state()})
	case MethodServerState:
		h.reply(ctx, conn, request, h.session.State())
	case MethodFilesList:
		files := h.session.Files()
		resp := make([]FileResponse, len(files))
		for i, f := range files {
			resp[i] = toFileResponse(f, false)
		}
		h.reply(ctx, conn, request, resp)
	case MethodFilesAdd:
		h.filesAdd(ctx, conn, request)
	case MethodFilesDelete:
		h.filesDelete(ctx, conn, request)
	case MethodLogsList:
		h.reply(ctx, conn, request, h.session.Logs())
	case MethodLogsClear:
		h.session.ClearLogs()
		h.reply(ctx, conn, request, MessageResponse{Message: "Logs cleared"})
	case MethodRequestsSimulate:
		h.requestsSimulate(ctx, conn, request)
	default:
		h.logger.Warn("unknown method: %s", request.Method)
		h.replyError(ctx, conn, request, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", request.Method),
		})
	}
}

func (h *RPCHandler) serverStart(ctx context.Context, conn *jsonrpc2.Conn, request *jsonrpc2.Request) {
	var args portRequest
	if err := decodeParams(request, &args); err != nil {
		h.replyError(ctx, conn, request, err)
		return
	}

	if err := h.session.Start(args.Port); err != nil {
		h.replyError(ctx, conn, request, toRPCError(err))
		return
	}

	h.reply(ctx, conn, request, MessageResponse{
		Message: fmt.Sprintf("Server started on port %d", args.Port),
		State:   h.state(),
	})
}

func (h *RPCHandler) filesAdd(ctx context.Context, conn *jsonrpc2.Conn, request *jsonrpc2.Request) {
	var args fileRequest
	if err := decodeParams(request, &args); err != nil {
		h.replyError(ctx, conn, request, err)
		return
	}

	name, err := h.session.AddFile(args.Name, args.Content)
	if err != nil {
		h.replyError(ctx, conn, request, toRPCError(err))
		return
	}

	file, _ := h.session.File(name)
	resp := toFileResponse(file, true)
	h.reply(ctx, conn, request, MessageResponse{Message: fmt.Sprintf("File %s created", name), File: &resp})
}

func (h *RPCHandler) filesDelete(ctx context.Context, conn *jsonrpc2.Conn, request *jsonrpc2.Request) {
	var args fileRequest
	if err := decodeParams(request, &args); err != nil {
		h.replyError(ctx, conn, request, err)
		return
	}

	h.session.DeleteFile(args.Name)
	h.reply(ctx, conn, request, MessageResponse{Message: fmt.Sprintf("File %s deleted", args.Name)})
}

func (h *RPCHandler) requestsSimulate(ctx context.Context, conn *jsonrpc2.Conn, request *jsonrpc2.Request) {
	var args simulateRequest
	if err := decodeParams(request, &args); err != nil {
		h.replyError(ctx, conn, request, err)
		return
	}
	if args.Path == "" {
		args.Path = "/"
	}

	h.session.Simulate(args.Path)
	h.reply(ctx, conn, request, MessageResponse{Message: fmt.Sprintf("Requested %s", args.Path)})
}

func (h *RPCHandler) state() *entities.ServerState {
	state := h.session.State()
	return &state
}

func (h *RPCHandler) reply(ctx context.Context, conn *jsonrpc2.Conn, request *jsonrpc2.Request, result interface{}) {
	if request.Notif {
		return
	}
	if err := conn.Reply(ctx, request.ID, result); err != nil {
		h.logger.Error("Failed to reply to %s: %v", request.Method, err)
	}
}

func (h *RPCHandler) replyError(ctx context.Context, conn *jsonrpc2.Conn, request *jsonrpc2.Request, rpcErr *jsonrpc2.Error) {
	if request.Notif {
		return
	}
	if err := conn.ReplyWithError(ctx, request.ID, rpcErr); err != nil {
		h.logger.Error("Failed to send error reply to %s: %v", request.Method, err)
	}
}

// decodeParams unmarshals request params into dst
func decodeParams(request *jsonrpc2.Request, dst interface{}) *jsonrpc2.Error {
	if request.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "Invalid params"}
	}
	if err := json.Unmarshal(*request.Params, dst); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

// toRPCError maps domain errors onto JSON-RPC errors
func toRPCError(err error) *jsonrpc2.Error {
	switch {
	case errors.Is(err, entities.ErrInvalidPort),
		errors.Is(err, entities.ErrDuplicateName),
		errors.Is(err, entities.ErrEmptyFileName),
		errors.Is(err, entities.ErrPortLocked):
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	default:
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: "internal error"}
	}
}

// handleRPC upgrades to a JSON-RPC 2.0 connection and serves it until the peer disconnects
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	upgrader := s.newUpgrader()
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("RPC upgrade failed: %v", err)
		return
	}

	// Hijacked connections keep the server's deadlines otherwise
	_ = wsConn.SetReadDeadline(time.Time{})
	_ = wsConn.SetWriteDeadline(time.Time{})
	wsConn.SetReadLimit(maxRPCMessageSize)

	id := uuid.New().String()
	logger := s.logger.With("rpc")
	handler := NewRPCHandler(s.session, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := jsonrpc2.NewConn(ctx, websocketjsonrpc2.NewObjectStream(wsConn), handler)
	s.trackRPC(id, conn)
	defer s.untrackRPC(id)

	s.metrics.WebSocketOpened("/rpc")
	defer s.metrics.WebSocketClosed("/rpc")
	logger.Debug("RPC client %s connected", id)

	select {
	case <-conn.DisconnectNotify():
	case <-r.Context().Done():
		_ = conn.Close()
	}
	logger.Debug("RPC client %s disconnected", id)
}

func (s *Server) trackRPC(id string, conn *jsonrpc2.Conn) {
	s.rpcMu.Lock()
	defer s.rpcMu.Unlock()
	s.rpcConns[id] = conn
}

func (s *Server) untrackRPC(id string) {
	s.rpcMu.Lock()
	defer s.rpcMu.Unlock()
	delete(s.rpcConns, id)
}

func (s *Server) closeRPCConns() {
	s.rpcMu.Lock()
	defer s.rpcMu.Unlock()
	for id, conn := range s.rpcConns {
		_ = conn.Close()
		delete(s.rpcConns, id)
	}
}
