package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/hazyhaar/slotdiff/connectivity"
	"github.com/hazyhaar/slotdiff/schedule"
)

// Action names on the wire.
const (
	ActionExtract   = "extractData"
	ActionHighlight = "highlightDiff"
	ActionClear     = "clearHighlight"
)

// ErrUnknownOperation answers a request whose action is not recognised.
var ErrUnknownOperation = errors.New("unknown operation")

// maxRequestBody caps bridge request bodies (differences lists).
const maxRequestBody = 8 << 20

// Request is a bridge message.
type Request struct {
	Action      string                `json:"action"`
	Differences []schedule.Difference `json:"differences,omitempty"`
}

// Response is the single reply to a Request. An extraction always carries
// data, as [] when nothing was found.
type Response struct {
	Success   bool            `json:"success"`
	Data      []schedule.Slot `json:"data,omitzero"`
	URL       string          `json:"url,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Drawn     int             `json:"drawn,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Decode maps a Request to its Command.
func Decode(req Request) (Command, error) {
	switch req.Action {
	case ActionExtract:
		return ExtractCommand{}, nil
	case ActionHighlight:
		return HighlightCommand{Differences: req.Differences}, nil
	case ActionClear:
		return ClearCommand{}, nil
	}
	return nil, ErrUnknownOperation
}

// Encode maps a Result to its Response.
func Encode(r Result) Response {
	switch v := r.(type) {
	case *ExtractResult:
		data := v.Data
		if data == nil {
			data = []schedule.Slot{}
		}
		return Response{Success: true, Data: data, URL: v.URL, Timestamp: v.Timestamp}
	case Ack:
		return Response{Success: true, Drawn: v.Drawn}
	case *Failure:
		return Response{Success: false, Error: v.Error}
	}
	return Response{Success: false, Error: fmt.Sprintf("agent: unexpected result %T", r)}
}

// Serve decodes, dispatches and encodes one request.
func (a *Agent) Serve(ctx context.Context, req Request) Response {
	cmd, err := Decode(req)
	if err != nil {
		a.logger.Warn("agent: rejected request", "action", req.Action)
		return Response{Success: false, Error: err.Error()}
	}
	return Encode(a.Dispatch(ctx, cmd))
}

// Handle is the connectivity.Handler form of Serve: JSON Request in, JSON
// Response out. Malformed payloads are an error, not a Response.
func (a *Agent) Handle(ctx context.Context, payload []byte) ([]byte, error) {
	var req Request
	if err := sonic.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("agent: decode request: %w", err)
	}
	out, err := sonic.Marshal(a.Serve(ctx, req))
	if err != nil {
		return nil, fmt.Errorf("agent: encode response: %w", err)
	}
	return out, nil
}

// Handler wraps Handle with panic recovery and call logging, for
// registration on a connectivity.Router.
func (a *Agent) Handler(service string) connectivity.Handler {
	return connectivity.Chain(
		connectivity.Recovery(a.logger),
		connectivity.Logging(a.logger, service),
	)(a.Handle)
}

// HTTPHandler exposes the agent as POST endpoint. Every well-formed
// request gets a 200 with a Response body, including failures.
func (a *Agent) HTTPHandler() http.Handler {
	h := a.Handler("page")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeResponse(w, a.logger, http.StatusMethodNotAllowed, Response{Error: "method not allowed"})
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err != nil {
			writeResponse(w, a.logger, http.StatusBadRequest, Response{Error: err.Error()})
			return
		}
		out, err := h(r.Context(), body)
		if err != nil {
			status := http.StatusBadRequest
			var p *connectivity.ErrPanic
			if errors.As(err, &p) {
				status = http.StatusInternalServerError
			}
			writeResponse(w, a.logger, status, Response{Error: err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
	})
}

func writeResponse(w http.ResponseWriter, logger *slog.Logger, status int, resp Response) {
	out, err := sonic.Marshal(resp)
	if err != nil {
		logger.Error("agent: encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
