package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/jwtly10/kid-relay/internal/upstream"
)

// RequestIDKey is the gin context key holding the inbound request ID
const RequestIDKey = "request_id"

const internalErrorMessage = "Internal Server Error"

// Doer issues one upstream call
type Doer interface {
	Do(ctx context.Context, call upstream.Call) upstream.Result
}

// Relay serves Operations by forwarding them through a Doer
type Relay struct {
	client Doer
	logger *slog.Logger
}

func New(client Doer, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	return &Relay{
		client: client,
		logger: logger,
	}
}

// Register mounts every operation on its own method and path
func (rl *Relay) Register(routes gin.IRoutes, ops []Operation) {
	for _, op := range ops {
		routes.Handle(op.Method, op.Path, rl.Handler(op))
	}
}

// Handler validates the inbound request, forwards it and writes the result
func (rl *Relay) Handler(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString(RequestIDKey)

		in, err := op.bind(c.Writer, c.Request)
		if err == nil {
			err = op.validate(in)
		}
		if err != nil {
			rl.writeValidationError(c, op, err)
			return
		}

		call, err := op.call(in)
		if err != nil {
			rl.logger.Error("failed to build upstream call", "operation", op.Name, "request_id", requestID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
			return
		}

		ctx := upstream.WithRequestID(c.Request.Context(), requestID)
		switch res := rl.client.Do(ctx, call).(type) {
		case upstream.Response:
			if op.EmptySuccess && res.OK() {
				c.Status(res.StatusCode)
				return
			}
			c.Data(res.StatusCode, "application/json; charset=utf-8", res.Body)

		case upstream.TransportFailure:
			rl.logger.Error("upstream call failed",
				"operation", op.Name,
				"path", op.Path,
				"request_id", requestID,
				"error", res.Err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})

		default:
			rl.logger.Error("unexpected upstream result", "operation", op.Name, "request_id", requestID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		}
	}
}

func (rl *Relay) writeValidationError(c *gin.Context, op Operation, err error) {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		verr = &ValidationError{Status: http.StatusBadRequest, Message: err.Error()}
	}
	rl.logger.Debug("rejected request",
		"operation", op.Name,
		"status", verr.Status,
		"reason", verr.Message,
		"request_id", c.GetString(RequestIDKey))
	c.JSON(verr.Status, gin.H{"error": verr.Message})
}
