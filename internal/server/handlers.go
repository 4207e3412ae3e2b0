package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/njchilds90/symdiff"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func (s *Server) handleTool(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(c, http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		s.writeJSON(c, http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req symdiff.ToolRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		s.writeJSON(c, http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Tool == "" {
		s.writeJSON(c, http.StatusBadRequest, gin.H{"error": "missing tool"})
		return
	}

	ctx := c.Request.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp := s.engine.HandleToolCall(ctx, req)
	status := "ok"
	if resp.Error != "" {
		status = "error"
		s.logger.Debug("tool call failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("tool", req.Tool),
			zap.String("error", resp.Error),
		)
	}
	label := req.Tool
	if !symdiff.KnownTool(label) {
		label = "unknown"
	}
	s.metrics.RecordToolCall(label, status, time.Since(start))
	s.writeJSON(c, http.StatusOK, resp)
}

func (s *Server) handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(symdiff.MCPToolSpec()))
}

func (s *Server) handleHealth(c *gin.Context) {
	s.writeJSON(c, http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(c *gin.Context, code int, v interface{}) {
	b, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(code, "application/json", b)
}
