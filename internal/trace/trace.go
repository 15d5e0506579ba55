// Package trace tags one CLI invocation with a run id and logs its outcome.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RunIDKey is the context key for the run id
	RunIDKey ContextKey = log.FieldRunID
)

// Run is one traced command execution.
type Run struct {
	ID      string
	Command string
	start   time.Time
	logger  *slog.Logger
}

// Start stores a fresh run id in ctx and logs the start of command.
func Start(ctx context.Context, logger *slog.Logger, command string) (context.Context, *Run) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Run{
		ID:      GenerateRunID(),
		Command: command,
		start:   time.Now(),
	}
	r.logger = logger.With(log.FieldRunID, r.ID)
	ctx = context.WithValue(ctx, RunIDKey, r.ID)

	r.logger.DebugContext(ctx, "Command started", "command", command)
	return ctx, r
}

// Finish logs the outcome: info on success, error otherwise.
func (r *Run) Finish(ctx context.Context, err error) {
	if r == nil {
		return
	}
	duration := time.Since(r.start)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	args := []any{
		"command", r.Command,
		log.FieldDuration, duration.Milliseconds(),
		"success", err == nil,
	}
	if err != nil {
		args = append(args, log.FieldError, err)
	}
	r.logger.Log(ctx, level, "Command completed", args...)
}

// GenerateRunID creates a unique run id for tracing
func GenerateRunID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("run_%d", time.Now().UnixNano())
	}
	return "run_" + hex.EncodeToString(bytes)
}

// GetRunID extracts the run id from context
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}
