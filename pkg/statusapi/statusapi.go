// Package statusapi exposes a running pipeline's stats.Counters over
// HTTP so an operator can watch a multi-hour country-scale import
// without tailing logs. It follows the same fiber.App-plus-handlers
// shape as the location-microservice's internal/delivery/http server,
// trimmed to the two routes this tool needs.
package statusapi

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// SnapshotSource holds the most recently published stats.Counters
// snapshot. Publish is called by the pipeline driver between callback
// invocations (never concurrently with itself); Load is called from the
// HTTP handler's goroutine. atomic.Value gives both sides a data race
// free path without making stats.Counters itself concurrency-aware.
type SnapshotSource struct {
	v atomic.Value
}

// NewSnapshotSource returns a SnapshotSource pre-loaded with an empty
// snapshot, so Load never has to special-case a nil value.
func NewSnapshotSource() *SnapshotSource {
	s := &SnapshotSource{}
	s.Publish(map[string]int64{})
	return s
}

// Publish stores snapshot as the current value.
func (s *SnapshotSource) Publish(snapshot map[string]int64) {
	s.v.Store(snapshot)
}

// Load returns the most recently published snapshot.
func (s *SnapshotSource) Load() map[string]int64 {
	return s.v.Load().(map[string]int64)
}

// Server is the diagnostics HTTP server. It never mutates pipeline
// state; it only reads whatever SnapshotSource was handed to it.
type Server struct {
	app      *fiber.App
	log      *zap.Logger
	source   *SnapshotSource
	validate *validator.Validate
	startedAt time.Time
}

// statsQuery is the validated query-string shape for GET /stats.
type statsQuery struct {
	Pretty bool `query:"pretty"`
}

// NewServer builds a Server ready to Listen. source is read on every
// GET /stats request; callers publish to it from the pipeline goroutine.
func NewServer(source *SnapshotSource, log *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "osmtopo diagnostics",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(recover.New())

	s := &Server{
		app:       app,
		log:       log,
		source:    source,
		validate:  validator.New(),
		startedAt: time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/stats", s.handleStats)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	var q statsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.validate.Struct(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	snapshot := s.source.Load()
	if q.Pretty {
		body, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}
	return c.JSON(snapshot)
}

// Listen starts the server and blocks until it stops or errors.
func (s *Server) Listen(addr string) error {
	s.log.Info("diagnostics endpoint listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
