package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/basaltio/basalt/http"

	DefaultWorkerCount = 4
)

// Server accepts TCP connections and serves one request per connection.
type Server struct {
	name        string
	addr        string
	router      *Router
	workerCount int
	logger      *slog.Logger

	pool            *Pool
	tracer          trace.Tracer
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithWorkers sets how many connections are served concurrently.
func WithWorkers(count int) Option {
	return func(s *Server) {
		s.workerCount = count
	}
}

func NewServer(name string, addr string, router *Router, options ...Option) (*Server, error) {
	server := &Server{
		name:        name,
		addr:        addr,
		router:      router,
		workerCount: DefaultWorkerCount,
		logger:      slog.Default(),
		tracer:      otel.Tracer(instrumentationName),
	}
	for _, option := range options {
		option(server)
	}
	server.pool = NewPool(server.workerCount)

	meter := otel.Meter(instrumentationName)

	var err error
	server.requestCounter, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of requests served."))
	if err != nil {
		return nil, fmt.Errorf("http: create request counter: %w", err)
	}

	server.requestDuration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("Time taken to serve a request."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("http: create duration histogram: %w", err)
	}

	return server, nil
}

// Run listens on the configured address and serves until ctx is canceled,
// then waits for in-flight connections to finish.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("http: listen on %s: %w", s.addr, err)
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("server started", "name", s.name, "addr", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.pool.Close()
				s.logger.Info("server stopped", "name", s.name)
				return nil
			}
			s.logger.Error("accept connection", "error", err)
			continue
		}

		s.pool.Submit(func() {
			s.ServeConn(ctx, conn)
		})
	}
}

// ServeConn reads one request from conn, dispatches it and writes the
// response. The connection is always closed afterwards. Transport and
// protocol failures drop the connection without a response.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while serving connection", "panic", r)
		}
	}()

	start := time.Now()

	raw, err := ReadRawMessage(conn)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			logger.Debug("drop connection", "error", err)
		}
		return
	}

	req, err := NewRequest(raw)
	if err != nil {
		logger.Debug("drop malformed request", "error", err)
		return
	}

	ctx, span := s.tracer.Start(ctx, string(req.Method)+" "+req.URL)
	defer span.End()

	resp, err := s.router.Serve(req)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoRoute):
		logger.Debug("no route", "method", req.Method, "url", req.URL)
		resp = NewResponse().WithStatus(StatusNotFound)
	default:
		logger.Error("request failed", "method", req.Method, "url", req.URL, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		resp = NewResponse().WithStatus(StatusInternalServerError)
	}

	resp.WithHeader("X-Request-Id", requestID)

	payload, err := resp.Bytes()
	if err != nil {
		logger.Error("serialize response", "method", req.Method, "url", req.URL, "error", err)
		return
	}

	if _, err := conn.Write(payload); err != nil {
		logger.Debug("write response", "error", err)
		return
	}

	elapsed := time.Since(start)
	attrs := metric.WithAttributes(
		attribute.String("method", string(req.Method)),
		attribute.String("status", resp.Status),
	)
	s.requestCounter.Add(ctx, 1, attrs)
	s.requestDuration.Record(ctx, elapsed.Seconds(), attrs)

	logger.Info("request served",
		"method", req.Method,
		"url", req.URL,
		"status", resp.Status,
		"duration_ms", elapsed.Milliseconds())
}
