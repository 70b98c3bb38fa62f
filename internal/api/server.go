// Package api exposes the resolution cascade and the service health over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/resolver"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrMsgNotLocated is the only failure reason reported for an address.
const ErrMsgNotLocated = "address could not be located"

// Resolver is the part of the resolution cascade used by the handlers.
type Resolver interface {
	Resolve(ctx context.Context, addr models.PostalAddress) models.Resolution
	ResolveRoute(ctx context.Context, origin, destination models.PostalAddress) resolver.Route
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	log            *slog.Logger
	resolver       Resolver
	db             Pinger
	gatherer       prometheus.Gatherer
	resolveTimeout time.Duration
}

// LocationResponse is the body returned for a located address.
type LocationResponse struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Strategy  models.Strategy `json:"strategy"`
	Attempts  int             `json:"attempts"`
}

// RouteRequest is the body of a route resolution request.
type RouteRequest struct {
	Origin      models.PostalAddress `json:"origin"`
	Destination models.PostalAddress `json:"destination"`
}

// RouteResponse carries both route ends. A leg that could not be located is null
// and its reason is listed in Errors under the leg name.
type RouteResponse struct {
	Origin      *LocationResponse `json:"origin"`
	Destination *LocationResponse `json:"destination"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// NewServer creates the HTTP handlers. resolveTimeout bounds a single request; zero disables it.
func NewServer(
	log *slog.Logger,
	resolver Resolver,
	db Pinger,
	gatherer prometheus.Gatherer,
	resolveTimeout time.Duration,
) *Server {
	return &Server{
		log:            log,
		resolver:       resolver,
		db:             db,
		gatherer:       gatherer,
		resolveTimeout: resolveTimeout,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.POST("/geocode", s.geocode)
	v1.POST("/route", s.route)

	return router
}

// geocode resolves a single postal address.
func (s *Server) geocode(ctx *gin.Context) {
	var addr models.PostalAddress
	if err := ctx.ShouldBindJSON(&addr); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if addr.IsEmpty() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "address is empty"})
		return
	}

	reqCtx, cancel := s.withTimeout(ctx.Request.Context())
	defer cancel()

	res := s.resolver.Resolve(reqCtx, addr)
	if !res.Found {
		ctx.JSON(http.StatusNotFound, gin.H{"error": ErrMsgNotLocated})
		return
	}

	ctx.JSON(http.StatusOK, toLocation(res))
}

// route resolves the origin and destination of a shipment concurrently.
func (s *Server) route(ctx *gin.Context) {
	var req RouteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.Origin.IsEmpty() && req.Destination.IsEmpty() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination are empty"})
		return
	}

	reqCtx, cancel := s.withTimeout(ctx.Request.Context())
	defer cancel()

	route := s.resolver.ResolveRoute(reqCtx, req.Origin, req.Destination)

	resp := RouteResponse{}
	if route.Origin.Found {
		resp.Origin = toLocation(route.Origin)
	} else {
		resp.addError(models.LegOrigin)
	}
	if route.Destination.Found {
		resp.Destination = toLocation(route.Destination)
	} else {
		resp.addError(models.LegDestination)
	}

	ctx.JSON(http.StatusOK, resp)
}

func (s *Server) healthz(ctx *gin.Context) {
	s.log.DebugContext(ctx, "Performing health checks...")
	status, body := http.StatusOK, "OK"
	if err := s.db.Ping(ctx.Request.Context()); err != nil {
		s.log.ErrorContext(ctx, "Health check failed", "error", err)
		status, body = http.StatusServiceUnavailable, "DB ping failed"
	}

	ctx.String(status, body)
	s.log.DebugContext(ctx, "Health checks completed", "status", status)
}

// requestLogger logs every request with its status and latency.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		s.log.InfoContext(ctx, "HTTP request",
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"status", ctx.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.resolveTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.resolveTimeout)
}

func (r *RouteResponse) addError(leg models.Leg) {
	if r.Errors == nil {
		r.Errors = make(map[string]string, 2)
	}
	r.Errors[string(leg)] = ErrMsgNotLocated
}

func toLocation(res models.Resolution) *LocationResponse {
	return &LocationResponse{
		Latitude:  res.Coordinates.Latitude,
		Longitude: res.Coordinates.Longitude,
		Strategy:  res.Strategy,
		Attempts:  res.Attempts,
	}
}
