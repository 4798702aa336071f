package handler

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/interfaces/http/dto"
	"github.com/freightdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultHealthTimeout bounds each health check.
const DefaultHealthTimeout = 3 * time.Second

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	timeout   time.Duration
	checks    map[string]HealthCheck
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		timeout:   DefaultHealthTimeout,
		checks:    make(map[string]HealthCheck),
	}
}

// AddCheck registers a named health check. Registering a name twice
// replaces the earlier check.
func (h *SystemHandler) AddCheck(name string, check HealthCheck) {
	if check == nil {
		return
	}
	h.checks[name] = check
}

// Routes returns the system routes, mounted under /system. The health
// endpoint is served outside the versioned API.
func (h *SystemHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping)
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"freightdesk"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// ComponentHealth is the outcome of one health check.
type ComponentHealth struct {
	Status string `json:"status" example:"healthy"`
	Error  string `json:"error,omitempty"`
	// Latency is how long the check took, in milliseconds.
	Latency int64 `json:"latency_ms"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string                     `json:"status" example:"healthy"`
	Timestamp  string                     `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Runs every registered dependency check. Responds 503 when any check fails.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		components = make(map[string]ComponentHealth, len(h.checks))
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := check(ctx)
			result := ComponentHealth{Status: StatusHealthy, Latency: time.Since(start).Milliseconds()}
			if err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()
			}
			mu.Lock()
			components[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	resp := HealthResponse{
		Status:     StatusHealthy,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}
	for name, comp := range components {
		if comp.Status != StatusHealthy {
			resp.Status = StatusUnhealthy
			logger.GetGinLogger(c).Warn("Health check failed",
				zap.String("component", name),
				zap.String("error", comp.Error))
		}
	}

	status := http.StatusOK
	if resp.Status != StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
