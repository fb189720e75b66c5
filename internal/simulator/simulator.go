package simulator

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sentinelops/sentinel/internal/logger"
)

// Simulator serves a fake Prometheus query API plus actuator endpoints, so
// the full control loop can run without real infrastructure. A restart
// actuation clears active spikes for the service, closing the loop.
type Simulator struct {
	cfg        Config
	world      *world
	httpServer *http.Server
}

type Config struct {
	Port int
	Seed int64
}

func New(cfg Config) *Simulator {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
	return &Simulator{
		cfg:   cfg,
		world: newWorld(cfg.Seed),
	}
}

func (s *Simulator) Start() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/api/v1/query", s.handleQuery)
	router.GET("/-/healthy", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	router.POST("/restart", s.handleRestart)
	router.POST("/scale", s.handleScale)
	router.POST("/alert", s.handleAlert)

	router.POST("/spike", s.handleSpike)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Simulator listening on port %d", s.cfg.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Simulator server error: %v", err)
		}
	}()

	return nil
}

func (s *Simulator) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// handleQuery answers in the Prometheus instant-query format so the real
// querier needs no special casing against the simulator.
func (s *Simulator) handleQuery(c *gin.Context) {
	query := c.Query("query")

	key, ok := s.world.resolve(query)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data": gin.H{
				"resultType": "vector",
				"result":     []interface{}{},
			},
		})
		return
	}

	value, _ := s.world.value(key)
	now := float64(time.Now().UnixNano()) / 1e9

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"resultType": "vector",
			"result": []gin.H{
				{
					"metric": gin.H{"key": key},
					"value":  []interface{}{now, strconv.FormatFloat(value, 'f', -1, 64)},
				},
			},
		},
	})
}

type actionRequest struct {
	Service  string `json:"service" binding:"required"`
	Replicas int    `json:"replicas"`
	Message  string `json:"message"`
}

func (s *Simulator) handleRestart(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "service is required"})
		return
	}

	cleared := s.world.clearSpikes(req.Service)
	logger.Infof("Simulated restart of %s (cleared %d spikes)", req.Service, cleared)

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": fmt.Sprintf("Container %s restarted", req.Service),
	})
}

func (s *Simulator) handleScale(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "service is required"})
		return
	}

	logger.Infof("Simulated scale of %s to %d replicas", req.Service, req.Replicas)

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": fmt.Sprintf("Service %s scaled to %d replicas", req.Service, req.Replicas),
	})
}

func (s *Simulator) handleAlert(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "service is required"})
		return
	}

	logger.Warnf("Simulated alert for %s: %s", req.Service, req.Message)

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": fmt.Sprintf("Alert sent for %s", req.Service),
	})
}

type spikeRequest struct {
	Service   string  `json:"service" binding:"required"`
	Metric    string  `json:"metric" binding:"required"`
	Magnitude float64 `json:"magnitude"`
	Duration  string  `json:"duration"`
}

// handleSpike injects an anomaly into a service metric, for demos and
// end-to-end testing of the detection loop.
func (s *Simulator) handleSpike(c *gin.Context) {
	var req spikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service and metric are required"})
		return
	}

	magnitude := req.Magnitude
	if magnitude <= 0 {
		magnitude = 4.0
	}

	duration := 2 * time.Minute
	if req.Duration != "" {
		parsed, err := time.ParseDuration(req.Duration)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
			return
		}
		duration = parsed
	}

	if !s.world.injectSpike(req.Service, req.Metric, magnitude, duration) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown service or metric"})
		return
	}

	logger.Infof("Injected spike: %s/%s x%.1f for %s", req.Service, req.Metric, magnitude, duration)

	c.JSON(http.StatusOK, gin.H{
		"service":   req.Service,
		"metric":    req.Metric,
		"magnitude": magnitude,
		"duration":  duration.String(),
	})
}
