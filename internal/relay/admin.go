package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/danmuck/rcxctl/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var ErrAdminBind = errors.New("relay: admin bind failed")

const adminShutdownTimeout = 2 * time.Second

// AdminRouter builds the read-only admin surface. It never touches the relay
// path beyond mutex-guarded status reads.
func (s *Service) AdminRouter() *gin.Engine {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger, "/health", "/metrics"))
	r.Use(observability.RequestMetricsMiddleware("rcxctl"))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": "rcxctl",
			"version": "0.0.1",
		})
	})

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Status())
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// AdminAddr returns the bound admin address, or "" when disabled.
func (s *Service) AdminAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminAddr
}

// startAdmin binds addr synchronously so a bad address fails startup, then
// serves in the background. The returned func shuts the server down.
func (s *Service) startAdmin(addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAdminBind, addr, err)
	}
	s.mu.Lock()
	s.adminAddr = ln.Addr().String()
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.AdminRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("relay.Service.startAdmin serve failed")
		}
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("relay.Service.startAdmin listening")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), adminShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("relay.Service.startAdmin shutdown failed")
		}
	}, nil
}
