package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/nft-ticketing-go/config"
	"github.com/phillip/nft-ticketing-go/services"
)

// ---------------- METRICS ----------------
func OrganizerMetrics(cfg *config.Config, metrics *services.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		m, err := metrics.ForOrganizer(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"metrics": m})
	}
}

// ---------------- RECONCILE ----------------
func Reconcile(cfg *config.Config, reconciler *services.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		updated, err := reconciler.Run(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Ticket counters reconciled",
			"updated": updated,
		})
	}
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// ---------------- HEALTH ----------------
func Health(cfg *config.Config, checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		status := http.StatusOK
		results := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
