// Package api serves the read-only cafe endpoints over the current catalog
// snapshot, plus the sync and reload triggers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cafesync/internal/catalog"
	"cafesync/internal/model"
	"cafesync/internal/observability"
	"cafesync/internal/reconcile"
)

const (
	defaultLimit   = 100
	minQueryLength = 3
	maxResults     = 50
)

// Syncer runs the cafes reconciliation over a record set.
type Syncer interface {
	Sync(ctx context.Context, records []model.RawCafe) (reconcile.Report, error)
}

// SearchCache is optional; nil disables caching of /search.
type SearchCache interface {
	Get(ctx context.Context, generation int64, q string) ([]byte, bool)
	Set(ctx context.Context, generation int64, q string, body []byte) error
}

type Server struct {
	Catalog *catalog.Holder
	Syncer  Syncer
	Cache   SearchCache
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), countRequests)

	r.GET("/", s.root)
	r.GET("/cafes", s.listCafes)
	r.GET("/cafes/:region", s.listRegion)
	r.GET("/search", s.search)
	r.GET("/stats", s.stats)
	r.POST("/sync", s.sync)
	r.POST("/reload", s.reload)
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	return r
}

func countRequests(c *gin.Context) {
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	observability.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
}

func (s *Server) root(c *gin.Context) {
	snap := s.Catalog.Current()
	c.JSON(http.StatusOK, gin.H{
		"message":     "Welcome to Yogyakarta Cafe API",
		"total_cafes": snap.Len(),
		"regions":     snap.RegionKeys(),
		"endpoints":   []string{"/cafes", "/cafes/{region}", "/search?q={query}", "/stats"},
	})
}

func (s *Server) listCafes(c *gin.Context) {
	skip, limit, ok := paging(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Catalog.Current().All(skip, limit))
}

func (s *Server) listRegion(c *gin.Context) {
	skip, limit, ok := paging(c)
	if !ok {
		return
	}

	records, err := s.Catalog.Current().Region(c.Param("region"), skip, limit)
	var unknown *catalog.UnknownRegionError
	if errors.As(err, &unknown) {
		c.JSON(http.StatusNotFound, gin.H{"detail": unknown.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) search(c *gin.Context) {
	q := c.Query("q")
	if len([]rune(strings.TrimSpace(q))) < minQueryLength {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail": fmt.Sprintf("query parameter q must have at least %d characters", minQueryLength),
		})
		return
	}

	snap := s.Catalog.Current()
	gen := snap.LoadedAt().UnixNano()
	if s.Cache != nil {
		if body, ok := s.Cache.Get(c.Request.Context(), gen, q); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			return
		}
	}

	body, err := json.Marshal(snap.Search(q, maxResults))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if s.Cache != nil {
		if err := s.Cache.Set(c.Request.Context(), gen, q, body); err != nil {
			log.Printf("[API] Erro ao gravar cache de busca: %v", err)
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (s *Server) stats(c *gin.Context) {
	out := gin.H{}
	total := 0
	for _, rc := range s.Catalog.Current().Counts() {
		out[rc.Key] = rc.Count
		total += rc.Count
	}
	out["total"] = total
	c.JSON(http.StatusOK, out)
}

func (s *Server) sync(c *gin.Context) {
	if s.Syncer == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Store not configured"})
		return
	}

	rep, err := s.Syncer.Sync(c.Request.Context(), s.Catalog.Current().Cafes())
	if err != nil {
		log.Printf("[API] Erro no sync: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("Sync failed: %v", err)})
		return
	}

	message := "No new cafes to sync."
	if rep.Inserted > 0 {
		message = fmt.Sprintf("Successfully inserted %d new cafes.", rep.Inserted)
	}
	if rep.Updated > 0 {
		message += fmt.Sprintf(" Updated %d existing cafes.", rep.Updated)
	}
	if rep.Errors > 0 {
		message += fmt.Sprintf(" %d failed.", rep.Errors)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      message,
		"total_synced": rep.Synced(),
	})
}

func (s *Server) reload(c *gin.Context) {
	snap, err := s.Catalog.Reload()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_cafes": snap.Len(), "regions": snap.RegionKeys()})
}

// paging reads skip and limit, answering 422 itself when either is not a
// number.
func paging(c *gin.Context) (skip, limit int, ok bool) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "skip must be an integer"})
		return 0, 0, false
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "limit must be an integer"})
		return 0, 0, false
	}
	return skip, limit, true
}
