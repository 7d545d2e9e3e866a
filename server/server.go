// Package server exposes a finance state over HTTP.
package server

import (
	"context"
	"time"

	"github.com/etnz/finance"
	"github.com/etnz/finance/renderer"
	"github.com/etnz/finance/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures a Server.
type Options struct {
	Currency    string
	CORSOrigins []string
	CacheTTL    time.Duration
}

// Server serves the state owned by a dispatcher.
//
// Commands posted to the API go through the dispatcher, the store receives
// imports and the cache holds rendered dashboards until the next commit.
type Server struct {
	engine     *finance.Engine
	dispatcher *finance.Dispatcher
	store      store.Store
	cache      Cache
	opts       Options
	now        func() time.Time
}

// New returns a server. The dispatcher must have been created with the
// server's Invalidate hook for cached views to be refreshed.
func New(engine *finance.Engine, d *finance.Dispatcher, st store.Store, cache Cache, opts Options) *Server {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 60 * time.Second
	}
	return &Server{
		engine:     engine,
		dispatcher: d,
		store:      st,
		cache:      cache,
		opts:       opts,
		now:        time.Now,
	}
}

// Invalidate returns a dispatcher hook dropping the cached views.
func Invalidate(cache Cache) finance.CommitFunc {
	return func(ctx context.Context, s *finance.State, cmd finance.Command) error {
		cache.Flush(ctx)
		return nil
	}
}

func (s *Server) render() renderer.Options { return renderer.Options{Currency: s.opts.Currency} }

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/health", s.health)
	api := r.Group("/api")
	api.GET("/state", s.getState)
	api.POST("/commands", s.postCommand)
	api.GET("/cycles", s.getCycles)
	api.GET("/transactions", s.getTransactions)
	api.GET("/accounts", s.getAccounts)
	api.GET("/budget", s.getBudget)
	api.GET("/dashboard", s.getDashboard)
	api.GET("/export", s.getExport)
	api.POST("/import", s.postImport)
	return r
}
