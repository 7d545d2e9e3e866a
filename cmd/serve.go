package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/finance/server"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard API over HTTP" }
func (*serveCmd) Usage() string {
	return `fdash serve [-addr <host:port>]

  Serves the state over HTTP until interrupted. Commands posted to
  /api/commands are applied one at a time, saved and journaled. Rendered
  dashboards are cached in Redis when redis.url is configured, in memory
  otherwise.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Address to listen on. Defaults to the configured server address and port.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cache server.Cache = server.NewMemoryCache()
	if cfg.Redis.URL != "" {
		log.SetOutput(os.Stderr)
		redis, err := server.NewRedisCache(ctx, cfg.Redis.URL)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
			log.Println("Continuing with an in-memory cache...")
		} else {
			defer redis.Close()
			cache = redis
		}
	}

	b, err := openBook(ctx, server.Invalidate(cache))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer b.Close()
	// the server logs even when not verbose.
	log.SetOutput(os.Stderr)

	srv := server.New(b.engine, b.dispatcher, b.store, cache, server.Options{
		Currency:    cfg.Currency,
		CORSOrigins: cfg.Server.CORSOrigins,
		CacheTTL:    time.Duration(cfg.Redis.TTLSeconds) * time.Second,
	})
	addr := c.addr
	if addr == "" {
		addr = cfg.Addr()
	}
	httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(os.Stderr, "Failed to start server:", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdown); err != nil {
			fmt.Fprintln(os.Stderr, "Error during shutdown:", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
