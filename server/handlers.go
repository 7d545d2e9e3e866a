package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/etnz/finance"
	"github.com/etnz/finance/renderer"
	"github.com/etnz/finance/store"
	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// health handles the health check endpoint
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "finance",
		"cycle":   s.engine.CurrentCycle(),
	})
}

// cycle returns the cycle requested in the "cycle" query parameter, either
// a cycle label or a date in the cycle. It is the current cycle by default
// and "all" selects every cycle.
func (s *Server) cycle(c *gin.Context) (finance.CycleID, bool) {
	cycle, err := s.engine.SelectCycle(c.Query("cycle"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return cycle, true
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.dispatcher.State())
}

// postCommand applies a {"type": ..., "payload": ...} command.
func (s *Server) postCommand(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, finance.MaxSnapshotSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd, err := finance.DecodeCommand(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prev := s.dispatcher.State()
	next, err := s.dispatcher.Dispatch(c.Request.Context(), cmd)
	if errors.Is(err, finance.ErrDispatcherClosed) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if next == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		// the state is committed, but not persisted.
		log.Printf("command %s committed with errors: %v", cmd.What(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "changed": next != prev, "state": next})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": next != prev, "state": next})
}

func (s *Server) getCycles(c *gin.Context) {
	cycle, ok := s.cycle(c)
	if !ok {
		return
	}
	if cycle == "" {
		cycle = s.engine.CurrentCycle()
	}
	n, err := strconv.Atoi(c.DefaultQuery("n", "6"))
	if err != nil || n < 0 || n > 120 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a number between 0 and 120"})
		return
	}
	options := make([]gin.H, 0, 2*n+1)
	for _, id := range finance.CycleOptionList(cycle, n) {
		r := id.Range()
		options = append(options, gin.H{"id": id, "from": r.From, "to": r.To})
	}
	c.JSON(http.StatusOK, options)
}

func (s *Server) getTransactions(c *gin.Context) {
	cycle, ok := s.cycle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, finance.TransactionRows(s.dispatcher.State(), cycle))
}

func (s *Server) getAccounts(c *gin.Context) {
	cycle, ok := s.cycle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, finance.AccountSummaries(s.dispatcher.State(), cycle))
}

func (s *Server) getBudget(c *gin.Context) {
	cycle, ok := s.cycle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, finance.BudgetUsage(s.dispatcher.State(), cycle))
}

// getDashboard serves the dashboard of a cycle as JSON figures, markdown or
// HTML depending on the "format" query parameter. Rendered views are cached
// until the next commit.
func (s *Server) getDashboard(c *gin.Context) {
	cycle, ok := s.cycle(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "json")
	contentType := map[string]string{
		"json": "application/json; charset=utf-8",
		"md":   "text/markdown; charset=utf-8",
		"html": "text/html; charset=utf-8",
	}[format]
	if contentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown format %q", format)})
		return
	}

	ctx := c.Request.Context()
	key := fmt.Sprintf("dashboard:%s:%s", cycle, format)
	if cached, ok := s.cache.Get(ctx, key); ok {
		c.Data(http.StatusOK, contentType, []byte(cached))
		return
	}
	view, err := s.dashboard(s.dispatcher.State(), cycle, format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.cache.Set(ctx, key, string(view), s.opts.CacheTTL)
	c.Data(http.StatusOK, contentType, view)
}

func (s *Server) dashboard(st *finance.State, cycle finance.CycleID, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.Marshal(finance.ComputeKPIs(st, cycle))
	case "md":
		return []byte(renderer.DashboardMarkdown(st, cycle, s.render())), nil
	}
	var buf bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(renderer.DashboardMarkdown(st, cycle, s.render())), &buf); err != nil {
		return nil, fmt.Errorf("cannot render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Server) getExport(c *gin.Context) {
	data, err := store.Export(c.Request.Context(), s.store, s.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name := fmt.Sprintf("finance-export-%s.json", s.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// postImport replaces the state by the one of an export envelope. The
// previous state is kept as a backup in the store.
func (s *Server) postImport(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, finance.MaxSnapshotSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	// the store is written in turn with the commands, so that no commit hook
	// saves an older state over the imported one.
	next, err := s.dispatcher.ResetWith(ctx, func(ctx context.Context) (*finance.State, error) {
		raw, err := store.Import(ctx, s.store, body)
		if err != nil {
			return nil, err
		}
		return s.engine.NormalizeJSON(raw), nil
	})
	switch {
	case errors.Is(err, finance.ErrInvalidEnvelope):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, finance.ErrDispatcherClosed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.cache.Flush(ctx)
	c.JSON(http.StatusOK, gin.H{"state": next})
}
