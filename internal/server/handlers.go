package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"social-dashboard-backend/internal/charts"
	"social-dashboard-backend/internal/chat"
	"social-dashboard-backend/internal/engagement"
	"social-dashboard-backend/internal/store"
)

// respondError sends an error body and stops the handler chain.
func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// filterFor returns the ?type= override when present, else the active filter.
func filterFor(c *gin.Context, snap engagement.Snapshot) engagement.Filter {
	if v, ok := c.GetQuery("type"); ok {
		return engagement.ParseFilter(v)
	}
	return snap.Filter
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "social-dashboard",
	})
}

// uploadDataset replaces the current dataset with an uploaded CSV, sent
// either as multipart field "file" or as the raw request body.
func (s *Server) uploadDataset(c *gin.Context) {
	var (
		body   io.Reader
		source = "upload"
	)

	// The multipart envelope gets a little room on top of the file itself.
	limit := s.upload
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		limit += 64 << 10
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				respondError(c, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			respondError(c, http.StatusBadRequest, "missing file field")
			return
		}
		if fh.Size > s.upload {
			respondError(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		defer f.Close()
		body = f
		source = fh.Filename
	} else {
		body = c.Request.Body
		if name := c.Query("filename"); name != "" {
			source = name
		}
	}

	ds, err := engagement.Ingest(body)
	if err != nil {
		if isTooLarge(err) {
			respondError(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.install(c.Request.Context(), source, ds); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Dataset %q loaded: %d posts, %d columns", source, ds.Len(), len(ds.Columns))
	c.JSON(http.StatusCreated, datasetInfo(s.board.Snapshot()))
}

// mockDataset replaces the current dataset with generated posts.
func (s *Server) mockDataset(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "200"))
	if err != nil || count < 0 || count > 100000 {
		respondError(c, http.StatusBadRequest, "invalid count")
		return
	}
	seed := uint64(s.now().UnixNano())
	if raw := c.Query("seed"); raw != "" {
		seed, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid seed")
			return
		}
	}

	if _, err := s.install(c.Request.Context(), "mock", engagement.GenerateMock(count, seed)); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusCreated, datasetInfo(s.board.Snapshot()))
}

// currentDataset describes the dataset on the board.
func (s *Server) currentDataset(c *gin.Context) {
	c.JSON(http.StatusOK, datasetInfo(s.board.Snapshot()))
}

// getCategories lists post types of the current dataset.
func (s *Server) getCategories(c *gin.Context) {
	c.JSON(http.StatusOK, engagement.Categories(s.board.Snapshot().Dataset))
}

func (s *Server) getFilter(c *gin.Context) {
	c.JSON(http.StatusOK, FilterRequest{Type: string(s.board.Snapshot().Filter)})
}

// setFilter replaces the active filter. Unknown types are accepted and
// simply select nothing.
func (s *Server) setFilter(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	f := engagement.ParseFilter(req.Type)
	s.board.SetFilter(f)
	c.JSON(http.StatusOK, FilterRequest{Type: string(f)})
}

// getDashboard returns every derived view, with optional Redis caching
func (s *Server) getDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	snap := s.board.Snapshot()
	f := filterFor(c, snap)
	key := store.DashboardKey(snap.Version, f)

	// Try to get from cache
	var dashboard engagement.Dashboard
	if s.cache.GetJSON(ctx, key, &dashboard) {
		c.JSON(http.StatusOK, dashboard)
		return
	}

	dashboard = engagement.BuildDashboard(snap.Dataset, f)
	s.cache.SetJSON(ctx, key, dashboard)

	c.JSON(http.StatusOK, dashboard)
}

func (s *Server) getBreakdown(c *gin.Context) {
	snap := s.board.Snapshot()
	c.JSON(http.StatusOK, engagement.CategoryBreakdown(snap.Dataset, filterFor(c, snap)))
}

func (s *Server) getTotals(c *gin.Context) {
	snap := s.board.Snapshot()
	c.JSON(http.StatusOK, engagement.ComputeTotals(snap.Dataset, filterFor(c, snap)))
}

func (s *Server) getPercentages(c *gin.Context) {
	snap := s.board.Snapshot()
	known := engagement.Categories(snap.Dataset)
	c.JSON(http.StatusOK, engagement.Percentages(snap.Dataset, filterFor(c, snap), known))
}

func (s *Server) getTimeSeries(c *gin.Context) {
	snap := s.board.Snapshot()
	c.JSON(http.StatusOK, engagement.TimeSeries(snap.Dataset, filterFor(c, snap)))
}

// exportCSV streams the current dataset as a CSV download.
func (s *Server) exportCSV(c *gin.Context) {
	ds := s.board.Snapshot().Dataset

	var buf bytes.Buffer
	if err := engagement.Export(&buf, ds); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+engagement.ExportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func chartSize(c *gin.Context) charts.Size {
	size := charts.DefaultSize
	if w, err := strconv.Atoi(c.Query("width")); err == nil && w >= 200 && w <= 2000 {
		size.Width = w
	}
	if h, err := strconv.Atoi(c.Query("height")); err == nil && h >= 150 && h <= 2000 {
		size.Height = h
	}
	return size
}

func (s *Server) renderChart(c *gin.Context, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		if errors.Is(err, charts.ErrNotEnoughData) {
			respondError(c, http.StatusUnprocessableEntity, "not enough data to draw this chart")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) postTypeChart(c *gin.Context) {
	snap := s.board.Snapshot()
	breakdown := engagement.CategoryBreakdown(snap.Dataset, filterFor(c, snap))
	size := chartSize(c)
	s.renderChart(c, func(w io.Writer) error {
		return charts.PostTypePie(w, breakdown, size)
	})
}

func (s *Server) engagementChart(c *gin.Context) {
	snap := s.board.Snapshot()
	series := engagement.TimeSeries(snap.Dataset, filterFor(c, snap))
	size := chartSize(c)
	s.renderChart(c, func(w io.Writer) error {
		return charts.EngagementLine(w, series, size)
	})
}

// proxyChat forwards one message to the flow and returns its reply. Any
// failure is reported with the same generic message.
func (s *Server) proxyChat(c *gin.Context) {
	if s.sender == nil {
		respondError(c, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var req ProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.InputValue) == "" {
		respondError(c, http.StatusBadRequest, "input_value is required")
		return
	}

	reply, err := s.sender.Send(c.Request.Context(), req.InputValue)
	if err != nil {
		log.Printf("chat proxy failed: %v", err)
		respondError(c, http.StatusBadGateway, chat.FailureText)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": reply})
}

func (s *Server) chatState(c *gin.Context) {
	if s.conv == nil {
		respondError(c, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	c.JSON(http.StatusOK, s.conv.State())
}

func (s *Server) openChat(c *gin.Context) {
	if s.conv == nil {
		respondError(c, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	c.JSON(http.StatusOK, s.conv.Open())
}

// sendChat adds a message to the assistant conversation. The flow call is
// detached from the request so a client hanging up does not cancel it.
func (s *Server) sendChat(c *gin.Context) {
	if s.conv == nil {
		respondError(c, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	_, err := s.conv.Send(ctx, req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, chat.ErrBusy):
		respondError(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, s.conv.State())
		return
	}

	c.JSON(http.StatusOK, s.conv.State())
}
