// Package server exposes the engagement dashboard and the assistant chat
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-dashboard-backend/internal/chat"
	"social-dashboard-backend/internal/engagement"
	"social-dashboard-backend/internal/store"
)

const maxUploadBytes = 10 << 20

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 10 * time.Second

// Options wires a Server's collaborators. Cache and Sender may be nil.
// With no TrustedProxies, forwarding headers are ignored and the client IP is
// the connection's remote address.
type Options struct {
	Store          store.DatasetStore
	Cache          *store.Cache
	Sender         chat.Sender
	CORSOrigins    []string
	TrustedProxies []string
	ChatLimit      int
	ChatWindow     time.Duration
	MaxUploadBytes int64
}

// Server owns the dashboard board and the assistant conversation.
type Server struct {
	store   store.DatasetStore
	cache   *store.Cache
	board   *engagement.Board
	sender  chat.Sender
	conv    *chat.Conversation
	limiter *IPRateLimiter
	origins []string
	proxies []string
	upload  int64
	now     func() time.Time
}

// New creates a Server. The board starts empty until Restore or an upload.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.ChatLimit <= 0 {
		opts.ChatLimit = 30
	}
	if opts.ChatWindow <= 0 {
		opts.ChatWindow = time.Minute
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = maxUploadBytes
	}

	s := &Server{
		store:   opts.Store,
		cache:   opts.Cache,
		board:   engagement.NewBoard(),
		sender:  opts.Sender,
		limiter: NewIPRateLimiter(opts.ChatLimit, opts.ChatWindow),
		origins: opts.CORSOrigins,
		proxies: opts.TrustedProxies,
		upload:  opts.MaxUploadBytes,
		now:     time.Now,
	}
	if s.sender != nil {
		s.conv = chat.NewConversation(s.sender)
	}
	return s
}

// Restore loads the stored dataset onto the board. With nothing stored, the
// fallback dataset is installed and persisted instead.
func (s *Server) Restore(ctx context.Context, fallback engagement.Dataset) error {
	rec, err := s.store.Current(ctx)
	if errors.Is(err, store.ErrNoDataset) {
		log.Printf("No stored dataset, starting with %d mock posts", fallback.Len())
		_, err := s.install(ctx, "mock", fallback)
		return err
	}
	if err != nil {
		return fmt.Errorf("restoring dataset: %w", err)
	}
	s.board.Load(rec.ID, rec.Source, rec.Dataset, rec.CreatedAt)
	log.Printf("Restored dataset %s (%d posts from %s)", rec.ID, rec.Dataset.Len(), rec.Source)
	return nil
}

// install persists ds under a fresh version and puts it on the board.
func (s *Server) install(ctx context.Context, source string, ds engagement.Dataset) (store.Record, error) {
	rec := store.Record{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: s.now().UTC(),
		Dataset:   ds,
	}
	if err := s.store.Replace(ctx, rec); err != nil {
		return store.Record{}, fmt.Errorf("storing dataset: %w", err)
	}
	s.board.Load(rec.ID, rec.Source, rec.Dataset, rec.CreatedAt)
	return rec, nil
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	if err := r.SetTrustedProxies(s.proxies); err != nil {
		log.Printf("Warning: invalid trusted proxies %v, trusting none: %v", s.proxies, err)
		_ = r.SetTrustedProxies(nil)
	}

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthCheck)

	api := r.Group("/api")
	api.POST("/datasets", s.uploadDataset)
	api.POST("/datasets/mock", s.mockDataset)
	api.GET("/datasets/current", s.currentDataset)
	api.GET("/categories", s.getCategories)
	api.GET("/filter", s.getFilter)
	api.PUT("/filter", s.setFilter)
	api.GET("/dashboard", s.getDashboard)
	api.GET("/analytics/breakdown", s.getBreakdown)
	api.GET("/analytics/totals", s.getTotals)
	api.GET("/analytics/percentages", s.getPercentages)
	api.GET("/analytics/timeseries", s.getTimeSeries)
	api.GET("/export", s.exportCSV)
	api.GET("/charts/post-types.png", s.postTypeChart)
	api.GET("/charts/engagement.png", s.engagementChart)

	limited := s.limiter.Middleware()
	r.POST("/chat", limited, s.proxyChat)
	api.GET("/chat", s.chatState)
	api.POST("/chat/open", s.openChat)
	api.POST("/chat/messages", limited, s.sendChat)

	return r
}
