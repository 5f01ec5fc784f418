package main

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/itish2003/supportbot/controller"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if serveWatch {
			go func() {
				if err := a.indexer().WatchDirectory(ctx, cfg.KnowledgeDir); err != nil {
					logger.Errorw("WATCHER: stopped", "error", err.Error())
				}
			}()
		}

		ragController := controller.NewRAGController(a.ragService())
		router := newRouter(ragController, a.registry, cfg.StaticDir)
		return runServer(ctx, cfg.HTTPAddr, router)
	},
}

func init() {
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Re-index the knowledge folder as files change")
}

// newRouter wires the HTTP surface.
func newRouter(ragController *controller.RAGController, registry *prometheus.Registry, staticDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), cors())

	router.StaticFile("/", filepath.Join(staticDir, "index.html"))
	router.Static("/static", staticDir)

	router.POST("/ask", ragController.Ask)
	router.GET("/health", ragController.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/ask", ragController.Ask)
		apiV1.GET("/chunks", ragController.GetAllChunks)
	}
	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugw("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func runServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Support bot listening on %s", addr)
		logger.Infof("  POST %s/ask", addr)
		logger.Infof("  GET  %s/health", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Infof("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

