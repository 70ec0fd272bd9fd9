// Command server runs the HTTP API: webhook ingest, retrieval ask/index
// endpoints, and the outer-shell CRUD surface, plus the background job
// worker that drains the large-transcript indexing queue.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/dig"

	"github.com/dkoraitest/consultant-copilot/internal/config"
	"github.com/dkoraitest/consultant-copilot/internal/container"
	"github.com/dkoraitest/consultant-copilot/internal/jobs"
	"github.com/dkoraitest/consultant-copilot/internal/tracing"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.SetOutput(os.Stdout)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	tp, tpErr := tracing.InitTracer()
	if tpErr != nil {
		log.Fatalf("failed to initialize tracer: %v", tpErr)
	}
	defer tp.Cleanup(context.Background())

	c := container.Build(dig.New())

	err := c.Invoke(func(cfg *config.Config, router *gin.Engine, worker *jobs.Server) error {
		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 30 * time.Second
		}

		workerErrs := make(chan error, 1)
		go func() {
			log.Println("job worker starting")
			workerErrs <- worker.Run()
		}()

		httpServer := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		}

		ctx, done := context.WithCancel(context.Background())
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		go func() {
			select {
			case sig := <-signals:
				log.Printf("received signal: %v, starting shutdown...", sig)
			case err := <-workerErrs:
				log.Printf("job worker exited: %v, starting shutdown...", err)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Fatalf("server forced to shutdown: %v", err)
			}
			worker.Shutdown()

			log.Println("server has exited")
			done()
		}()

		log.Printf("server is running at %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start server: %w", err)
		}

		<-ctx.Done()
		return nil
	})
	if err != nil {
		log.Fatalf("failed to run application: %v", err)
	}
}
