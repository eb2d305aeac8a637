package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/trainboard/othello-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type statusService interface {
	Status(ctx context.Context) (*entity.LineStatus, error)
}

// Server serves the departure board: static assets at the root, the line
// status API and a ping probe.
type Server struct {
	logger    *slog.Logger
	status    statusService
	staticDir string
}

func New(logger *slog.Logger, status statusService, staticDir string) *Server {
	return &Server{
		logger:    logger,
		status:    status,
		staticDir: staticDir,
	}
}

// Start - starts the HTTP server and blocks until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", that.pingHandler)
	mux.HandleFunc("/api/status", that.statusHandler)
	mux.Handle("/", http.FileServer(http.Dir(that.staticDir)))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down http server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
