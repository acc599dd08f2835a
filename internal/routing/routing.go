package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"userservice/pkg/handlers"
	"userservice/pkg/middleware"
	"userservice/pkg/user"
)

const userIDPattern = "{" + handlers.MuxVarID + "}"

type Options struct {
	AllowedOrigins []string
}

// NewRouter wires the user routes and wraps them in the middleware chain:
// request id, access log, panic recovery, CORS.
func NewRouter(repo user.Repository, logger *slog.Logger, opts Options) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	InitRoutes(r, handlers.NewUserHandler(repo, logger))

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})

	var h http.Handler = r
	h = corsHandler(h)
	h = middleware.Panic(logger)(h)
	h = middleware.AccessLog(logger)(h)
	h = middleware.RequestID(h)
	return h
}

func InitRoutes(r *mux.Router, userHandler *handlers.UserHandler) {
	r.HandleFunc("/health", userHandler.HealthCheck).Methods(http.MethodGet).Name("health")

	usersRouter := r.PathPrefix("/users").Subrouter()

	usersRouter.HandleFunc("", userHandler.Create).Methods(http.MethodPost).Name("createUser")
	usersRouter.HandleFunc("", userHandler.FindAll).Methods(http.MethodGet).Name("listUsers")
	usersRouter.HandleFunc("/"+userIDPattern, userHandler.FindByID).Methods(http.MethodGet).Name("getUser")
	usersRouter.HandleFunc("/"+userIDPattern, userHandler.Update).Methods(http.MethodPatch, http.MethodPut).Name("updateUser")
	usersRouter.HandleFunc("/"+userIDPattern, userHandler.Delete).Methods(http.MethodDelete).Name("deleteUser")
}

// StartServer serves h on addr until ctx is cancelled, then drains
// in-flight requests for at most shutdownTimeout.
func StartServer(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
