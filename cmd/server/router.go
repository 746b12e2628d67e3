package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dayfold/dispatch-api/internal/api"
	apiMiddleware "github.com/dayfold/dispatch-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	dispatchHandler := api.NewDispatchHandler(app.dispatchService)
	taskHandler := api.NewTaskHandler(app.taskService)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Dispatch endpoints, keyed by calendar date
			r.Route("/dispatches/{date}", func(r chi.Router) {
				r.Get("/", dispatchHandler.GetDispatch)
				r.Put("/summary", dispatchHandler.UpdateSummary)
				r.Post("/complete", dispatchHandler.CompleteDispatch)
				r.Post("/unfinalize", dispatchHandler.UnfinalizeDispatch)
				r.Get("/tasks", dispatchHandler.ListTasks)
				r.Put("/tasks/{taskID}", dispatchHandler.LinkTask)
				r.Delete("/tasks/{taskID}", dispatchHandler.UnlinkTask)
			})

			// Task endpoints
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/{taskID}", taskHandler.GetTask)
			r.Patch("/tasks/{taskID}/status", taskHandler.UpdateTaskStatus)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
