package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "compensaciones-losa/docs"
	"compensaciones-losa/internal/api/handler"
	"compensaciones-losa/internal/config"
)

// NewRouter builds the HTTP handler: run endpoints, artifact downloads,
// swagger UI, request logging and CORS for the browser client.
func NewRouter(cfg *config.Config) http.Handler {
	h := handler.NewRunHandler(cfg)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/runs", h.CreateRun).Methods(http.MethodPost)
	api.HandleFunc("/runs", h.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/errors", h.GetRunErrors).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/files", h.GetRunFiles).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", h.GetRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", h.DeleteRun).Methods(http.MethodDelete)
	api.HandleFunc("/download/{runID}/{filename}", h.DownloadArtifact).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	r.Use(loggingMiddleware)

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}
