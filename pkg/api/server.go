/*
bptreedb REST API

This is the REST API for bptreedb, a disk-backed B+ tree key/value store.

Version: 1.0.0
Host: localhost:8080
BasePath: /v1

swagger:meta
*/
package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ssargent/bptreedb/pkg/registry"
)

// watchDatasetsLoaded periodically pushes the registry's loaded-dataset
// count into the gauge, since nothing else observes it on a schedule.
func watchDatasetsLoaded(reg *registry.Registry, metrics *Metrics) {
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		for range ticker.C {
			metrics.SetDatasetsLoaded(reg.LoadedCount())
		}
	}()
}

// StartServer starts the HTTP server with every dataset route configured.
func StartServer(reg *registry.Registry, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(reg, metrics)
	metrics.SetDatasetsLoaded(reg.LoadedCount())
	watchDatasetsLoaded(reg, metrics)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/datasets", func(r chi.Router) {
		r.Post("/", metrics.InstrumentHandler("POST", "/v1/datasets", server.handleCreateDataset))
		r.Delete("/{name}", metrics.InstrumentHandler("DELETE", "/v1/datasets/{name}", server.handleDeleteDataset))
		r.Post("/{name}/bulk", metrics.InstrumentHandler("POST", "/v1/datasets/{name}/bulk", server.handleBulkInsert))
		r.Get("/{name}/keys/{key}", metrics.InstrumentHandler("GET", "/v1/datasets/{name}/keys/{key}", server.handleSearch))
		r.Delete("/{name}/keys/{key}", metrics.InstrumentHandler("DELETE", "/v1/datasets/{name}/keys/{key}", server.handleDeleteKey))
		r.Get("/{name}/range", metrics.InstrumentHandler("GET", "/v1/datasets/{name}/range", server.handleRange))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", config.Port)),
	))

	addr := fmt.Sprintf(":%d", config.Port)
	fmt.Printf("Starting bptreedb REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://localhost:%d/metrics\n", config.Port)
	log.Fatal(http.ListenAndServe(addr, r))

	return nil
}
