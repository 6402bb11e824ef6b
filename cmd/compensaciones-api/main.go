package main

import (
	"log"
	"net/http"

	"compensaciones-losa/internal/api"
	"compensaciones-losa/internal/config"
	"compensaciones-losa/internal/store"
)

// @title Compensaciones Losa API
// @version 1.0
// @description Trip compensation runs: CSV upload, tiered reimbursement and styled exports
// @BasePath /api/v1
func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := store.InitDB(cfg.DBPath); err != nil {
		log.Fatalf("❌ Failed to init database: %v", err)
	}

	handler := api.NewRouter(cfg)

	log.Printf("🚀 Server started on http://localhost%s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, handler))
}
