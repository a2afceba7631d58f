package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"bidlevel/db"
	"bidlevel/db/migrations"
	"bidlevel/internal/config"
	"bidlevel/internal/engine"
	"bidlevel/internal/handlers"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}
	if cfg.PostgresConn == "" {
		log.Fatal("POSTGRES_CONN is not set")
	}

	dbConn, err := sqlx.Connect("postgres", cfg.PostgresConn)
	if err != nil {
		log.Fatalf("Cannot connect to DB: %v", err)
	}
	defer dbConn.Close()

	migrations.Run(cfg.PostgresConn, cfg.MigrationsDir)

	store := db.NewStorage(dbConn)
	ledger := engine.NewLedger(cfg.Engine(), store, func(msg string) {
		log.Printf("leveling: %s", msg)
	})

	items, vendors, err := store.LoadSnapshot(context.Background())
	if err != nil {
		log.Fatalf("Cannot load leveling snapshot: %v", err)
	}
	ledger.Seed(items, vendors)

	h := handlers.NewHandler(ledger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		// line items and bid cells
		r.Get("/lineitems", h.GetLineItemsHandler)
		r.Post("/lineitems/new", h.CreateLineItemHandler)
		r.Post("/lineitems/{lineItemId}/duplicate", h.DuplicateLineItemHandler)
		r.Delete("/lineitems/{lineItemId}", h.RemoveLineItemHandler)
		r.Put("/lineitems/{lineItemId}/lock", h.ToggleLockHandler)
		r.Patch("/lineitems/{lineItemId}/bids/{vendorId}", h.EditBidCellHandler)
		// vendors
		r.Get("/vendors", h.GetVendorsHandler)
		r.Post("/vendors/new", h.CreateVendorHandler)
		r.Delete("/vendors/{vendorId}", h.RemoveVendorHandler)
		// leveling operations
		r.Post("/bids/bulk", h.BulkEditHandler)
		r.Post("/leveling/save", h.SaveHandler)
		r.Post("/leveling/undo", h.UndoHandler)
		r.Post("/leveling/reset", h.ResetHandler)
		r.Get("/leveling/history", h.HistoryHandler)
		r.Put("/leveling/autocalc", h.AutoCalculateHandler)
		r.Get("/leveling/export", h.ExportHandler)
		r.Post("/leveling/import", h.ImportHandler)
	})

	log.Printf("Starting server on %s", cfg.ServerAddress)
	log.Fatal(http.ListenAndServe(cfg.ServerAddress, r))
}
