// One-shot tool: export the claims journal to a Parquet file for offline
// analysis.
//
// Usage:
//
//	go run cmd/claims-export/main.go -out exports/claims.parquet
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"spreadview/internal/config"
	"spreadview/internal/store"
	"spreadview/internal/util"
)

func main() {
	out := flag.String("out", "", "output parquet path (default <export_dir>/claims-<date>.parquet)")
	flag.Parse()

	godotenv.Load()

	cfgPath := "config/spreadview.yaml"
	if p := os.Getenv("SPREADVIEW_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	claims, err := store.NewClaimStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open claims store: %v", err)
	}
	defer claims.Close()

	records, err := claims.ListClaims(context.Background())
	if err != nil {
		log.Fatalf("failed to list claims: %v", err)
	}
	if len(records) == 0 {
		slog.Info("claims journal is empty, nothing to export")
		return
	}

	path := *out
	if path == "" {
		path = filepath.Join(cfg.Storage.ExportDir,
			"claims-"+time.Now().Format("2006-01-02")+".parquet")
	}

	if err := store.ExportClaims(path, records); err != nil {
		log.Fatalf("export failed: %v", err)
	}
	slog.Info("claims exported", "path", path, "count", len(records))
}
