package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"stockledger/internal/config"
	applog "stockledger/internal/log"
	"stockledger/internal/metrics"
	"stockledger/internal/report"
	"stockledger/internal/repos"
	"stockledger/internal/services"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "stockledger:", err)
		os.Exit(1)
	}
}

// run prepares the store for the presentation layer: schema, optional demo
// data, optional report and metrics.
func run(args []string) error {
	fs := pflag.NewFlagSet("stockledger", pflag.ContinueOnError)
	config.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	closer, err := applog.Setup(applog.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	defer func() { _ = closer.Close() }()
	applog.Info("config.load", map[string]any{
		"db":             cfg.DB.Path,
		"busy_timeout":   cfg.DB.BusyTimeout.String(),
		"allow_negative": cfg.Ledger.AllowNegative,
		"seed_demo":      cfg.Seed.Demo,
		"export":         cfg.Export.XLSX,
	})

	db, err := repos.OpenDB(cfg.DB.Path, repos.WithBusyTimeout(cfg.DB.BusyTimeout))
	if err != nil {
		applog.Error("store.open.fail", err, map[string]any{"path": cfg.DB.Path})
		return err
	}
	defer func() { _ = db.Close() }()

	if cfg.Seed.Demo {
		if err := repos.SeedDemo(db); err != nil {
			applog.Error("seed.demo.fail", err, nil)
			return err
		}
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	prods := repos.NewProductRepo(db)
	prods.AllowNegative = cfg.Ledger.AllowNegative
	ledger := repos.NewMovementRepo(db, m)
	ledger.AllowNegative = cfg.Ledger.AllowNegative
	stats := repos.NewStatsRepo(db, m)

	sum, err := stats.Summary()
	if err != nil {
		return err
	}
	recent, err := stats.RecentMovements(cfg.Stats.RecentLimit)
	if err != nil {
		return err
	}
	applog.Info("inventory.summary", map[string]any{
		"products": sum.ProductCount,
		"value":    sum.InventoryValue.StringFixed(2),
		"alerts":   sum.AlertCount,
		"recent":   len(recent),
	})

	low, err := prods.LowStock()
	if err != nil {
		return err
	}
	inv := services.NewInventoryService(prods)
	for _, p := range low {
		a, err := inv.CheckAvailability(p.ID)
		if err != nil {
			return err
		}
		applog.Warn("inventory.alert", nil, map[string]any{
			"product_id": p.ID, "name": p.Name, "status": a.Status, "qty": a.Qty, "minimum": a.Minimum,
		})
	}

	if cfg.Export.XLSX != "" {
		if err := report.Export(report.Source{Prods: prods, Ledger: ledger, Stats: stats}, cfg.Export.XLSX); err != nil {
			applog.Error("report.export.fail", err, map[string]any{"path": cfg.Export.XLSX})
			return err
		}
		applog.Info("report.export", map[string]any{"path": cfg.Export.XLSX})
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
			applog.Error("metrics.write.fail", err, map[string]any{"path": cfg.Metrics.Textfile})
			return err
		}
	}
	return nil
}
