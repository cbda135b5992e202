// Command dogm runs a batch dynamic occupancy grid map filter over a
// recorded CSV sensor log and writes an occupancy report CSV, with
// optional SQLite snapshotting, PNG heatmap rendering, and an HTML run
// dashboard.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dogm-go/dogm/internal/dogm"
	"github.com/dogm-go/dogm/internal/dogmconfig"
	"github.com/dogm-go/dogm/internal/dogmreport"
	"github.com/dogm-go/dogm/internal/dogmreport/dashboard"
	"github.com/dogm-go/dogm/internal/dogmstore"
	"github.com/dogm-go/dogm/internal/dogmviz"
	"github.com/dogm-go/dogm/internal/sensorcsv"
)

var (
	inputFlag      = flag.String("input", "", "path to the input sensor CSV (required)")
	outputFlag     = flag.String("output", "", "path to the output occupancy report CSV (required)")
	configFile     = flag.String("config", dogmconfig.DefaultConfigPath, "path to JSON tuning configuration file")
	snapshotDBFlag = flag.String("snapshot-db", "", "optional path to a SQLite database for periodic grid snapshots")
	snapshotEvery  = flag.Int("snapshot-every", 50, "snapshot the grid every N frames (when -snapshot-db is set)")
	heatmapDirFlag = flag.String("heatmap-dir", "", "optional directory to write a per-frame PNG occupancy heatmap")
	dashboardFlag  = flag.String("dashboard", "", "optional path to write an HTML run dashboard")
	logDiagFlag    = flag.Bool("log-diag", false, "log per-frame diagnostic statistics to stderr")
)

func main() {
	flag.Parse()

	if *inputFlag == "" || *outputFlag == "" {
		fmt.Fprintln(os.Stderr, "dogm: -input and -output are required")
		flag.Usage()
		os.Exit(1)
	}

	if *logDiagFlag {
		dogm.SetLogWriters(os.Stderr, os.Stderr, nil)
	}

	if err := run(); err != nil {
		log.Printf("dogm: %v", err)
		os.Exit(1)
	}
}

func run() error {
	tuningCfg, err := dogmconfig.LoadTuningConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load tuning config from %s: %w", *configFile, err)
	}
	log.Printf("loaded tuning configuration from %s", *configFile)

	params := tuningCfg.ToParams()
	filter, err := dogm.New(params)
	if err != nil {
		return fmt.Errorf("construct filter: %w", err)
	}

	inputFile, err := os.Open(*inputFlag)
	if err != nil {
		return fmt.Errorf("open input %s: %w", *inputFlag, err)
	}
	defer inputFile.Close()

	frames, err := sensorcsv.NewLoader(inputFile).Load()
	if err != nil {
		return fmt.Errorf("load sensor frames: %w", err)
	}
	log.Printf("loaded %d sensor frames from %s", len(frames), *inputFlag)

	outputFile, err := os.Create(*outputFlag)
	if err != nil {
		return fmt.Errorf("create output %s: %w", *outputFlag, err)
	}
	defer outputFile.Close()
	reportWriter := dogmreport.NewWriter(outputFile)

	var store *dogmstore.Store
	var dbRun *dogmstore.Run
	if *snapshotDBFlag != "" {
		store, err = dogmstore.Open(*snapshotDBFlag)
		if err != nil {
			return fmt.Errorf("open snapshot db %s: %w", *snapshotDBFlag, err)
		}
		defer store.Close()

		var firstNanos int64
		if len(frames) > 0 {
			firstNanos = frames[0].Timestamp.UnixNano()
		}
		dbRun, err = store.StartRun(filter.GridSize(), filter.Resolution(), firstNanos)
		if err != nil {
			return fmt.Errorf("start snapshot run: %w", err)
		}
		if *snapshotEvery <= 0 {
			return fmt.Errorf("-snapshot-every must be positive, got %d", *snapshotEvery)
		}
		log.Printf("snapshotting grid to %s every %d frames, run=%s", *snapshotDBFlag, *snapshotEvery, dbRun.ID)
	}

	if *heatmapDirFlag != "" {
		if err := os.MkdirAll(*heatmapDirFlag, 0o755); err != nil {
			return fmt.Errorf("create heatmap dir %s: %w", *heatmapDirFlag, err)
		}
	}

	var dash *dashboard.Dashboard
	if *dashboardFlag != "" {
		dash = dashboard.New(*outputFlag)
	}

	var prevTimestamp float64
	for i := range frames {
		frame := &frames[i]
		timestamp := float64(frame.Timestamp.UnixNano()) / 1e9

		var dt float32
		if i == 0 {
			dt = 0
		} else {
			dt = float32(timestamp - prevTimestamp)
		}
		prevTimestamp = timestamp

		if err := filter.Update(frame, dt); err != nil {
			return fmt.Errorf("update frame %d: %w", i, err)
		}

		cells := filter.Cells()
		if err := reportWriter.WriteFrame(timestamp, cells, filter.GridSize()); err != nil {
			return fmt.Errorf("write report frame %d: %w", i, err)
		}

		if dash != nil {
			dash.Add(dashboard.Summarise(timestamp, cells))
		}

		if store != nil && i%*snapshotEvery == 0 {
			if err := store.SaveSnapshot(dbRun, timestamp, cells); err != nil {
				return fmt.Errorf("save snapshot frame %d: %w", i, err)
			}
		}

		if *heatmapDirFlag != "" {
			path := filepath.Join(*heatmapDirFlag, fmt.Sprintf("frame-%06d.png", i))
			title := fmt.Sprintf("t=%.3f", timestamp)
			if err := dogmviz.WriteHeatmap(cells, filter.GridSize(), title, path); err != nil {
				return fmt.Errorf("write heatmap frame %d: %w", i, err)
			}
		}
	}

	if dash != nil {
		dashFile, err := os.Create(*dashboardFlag)
		if err != nil {
			return fmt.Errorf("create dashboard %s: %w", *dashboardFlag, err)
		}
		defer dashFile.Close()
		if err := dash.Render(dashFile); err != nil {
			return fmt.Errorf("render dashboard: %w", err)
		}
		log.Printf("wrote run dashboard to %s", *dashboardFlag)
	}

	log.Printf("processed %d frames, wrote report to %s", len(frames), *outputFlag)
	return nil
}
