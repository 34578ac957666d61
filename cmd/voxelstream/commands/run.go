package commands

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"voxelstream/internal/collab"
	"voxelstream/internal/config"
	"voxelstream/internal/logger"
	"voxelstream/internal/metrics"
	"voxelstream/internal/workingset"
)

var (
	runFrames   int
	runTick     time.Duration
	runObsX     float64
	runObsY     float64
	runObsZ     float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the working set's update/render loop against no-op collaborators",
	Long: `Run loads a world and repeatedly calls Update/Render against a
headless renderer and physics backend, useful for exercising the
working set without a real GPU or collision engine attached.

Stops after --frames ticks (0 means run until interrupted with Ctrl+C).`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runFrames, "frames", 0, "number of ticks to run before exiting (0 = until interrupted)")
	runCmd.Flags().DurationVar(&runTick, "tick", 50*time.Millisecond, "interval between update/render ticks")
	runCmd.Flags().Float64Var(&runObsX, "x", 0, "observer world-space X position")
	runCmd.Flags().Float64Var(&runObsY, "y", 0, "observer world-space Y position")
	runCmd.Flags().Float64Var(&runObsZ, "z", 0, "observer world-space Z position")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{Level: parseLevel(cfg.Logging.Level), Format: parseFormat(cfg.Logging.Format)})

	region, closeRegion, err := openRegionFile(cfg)
	if err != nil {
		return err
	}
	defer closeRegion()

	physics := collab.NewNoopPhysics()
	renderer := collab.NewNoopRenderer()
	observer := collab.StaticObserver{Pos: mgl32.Vec3{float32(runObsX), float32(runObsY), float32(runObsZ)}}

	reg := prometheus.NewRegistry()
	wsMetrics := metrics.NewWorkingSet(reg)
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Listen, reg)
	}

	mgr := workingset.New(cfg, region, physics, renderer, observer, wsMetrics)
	if err := mgr.LoadWorld(cfg.World.Name); err != nil {
		return err
	}
	defer mgr.Shutdown()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(runTick)
	defer ticker.Stop()

	logger.Info("working set running", "world", cfg.World.Name, "view_distance", cfg.WorkingSet.ViewDistance)

	frame := 0
	for {
		select {
		case <-sigChan:
			logger.Info("shutdown signal received")
			return nil
		case <-ticker.C:
			mgr.Update()
			mgr.Render(0)
			frame++
			if runFrames > 0 && frame >= runFrames {
				logger.Info("frame limit reached", "frames", frame)
				return nil
			}
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info("metrics server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "err", err)
	}
}

func openRegionFile(cfg *config.Config) (collab.RegionFile, func(), error) {
	switch cfg.World.RegionBackend {
	case config.RegionFileBadger:
		rf, err := collab.OpenBadgerRegionFile(cfg.World.Path, cfg.World.WorldSizeChunks)
		if err != nil {
			return nil, nil, err
		}
		return rf, func() { _ = rf.Close() }, nil
	default:
		return collab.NewMemoryRegionFile(cfg.World.WorldSizeChunks), func() {}, nil
	}
}

func parseLevel(s string) logger.Level {
	switch s {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func parseFormat(s string) logger.Format {
	if s == "json" {
		return logger.FormatJSON
	}
	return logger.FormatText
}
