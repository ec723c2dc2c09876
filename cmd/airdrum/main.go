package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ayusman/airdrum/internal/app"
	"github.com/ayusman/airdrum/internal/capture"
	"github.com/ayusman/airdrum/internal/detector"
	"github.com/ayusman/airdrum/internal/gesture"
	"github.com/ayusman/airdrum/internal/overlay"
	"github.com/ayusman/airdrum/internal/pose"
	"github.com/ayusman/airdrum/internal/report"
	"github.com/ayusman/airdrum/internal/server"
	"github.com/ayusman/airdrum/internal/sound"
	"github.com/ayusman/airdrum/internal/store"
	"github.com/ayusman/airdrum/internal/tray"
)

// options is the parsed command line.
type options struct {
	Addr              string
	Camera            int
	FPS               int
	Schema            string
	DataDir           string
	PluginDir         string
	Mirror            bool
	Confidence        float64
	History           int
	HitThreshold      float64
	SidewaysThreshold float64
	Cooldown          int
	NoTray            bool

	GenerateSamples string
	Replay          string
	PlotSession     string
	PlotOut         string
}

func main() {
	fmt.Println("airdrum - drum in the air")

	// .env is optional
	_ = godotenv.Load()

	opts, err := parseOptions(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("Invalid arguments: %v", err)
	}

	if err := run(opts); err != nil {
		log.Fatalf("airdrum: %v", err)
	}
}

// parseOptions reads flags, taking defaults from AIRDRUM_* variables.
func parseOptions(args []string, getenv func(string) string) (options, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := envString(getenv, "AIRDRUM_DATA", filepath.Join(home, ".airdrum"))

	var opts options
	fs := flag.NewFlagSet("airdrum", flag.ContinueOnError)
	fs.StringVar(&opts.Addr, "addr", envString(getenv, "AIRDRUM_ADDR", "127.0.0.1:8080"), "HTTP listen address")
	fs.IntVar(&opts.Camera, "camera", envInt(getenv, "AIRDRUM_CAMERA", 0), "camera device id")
	fs.IntVar(&opts.FPS, "fps", envInt(getenv, "AIRDRUM_FPS", app.DefaultFPS), "frame loop rate")
	fs.StringVar(&opts.Schema, "schema", getenv("AIRDRUM_SCHEMA"), "keypoint schema name (default: stored setting or movenet-wrist)")
	fs.StringVar(&opts.DataDir, "data", dataDir, "data directory")
	fs.StringVar(&opts.PluginDir, "plugins", envString(getenv, "AIRDRUM_PLUGINS", ""), "plugin directory (default: <data>/plugins)")
	fs.BoolVar(&opts.Mirror, "mirror", envBool(getenv, "AIRDRUM_MIRROR", true), "mirror the camera feed")
	fs.Float64Var(&opts.Confidence, "confidence", envFloat(getenv, "AIRDRUM_CONFIDENCE", gesture.DefaultConfidenceThreshold), "minimum keypoint score")
	fs.IntVar(&opts.History, "history", envInt(getenv, "AIRDRUM_HISTORY", gesture.DefaultHistorySize), "velocity window in frames")
	fs.Float64Var(&opts.HitThreshold, "hit-threshold", envFloat(getenv, "AIRDRUM_HIT_THRESHOLD", gesture.DefaultHitThreshold), "downward speed in px/frame")
	fs.Float64Var(&opts.SidewaysThreshold, "sideways-threshold", envFloat(getenv, "AIRDRUM_SIDEWAYS_THRESHOLD", gesture.DefaultSidewaysThreshold), "lateral speed in px/frame")
	fs.IntVar(&opts.Cooldown, "cooldown", envInt(getenv, "AIRDRUM_COOLDOWN", gesture.DefaultCooldownFrames), "frames suppressed after a hit")
	fs.BoolVar(&opts.NoTray, "no-tray", envBool(getenv, "AIRDRUM_NO_TRAY", false), "run without the system tray")
	fs.StringVar(&opts.GenerateSamples, "generate-samples", "", "render the drum samples into `dir` and exit")
	fs.StringVar(&opts.Replay, "replay", "", "classify a recorded pose `file` and exit")
	fs.StringVar(&opts.PlotSession, "plot-session", "", "plot hit velocities for a session `id` and exit")
	fs.StringVar(&opts.PlotOut, "plot-out", "session.png", "output file for -plot-session")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.PluginDir == "" {
		opts.PluginDir = filepath.Join(opts.DataDir, "plugins")
	}
	return opts, nil
}

func envString(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(getenv func(string) string, key string, fallback int) int {
	if v, err := strconv.Atoi(getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envFloat(getenv func(string) string, key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func envBool(getenv func(string) string, key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getenv(key)); err == nil {
		return v
	}
	return fallback
}

func run(opts options) error {
	if opts.GenerateSamples != "" {
		paths, err := sound.NewBank(opts.GenerateSamples).Ensure()
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	}

	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.New(filepath.Join(opts.DataDir, "airdrum.db"))
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	if opts.PlotSession != "" {
		n, err := report.SaveSession(st, opts.PlotSession, opts.PlotOut)
		if err != nil {
			return err
		}
		fmt.Printf("Plotted %d hits to %s\n", n, opts.PlotOut)
		return nil
	}

	if err := seed(st); err != nil {
		return err
	}

	schema, err := resolveSchema(st, opts.Schema)
	if err != nil {
		return err
	}
	log.Printf("Using schema %s (%s)", schema.Name, schema.Model)

	application, err := app.New(appConfig(opts, st, schema))
	if err != nil {
		return err
	}
	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	if opts.Replay != "" {
		return replay(application, opts.Replay)
	}

	return serve(application, st, opts)
}

// seed installs the built-in schemas and the default drum kit bindings.
func seed(st *store.Store) error {
	if n, err := st.Schemas().SeedPresets(); err != nil {
		return fmt.Errorf("failed to seed schemas: %w", err)
	} else if n > 0 {
		log.Printf("Installed %d schema presets", n)
	}
	if n, err := st.Bindings().SeedDefaults("drumkit"); err != nil {
		return fmt.Errorf("failed to seed bindings: %w", err)
	} else if n > 0 {
		log.Printf("Installed %d default bindings", n)
	}
	return nil
}

// resolveSchema finds a schema by name in the store, then among the presets.
// An empty name uses the stored "schema" setting.
func resolveSchema(st *store.Store, name string) (pose.Schema, error) {
	if name == "" {
		var err error
		name, err = st.Settings().GetOr("schema", "movenet-wrist")
		if err != nil {
			return pose.Schema{}, err
		}
	}

	rec, err := st.Schemas().GetByName(name)
	if err == nil {
		return rec.Schema, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return pose.Schema{}, err
	}

	if schema, ok := pose.Preset(name); ok {
		return schema, nil
	}
	return pose.Schema{}, fmt.Errorf("unknown schema %q", name)
}

func appConfig(opts options, st *store.Store, schema pose.Schema) app.Config {
	camera := capture.DefaultConfig()
	camera.DeviceID = opts.Camera
	camera.FPS = opts.FPS
	camera.Mirror = opts.Mirror

	detection := detector.DefaultConfig()
	detection.Model = schema.Model

	classifier := gesture.DefaultConfig(schema)
	classifier.ConfidenceThreshold = opts.Confidence
	classifier.HistorySize = opts.History
	classifier.HitThreshold = opts.HitThreshold
	classifier.SidewaysThreshold = opts.SidewaysThreshold
	classifier.CooldownFrames = opts.Cooldown

	return app.Config{
		Store:      st,
		PluginDir:  opts.PluginDir,
		Camera:     camera,
		Detector:   detection,
		Classifier: classifier,
		FPS:        opts.FPS,
	}
}

func replay(application *app.App, path string) error {
	rec, err := pose.LoadRecording(path)
	if err != nil {
		return err
	}

	events, err := application.Replay(rec)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Printf("frame %4d  %-20s x=%.0f y=%.0f v=%.1f\n", ev.Frame, overlay.Label(ev), ev.X, ev.Y, ev.Velocity)
	}
	fmt.Printf("%d hits in %d frames, session %s\n", len(events), len(rec.Frames), application.SessionID())
	return nil
}

func serve(application *app.App, st *store.Store, opts options) error {
	hub := server.NewHub()
	defer hub.Close()
	application.SetPublisher(hub)

	webDir := findWebDir(opts.DataDir)
	if webDir != "" {
		log.Printf("Serving static files from: %s", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Frames:    application.Frames(),
		Hub:       hub,
		Status:    func() any { return application.Status() },
	})

	go func() {
		log.Printf("Starting server on %s", opts.Addr)
		if err := srv.ListenAndServe(opts.Addr); err != nil {
			log.Printf("Server failed: %v", err)
		}
	}()

	if err := application.Start(); err != nil {
		return err
	}
	defer application.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.NoTray {
		<-ctx.Done()
		log.Printf("Shutting down")
		return nil
	}

	t := tray.New()
	t.OnToggle(func(enabled bool) {
		application.SetEnabled(enabled)
		log.Printf("Hit detection enabled: %v", enabled)
	})
	t.OnSettings(func() {
		if err := openBrowser("http://" + opts.Addr); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})
	t.OnQuit(func() {
		log.Printf("Quit requested")
	})
	application.RegisterEventCallback(func(ev gesture.Event) {
		t.SetLastHit(overlay.Label(ev))
	})

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	// Blocks until the tray quits.
	t.Run()
	return nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <data>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
