package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/capture"
	"github.com/ayusman/repcount/internal/config"
	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/logging"
	"github.com/ayusman/repcount/internal/metrics"
	"github.com/ayusman/repcount/internal/pose"
	"github.com/ayusman/repcount/internal/progress"
	"github.com/ayusman/repcount/internal/server"
	"github.com/ayusman/repcount/internal/store"
	"github.com/ayusman/repcount/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.repcount/config.yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("repcount: %v", err)
	}
}

func run(configPath string) error {
	if configPath == "" {
		if dir, err := config.Dir(); err == nil {
			configPath = filepath.Join(dir, "config.yaml")
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logCloser, err := logging.Setup(logging.SetupParams{
		LogFileName:   cfg.Logging.File,
		LogToStdout:   true,
		LogLevel:      cfg.Logging.Level,
		LogFormatJSON: cfg.Logging.JSON,
	})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer logCloser.Close()

	log.Info("RepCount - camera rep counter")

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	if n, err := st.Sessions().AbandonActive(time.Now()); err != nil {
		log.Warnf("Failed to close stale sessions: %v", err)
	} else if n > 0 {
		log.Infof("Marked %d unfinished sessions as stopped", n)
	}

	registry := exercise.NewRegistry()
	if cfg.ExercisesFile != "" {
		n, err := registry.LoadFile(cfg.ExercisesFile)
		if err != nil {
			return fmt.Errorf("load exercises: %w", err)
		}
		log.Infof("Loaded %d exercise definitions from %s", n, cfg.ExercisesFile)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewManager(reg)

	hub := server.NewHub()
	appCfg := app.Config{
		Registry:  registry,
		Store:     st,
		Metrics:   m,
		Hub:       hub,
		Rest:      cfg.Session.Rest(),
		QueueSize: cfg.Session.QueueSize,
		User:      cfg.Session.User,
	}

	var a *app.App

	var sched *progress.Scheduler
	if cfg.Progress.Endpoint != "" {
		client := progress.NewClient(cfg.Progress.Endpoint, cfg.Progress.Timeout,
			progress.WithRetry(cfg.Progress.MaxAttempts, progress.DefaultBackoff))
		outbox := progress.NewOutbox(st.Outbox(), client)
		flushTimeout := time.Duration(cfg.Progress.MaxAttempts) * 2 * cfg.Progress.Timeout
		sched, err = progress.NewScheduler(cfg.Progress.FlushSchedule, outbox, flushTimeout,
			func(res progress.FlushResult, err error) { a.ObserveFlush(res, err) })
		if err != nil {
			return fmt.Errorf("progress scheduler: %w", err)
		}
		appCfg.Outbox = outbox
		appCfg.Flusher = sched
	} else {
		log.Info("No progress endpoint configured, sets are only stored locally")
	}

	if cfg.Camera.Enabled {
		pc := pose.DefaultConfig()
		pc.Script = cfg.Camera.PoseScript
		est, err := pose.NewMediaPipe(pc)
		if err != nil {
			log.Warnf("Camera disabled, pose service unavailable: %v", err)
		} else {
			appCfg.Camera = capture.NewCamera(cfg.Camera.DeviceID, cfg.Camera.FPS)
			appCfg.Estimator = est
		}
	}

	var tr *tray.Tray
	if cfg.Tray.Enabled {
		tr = tray.New()
		appCfg.Notifier = tr
	}

	a = app.New(appCfg)
	if sched != nil {
		sched.Start()
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		log.Infof("Serving static files from: %s", staticDir)
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.New(server.Config{
			StaticDir: staticDir,
			Registry:  registry,
			App:       a,
			Hub:       hub,
			Metrics:   m,
			Gatherer:  reg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if tr != nil {
		url := dashboardURL(cfg.Server.Addr)
		tr.OnDashboard(func() { openBrowser(url) })
		tr.OnStop(func() {
			if _, err := a.Stop(); err != nil {
				log.Debugf("Stop workout: %v", err)
			}
		})
		tr.OnQuit(stop)
		go func() {
			select {
			case <-ctx.Done():
			case err := <-errc:
				if err != nil {
					log.Errorf("Server failed: %v", err)
				}
				stop()
			}
			tr.Quit()
		}()
		tr.Run()
	} else {
		select {
		case <-ctx.Done():
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("server: %w", err)
			}
		}
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Server shutdown: %v", err)
	}
	hub.Close()
	if sched != nil {
		sched.Stop()
	}
	if err := a.Close(); err != nil {
		log.Warnf("App shutdown: %v", err)
	}
	return nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.repcount/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	candidates := []string{"web", "../web", "../../web"}
	if dir, err := config.Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "web"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warnf("Failed to open browser: %v", err)
		return
	}
	go cmd.Wait()
}
