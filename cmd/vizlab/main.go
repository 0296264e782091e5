package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jayakeshav/vizlab/internal/api"
	"github.com/jayakeshav/vizlab/internal/config"
	"github.com/jayakeshav/vizlab/internal/obs"
	"github.com/jayakeshav/vizlab/internal/ratio"
	"github.com/jayakeshav/vizlab/internal/registry"
	vizsignal "github.com/jayakeshav/vizlab/internal/signal"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	// Handle -nginx / --nginx anywhere
	if cmd == "-nginx" || cmd == "--nginx" {
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)
		cmdNginx()
		return
	}

	switch cmd {
	case "start":
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)
		cmdStart()
	case "stop":
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)
		cmdStop()
	case "status":
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)
		cmdStatus()
	case "run":
		// Foreground mode (also used internally by daemon child)
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)
		cmdRun(false)
	case "version":
		fmt.Printf("vizlab %s\n", version)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, `VizLab — Performance-Counter Signal Explorer Backend (%s)

Usage:
  %s <command> [flags]

Commands:
  start          Start daemon (background)
  stop           Stop daemon
  status         Show daemon status
  run            Run in foreground
  version        Print version

Flags:
  -nginx         Print sample nginx reverse proxy configuration
  -config PATH   Config file path (default: config.yaml)
  -listen ADDR   Listen address (default: 127.0.0.1:9910)
  -data-root P   Root directory of device data sets
  -base-path P   Base URL path for reverse proxy
  -pid-file P    PID file path
  -log-file P    Log file path

Examples:
  %s start
  %s start -config /etc/vizlab/config.yaml
  %s run -data-root ./Master_Data_Sets
  %s stop
  %s status
  %s -nginx
`, version, exe, exe, exe, exe, exe, exe, exe)
}

// ---------------------------------------------------------------------------
// -nginx: print sample nginx config
// ---------------------------------------------------------------------------

func cmdNginx() {
	cfg := config.Load()

	bp := cfg.BasePath
	if bp == "/" {
		bp = "/vizlab"
		fmt.Println("# base_path is \"/\" — using \"/vizlab\" as example.")
		fmt.Println("# Set base_path in config.yaml to match your desired location.")
		fmt.Println()
	}

	// Ensure trailing slash for nginx location
	loc := bp + "/"

	fmt.Printf(`# --------------------------------------------------
# nginx reverse proxy configuration for VizLab
# --------------------------------------------------
# Add this inside an http { server { ... } } block.

location %s {
    proxy_pass         http://%s/;
    proxy_http_version 1.1;

    # Forward client info
    proxy_set_header   Host              $host;
    proxy_set_header   X-Real-IP         $remote_addr;
    proxy_set_header   X-Forwarded-For   $proxy_add_x_forwarded_for;
    proxy_set_header   X-Forwarded-Proto $scheme;
}
`, loc, cfg.Listen)

	fmt.Println("# config.yaml should have:")
	fmt.Printf("#   base_path: \"%s\"\n", bp)
}

// ---------------------------------------------------------------------------
// run: foreground server (also used by daemon child)
// ---------------------------------------------------------------------------

func cmdRun(isDaemon bool) {
	cfg := config.Load()

	// In daemon mode, write our own PID (child process)
	if isDaemon {
		writePidFile(cfg.PidFile, os.Getpid())
	}

	log.Printf("[startup] scanning data root %s", cfg.DataRoot)
	catalog, err := registry.Open(cfg.DataRoot)
	if err != nil {
		log.Fatalf("failed to build registry from %s: %v", cfg.DataRoot, err)
	}

	metrics := obs.New()
	metrics.RegistryDevices.Set(float64(len(catalog.Snapshot().Devices())))

	resolver := vizsignal.NewResolver(catalog)
	cache := ratio.NewCache()

	router := api.NewRouter(catalog, resolver, cache, metrics, cfg.BasePath)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	go func() {
		log.Printf("VizLab %s listening on http://%s (base_path: %s)", version, cfg.Listen, cfg.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for signal
	<-ctx.Done()
	log.Println("shutting down...")

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)

	// Clean up PID file
	if isDaemon {
		os.Remove(cfg.PidFile)
	}
	log.Println("goodbye")
}

// ---------------------------------------------------------------------------
// PID file helpers
// ---------------------------------------------------------------------------

func writePidFile(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0644)
}

func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in %s", path)
	}
	return pid, nil
}
