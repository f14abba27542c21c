package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/kalari/internal/app"
	"github.com/ayusman/kalari/internal/game"
	"github.com/ayusman/kalari/internal/server"
	"github.com/ayusman/kalari/internal/store"
	"github.com/ayusman/kalari/internal/tray"
)

type CLI struct {
	Addr            string  `help:"HTTP listen address." default:":8080"`
	Camera          int     `help:"Camera device ID." default:"0"`
	DB              string  `help:"Path to the SQLite database (default ~/.kalari/kalari.db)."`
	StaticDir       string  `help:"Directory of web UI files to serve."`
	Difficulty      string  `help:"Starting difficulty." enum:"easy,hard" default:"easy"`
	Seed            int64   `help:"Random seed for the opponent (0 = time-based)."`
	MotionThreshold float64 `help:"Percent of pixels that must change to wake the camera." default:"1.0"`
	Tray            bool    `help:"Show the system tray control."`
	Debug           bool    `help:"Enable debug logging."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("kalari"),
		kong.Description("Gesture-controlled rock-paper-scissors duel."))

	level := log.InfoLevel
	if cli.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})

	if err := run(cli, logger); err != nil {
		logger.Fatal("kalari failed", "error", err)
	}

	kctx.Exit(0)
}

func run(cli CLI, logger *log.Logger) error {
	dbPath := cli.DB
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dbDir := filepath.Join(homeDir, ".kalari")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return err
		}
		dbPath = filepath.Join(dbDir, "kalari.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	difficulty := game.Easy
	if cli.Difficulty == "hard" {
		difficulty = game.Hard
	}

	a := app.New(app.Config{
		Store:        st,
		CameraID:     cli.Camera,
		MotionThresh: cli.MotionThreshold,
		Difficulty:   difficulty,
		Seed:         cli.Seed,
		Logger:       logger,
	})

	srv := server.New(server.Config{
		StaticDir: cli.StaticDir,
		Store:     st,
		Camera:    a.Camera(),
	})

	var tr *tray.Tray
	if cli.Tray {
		tr = tray.New()
	}

	a.OnOutput(func(o app.Output) {
		srv.Live().Publish(o)
		if tr != nil {
			tr.SetGesture(o.Stable.String())
			tr.SetHighScore(o.Game.HighScore)
		}
	})

	if err := a.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{Addr: cli.Addr, Handler: srv}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Serving", "addr", cli.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		// Stop on signal or when the player exits from the game menu.
		select {
		case <-ctx.Done():
		case <-a.Done():
		}

		a.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if tr != nil {
		tr.OnToggle(a.SetEnabled)
		tr.OnOpenUI(func() { openBrowser(gameURL(cli.Addr)) })
		tr.OnQuit(stop)
		// systray.Run must own the main goroutine.
		tr.Run()
	}

	return g.Wait()
}

// gameURL turns a listen address into something a browser can open.
func gameURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://localhost:8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// openBrowser is best effort; a headless session just ignores it.
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
	cmd.Start()
}
