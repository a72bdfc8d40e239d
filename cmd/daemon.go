package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/riverwm/river/internal/command"
	"github.com/riverwm/river/internal/config"
	"github.com/riverwm/river/internal/control"
	"github.com/riverwm/river/internal/layoutproto"
	"github.com/riverwm/river/internal/logger"
	"github.com/riverwm/river/internal/root"
	"github.com/riverwm/river/internal/spawn"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the river compositor daemon",
	Long: `Starts river's command/mapping/mode engine and its two sibling
protocol listeners: the control socket (riverctl-style clients) and one
layout-protocol socket for the configured default layout namespace
("rivertile" if unset). The Wayland display
backend itself is out of scope here and is assumed to be wired in by
the surrounding process; this command demonstrates and exercises the
ambient stack around it (spec.md §6).`,
	RunE: runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg := config.Get()
	logger.SetLevel(cfg.LogLevel)

	rt := root.New(cfg.TransactionTimeoutMS)
	rt.AddSeat("seat0")

	controlPath := cfg.ControlSocketPath
	if controlPath == "" {
		controlPath = defaultSocketPath("river-control.sock")
	}
	dispatcher := command.NewDispatcher()
	controlSrv, err := control.Listen(controlPath, rt, rt, dispatcher)
	if err != nil {
		return fmt.Errorf("control: listen on %s: %w", controlPath, err)
	}
	defer controlSrv.Close()
	logger.Infof("control protocol listening on %s", controlPath)

	layoutDir := cfg.LayoutSocketDir
	if layoutDir == "" {
		layoutDir = defaultSocketPath("river-layout")
	}
	namespace := cfg.DefaultLayoutNamespace
	if namespace == "" {
		namespace = "rivertile"
	}
	layoutSrv, err := layoutproto.Listen(layoutDir, namespace, rt, rt)
	if err != nil {
		return fmt.Errorf("layoutproto: listen on %s/%s: %w", layoutDir, namespace, err)
	}
	defer layoutSrv.Close()
	logger.Infof("layout protocol listening for namespace %q under %s", namespace, layoutDir)

	if initPath, err := config.InitPath(); err == nil {
		env := append(os.Environ(), "RIVER_CONTROL_SOCKET="+controlPath)
		if err := spawn.Init(initPath, env); err != nil {
			logger.Debugf("no init executable run at %s: %v", initPath, err)
		}
	}

	// The accept loops and the signal wait are independent goroutines
	// feeding connections in, but rt.Run is the only goroutine that ever
	// touches Root directly: both servers hand their work to rt.Do,
	// which blocks until rt.Run has picked it up and run it to
	// completion (spec.md §5 "all compositor logic runs on the loop").
	// errgroup supervises all four so a listener dying brings the
	// process down with its cause instead of leaving it half-alive.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	loopStop := make(chan struct{})
	g.Go(func() error {
		rt.Run(loopStop)
		return nil
	})
	g.Go(func() error {
		if err := controlSrv.Serve(); err != nil {
			return fmt.Errorf("control: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := layoutSrv.Serve(); err != nil {
			return fmt.Errorf("layoutproto: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
			logger.Info("shutting down")
		case <-ctx.Done():
		}
		controlSrv.Close()
		layoutSrv.Close()
		close(loopStop)
		return nil
	})

	return g.Wait()
}

// defaultSocketPath resolves name under XDG_RUNTIME_DIR, falling back
// to /tmp when XDG_RUNTIME_DIR is unset.
func defaultSocketPath(name string) string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, name)
}
