package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"termsheet/internal/app"
	"termsheet/internal/storage"
)

var errNotTerminal = errors.New("the editor needs a terminal; use eval or export for scripted use")

func runUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

	// tcell owns the terminal from here on
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	defer log.SetOutput(os.Stderr)

	a := app.NewApp(cfg)
	if cfg.Storage.Snapshots != "" {
		db, err := storage.OpenSnapshots(cfg.Storage.Snapshots)
		if err != nil {
			log.WithError(err).Warn("snapshots disabled")
		} else {
			defer db.Close()
			a.Snapshots = db
		}
	}
	if len(args) == 1 {
		if err := open(a, args[0]); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("cannot create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("cannot init screen: %w", err)
	}
	defer screen.Fini()
	screen.Clear()

	if cfg.UI.Splash {
		app.Splash(screen)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("editor started")
	if err := a.Run(ctx, screen); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// open loads filename into a. A file that does not exist yet becomes the
// save target of an empty sheet.
func open(a *app.App, filename string) error {
	s, err := storage.Load(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.File = filename
		log.WithField("file", filename).Info("starting new sheet")
		return nil
	case err != nil:
		return err
	}
	a.Open(s, filename)
	return nil
}
