// Command editor paints tile layers and saves them as text grids.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dagbay/level-design/assets"
	"github.com/dagbay/level-design/config"
	"github.com/dagbay/level-design/editor"
	"github.com/dagbay/level-design/levels"
	"github.com/dagbay/level-design/logging"
	"github.com/dagbay/level-design/script"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const scriptTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := config.ParseArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stdout)
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Closing program")
		return 1
	}

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	settings, err := config.LoadSettings(afero.NewOsFs(), opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, logCloser, err := logging.New(logging.Options{
		Level:      settings.Log.Level,
		File:       settings.Log.File,
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	if err := runEditor(opts, settings, log); err != nil {
		log.WithError(err).Error("editor stopped")
		return 1
	}
	return 0
}

func runEditor(opts config.Options, settings *config.Settings, log *logrus.Logger) error {
	lib := assets.Library{Dir: settings.AssetsDir}
	pal, images, err := loadPalette(lib, settings.Palette)
	if err != nil {
		return err
	}
	defer func() {
		for _, img := range images {
			img.Close()
		}
	}()

	store := levels.NewStore(settings.OutputDir, opts.Base)
	session, err := editor.New(editor.Options{
		Layers:  opts.Layers,
		Grid:    opts.Grid(settings.Window.Width, settings.Window.Height),
		Prefill: settings.Prefill,
	}, pal, store, log)
	if err != nil {
		return err
	}
	first := session.Layers()[0]
	log.WithFields(logrus.Fields{
		"layers": opts.Layers,
		"cols":   first.Cols(),
		"rows":   first.Rows(),
		"sheets": pal.Len(),
	}).Info("session ready")

	if opts.Load {
		log.WithField("loaded", session.LoadAll()).Info("loaded saved layers")
	}
	if opts.Script != "" {
		runScript(lib, opts.Script, session, log)
	}

	if clip, err := newSystemClipboard(); err != nil {
		log.WithError(err).Warn("clipboard unavailable, copy_layer disabled")
	} else {
		session.SetClipboard(clip)
	}

	var watcher *levels.Watcher
	if opts.Watch {
		if err := store.Fs.MkdirAll(store.Dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		watcher, err = levels.NewWatcher(store)
		if err != nil {
			return fmt.Errorf("watch %s: %w", store.Dir, err)
		}
		defer watcher.Close()
		session.WatchReloads(watcher.Events)
		log.WithField("dir", store.Dir).Info("watching layer files")
	}

	keys, err := settings.Keymap()
	if err != nil {
		return err
	}
	input, err := newInput(keys)
	if err != nil {
		return err
	}
	hud, err := newHUD(settings.HUD.FontSize, len(session.HUDLines()))
	if err != nil {
		return err
	}

	game := &Game{
		session: session,
		input:   input,
		hud:     hud,
		width:   settings.Window.Width,
		height:  settings.Window.Height,
		log:     log,
	}
	if watcher != nil {
		game.watchErrors = watcher.Errors
	}

	ebiten.SetWindowSize(settings.Window.Width, settings.Window.Height)
	ebiten.SetWindowTitle(settings.Window.Title)
	ebiten.SetTPS(settings.TargetFPS)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func runScript(lib assets.Library, name string, session *editor.Session, log *logrus.Logger) {
	src, err := os.ReadFile(name)
	if err != nil {
		src, err = lib.Load(name)
	}
	entry := log.WithField("script", name)
	if err != nil {
		entry.WithError(err).Warn("script not found")
		return
	}
	prog, err := script.Compile(name, src)
	if err != nil {
		entry.WithError(err).Warn("script failed to compile")
		return
	}
	for i, l := range session.Layers() {
		ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
		err := prog.Apply(ctx, i, l, session.Palette())
		cancel()
		if err != nil {
			entry.WithField("layer", i).WithError(err).Warn("script failed, layer unchanged")
		}
	}
	entry.Info("script applied")
}
