package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handpiano/internal/app"
	"github.com/ayusman/handpiano/internal/audio"
	"github.com/ayusman/handpiano/internal/capture"
	"github.com/ayusman/handpiano/internal/config"
	"github.com/ayusman/handpiano/internal/detector"
	"github.com/ayusman/handpiano/internal/piano"
	"github.com/ayusman/handpiano/internal/server"
	"github.com/ayusman/handpiano/internal/store"
	"github.com/ayusman/handpiano/internal/tray"
)

// ringOut lets the last notes of a played replay finish before exit.
const ringOut = time.Second

func appConfig(cfg *config.Config, sink piano.Sink, keys piano.KeyMap, s *store.Store) app.Config {
	cam := capture.DefaultConfig()
	cam.DeviceID = cfg.Camera.DeviceID
	cam.Mirror = cfg.Camera.Mirror

	return app.Config{
		Sink:           sink,
		Keys:           keys,
		Store:          s,
		Camera:         cam,
		Detector:       cfg.Detector,
		ActiveInterval: cfg.Pipeline.ActiveInterval,
		IdleInterval:   cfg.Pipeline.IdleInterval,
		IdleTimeout:    cfg.Pipeline.IdleTimeout,
		MotionThresh:   cfg.Pipeline.MotionThreshold,
	}
}

func runCmd() *cobra.Command {
	var withTray bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play from the camera and serve the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Hand Piano")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := getStore(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			defer s.Close()

			keys := piano.DefaultKeyMap()
			sink, closer, err := app.NewSink(cfg, keys, nil)
			if err != nil {
				return err
			}
			defer closer.Close()

			a, err := app.New(appConfig(cfg, sink, keys, s))
			if err != nil {
				return err
			}
			defer a.Close()

			webDir := cfg.WebDir
			if webDir == "" {
				webDir = findWebDir()
			}
			if webDir != "" {
				fmt.Printf("Serving static files from: %s\n", webDir)
			}

			srv := server.New(server.Config{
				StaticDir: webDir,
				Store:     s,
				Keys:      a.Keys(),
				Frames:    a,
				Bus:       a.Bus(),
				OnSetting: a.ApplySetting,
			})

			if err := a.Start(); err != nil {
				return fmt.Errorf("failed to start camera: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				fmt.Printf("Starting server on %s\n", cfg.Addr)
				errCh <- srv.ListenAndServe(cfg.Addr)
			}()

			if withTray {
				t := tray.New(a.IsEnabled())
				t.OnToggle(a.SetEnabled)
				t.OnSettings(func() {
					if err := openBrowser(settingsURL(cfg.Addr)); err != nil {
						log.Printf("Failed to open browser: %v", err)
					}
				})
				t.OnQuit(stop)
				if err := t.Follow(a.Bus()); err != nil {
					return err
				}
				go func() {
					select {
					case <-ctx.Done():
					case err := <-errCh:
						log.Printf("Server failed: %v", err)
					}
					t.Quit()
				}()
				t.Run()
				return nil
			}

			select {
			case <-ctx.Done():
				fmt.Println("Shutting down")
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server failed: %w", err)
			}
		},
	}

	cmd.Flags().BoolVar(&withTray, "tray", false, "show a menu bar icon")
	return cmd
}

func replayCmd() *cobra.Command {
	var (
		play   bool
		record bool
		delay  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Run recorded detections (JSONL, - for stdin) through the keyboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var in io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			keys := piano.DefaultKeyMap()
			var sink piano.Sink = audio.NewLogSink(keys, log.New(os.Stdout, "", 0))
			if play {
				s, closer, err := app.NewSink(cfg, keys, nil)
				if err != nil {
					return err
				}
				defer closer.Close()
				sink = s
				if delay == 0 {
					delay = cfg.Pipeline.ActiveInterval
				}
			}

			var s *store.Store
			if record {
				s, err = getStore(cfg)
				if err != nil {
					return err
				}
				defer s.Close()
			}

			a, err := app.New(appConfig(cfg, sink, keys, s))
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.BeginSession(store.SourceReplay)
			if err != nil {
				return err
			}

			reader := detector.NewSequenceReader(in)
			frames, presses := 0, 0
			for {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				hands, err := reader.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				presses += len(a.ProcessHands(hands))
				frames++
				if delay > 0 {
					time.Sleep(delay)
				}
			}
			if err := a.EndSession(); err != nil {
				return err
			}

			fmt.Printf("%d frames, %d presses\n", frames, presses)
			if record {
				fmt.Printf("Recorded session %s\n", id)
			}
			if play {
				time.Sleep(ringOut)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&play, "play", false, "play through the configured sink instead of printing")
	cmd.Flags().BoolVar(&record, "record", false, "record the replay as a session")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause between frames (default: the active frame interval with --play)")
	return cmd
}

func settingsURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.handpiano/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
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

	homeWebDir := filepath.Join(config.Dir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
