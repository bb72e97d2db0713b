package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handpiano/internal/audio"
	"github.com/ayusman/handpiano/internal/config"
	"github.com/ayusman/handpiano/internal/piano"
	"github.com/ayusman/handpiano/internal/store"
)

var (
	configPath string
	dbPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "handpiano",
		Short:         "Play sounds by curling your fingers in front of the camera",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.handpiano/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(replayCmd())
	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(sessionsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func getStore(cfg *config.Config) (*store.Store, error) {
	return store.New(cfg.DBPath)
}

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Show the finger to sound table and check the samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			keys := piano.DefaultKeyMap()
			fmt.Printf("Sounds: %s\n\n", cfg.Audio.SoundsDir)

			missing := 0
			for _, h := range piano.Hands {
				for _, f := range piano.Fingers {
					key := keys[piano.Slot{Hand: h, Finger: f}]
					sample, err := audio.FindSample(cfg.Audio.SoundsDir, key)
					status := filepath.Base(sample)
					if err != nil {
						status = "MISSING"
						missing++
					}
					fmt.Printf("  %-6s %-7s %-13s %s\n", h, f, key, status)
				}
			}

			if missing > 0 {
				return fmt.Errorf("%d of %d samples missing", missing, len(keys))
			}
			return nil
		},
	}
}

func sessionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := getStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			sessions, err := s.Sessions().List()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions recorded.")
				return nil
			}

			for i, sess := range sessions {
				if limit > 0 && i >= limit {
					break
				}
				duration := "running"
				if sess.EndedAt != nil {
					duration = sess.EndedAt.Sub(sess.StartedAt).Round(time.Second).String()
				}
				fmt.Printf("%s  %s  %-6s %6d frames %5d presses  %s\n",
					shortID(sess.ID), sess.StartedAt.Format("2006-01-02 15:04"), sess.Source,
					sess.Frames, sess.Presses, duration)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of sessions to show")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// openBrowser is a best-effort helper for the tray's settings item.
func openBrowser(url string) error {
	if url == "" {
		return errors.New("no url")
	}
	return browserCommand(url).Start()
}
