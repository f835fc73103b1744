package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/ezcrop/internal/config"
	"github.com/kikiluvv/ezcrop/internal/crop"
	"github.com/kikiluvv/ezcrop/internal/ffmpeg"
	"github.com/kikiluvv/ezcrop/internal/gui"
	"github.com/kikiluvv/ezcrop/internal/logging"
	"github.com/kikiluvv/ezcrop/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ezcrop [video]",
	Short: "EZ Crop - crop and trim videos for social media",
	Long:  "A small desktop video cropper: draw a crop rectangle, pick a frame range, export with ffmpeg.",
	Args:  cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := newExecutor(cfg)
		if err != nil {
			return err
		}

		opts := gui.Options{
			Logger:   log.Logger,
			Config:   cfg,
			Executor: exec,
		}
		if len(args) == 1 {
			if !util.FileExists(args[0]) {
				return fmt.Errorf("video not found: %s", args[0])
			}
			opts.Video = args[0]
		}

		gui.Run(cmd.Context(), opts)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.ezcrop/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(configCmd)
}

func newExecutor(cfg *config.Config) (*ffmpeg.Executor, error) {
	return ffmpeg.New(log.Logger, ffmpeg.Options{
		FFmpegPath:      cfg.FFmpeg.BinaryPath,
		FFprobePath:     cfg.FFmpeg.FFprobePath,
		Threads:         cfg.FFmpeg.Threads,
		PreviewMaxWidth: cfg.Preview.MaxWidth,
	})
}

var probeCmd = &cobra.Command{
	Use:   "probe [video]",
	Short: "Show the metadata the editor works with",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exec, err := newExecutor(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}

		info, err := exec.ProbeVideo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		size, err := util.FileSize(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderInfo(info, size))
		return nil
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List aspect-ratio presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, p := range crop.Presets {
			fmt.Fprintf(out, "%s %s\n", styles.Label.Render(fmt.Sprintf("%-28s", p.Name)), p.Aspect)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the user config path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if util.FileExists(path) {
			return fmt.Errorf("config already exists: %s", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
