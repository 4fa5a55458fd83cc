package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"captioner/internal/burnin"
	"captioner/internal/captions"
	"captioner/internal/config"
	"captioner/internal/media"
	"captioner/internal/render"
	"captioner/internal/services"
	"captioner/internal/transcribe"
)

func newBurnCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var srtPath string
	var writeSRT bool

	cmd := &cobra.Command{
		Use:   "burn <video>",
		Short: "Transcribe a video and burn the captions into a copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			burner, err := newBurner(cfg, logger)
			if err != nil {
				return err
			}

			input, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return services.Wrap(services.ErrValidation, "burn", "resolve input", args[0], err)
			}
			req := burnin.Request{Input: input}
			if outputPath != "" {
				if req.Output, err = config.ExpandPath(outputPath); err != nil {
					return services.Wrap(services.ErrValidation, "burn", "resolve output", outputPath, err)
				}
			} else {
				req.Output = defaultOutput(input, cfg.Captions.OutputName)
			}
			switch {
			case srtPath != "":
				if req.SRTPath, err = config.ExpandPath(srtPath); err != nil {
					return services.Wrap(services.ErrValidation, "burn", "resolve srt", srtPath, err)
				}
			case writeSRT || cfg.Captions.WriteSRT:
				req.SRTPath = strings.TrimSuffix(req.Output, filepath.Ext(req.Output)) + ".srt"
			}

			result, err := burner.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d frames at %.3f fps, %d cues from %d segments) in %s\n",
				result.Output, result.Frames, result.FPS, result.Cues, result.Segments, result.Elapsed.Round(time.Millisecond))
			if result.SRTPath != "" {
				fmt.Fprintf(out, "Captions saved to %s\n", result.SRTPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination video (default: output name next to the input)")
	cmd.Flags().StringVar(&srtPath, "srt-path", "", "Write the cues as SubRip to this path")
	cmd.Flags().BoolVar(&writeSRT, "srt", false, "Write a SubRip file next to the output")
	return cmd
}

func newBurner(cfg *config.Config, logger *slog.Logger) (*burnin.Burner, error) {
	transcriber, err := transcribe.New(cfg)
	if err != nil {
		return nil, err
	}
	drawer, err := render.New(cfg.Captions.FontSize)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "burn", "load font", "", err)
	}
	return burnin.New(burnin.Options{
		Media:       media.NewTool(cfg.FFmpegBinary(), cfg.FFprobeBinary()),
		Transcriber: transcriber,
		Painter:     drawer,
		Segmenter:   captions.Segmenter{LeadFrames: cfg.Captions.LeadFrames},
		Layout:      layoutFromConfig(cfg.Captions),
		CharWidth:   cfg.Captions.CharWidth,
		Workers:     cfg.Captions.Workers,
		WorkDir:     cfg.Paths.WorkDir,
		KeepWork:    cfg.Captions.KeepWork,
		Logger:      logger,
	})
}

func layoutFromConfig(c config.Captions) captions.LayoutConfig {
	return captions.LayoutConfig{
		ReferenceWidth:   c.ReferenceWidth,
		BaseFontScale:    c.FontScale,
		BaseThickness:    c.Thickness,
		VerticalFraction: c.VerticalPosition,
	}
}
