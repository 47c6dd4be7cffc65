package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstyle/internal/config"
	"github.com/cristianadrielbraun/qrstyle/internal/dots"
	"github.com/cristianadrielbraun/qrstyle/internal/imagesource"
	"github.com/cristianadrielbraun/qrstyle/internal/logging"
	"github.com/cristianadrielbraun/qrstyle/internal/styling"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	configPath string
	output     string
	noCache    bool
	hide       bool
	flags      config.Options
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [data]",
		Short: "Render a QR code to SVG",
		Long: `Render encodes data and writes the styled QR code as SVG to --output or stdout.

Styles are read from a TOML file given with --config; flags override it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.flags.Data = args[0]
			}
			if cmd.Flags().Changed("hide-background-dots") {
				opts.flags.ImageStyle.HideBackgroundDots = &opts.hide
			}
			return c.runRender(cmd, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "TOML style file")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	f.BoolVar(&opts.noCache, "no-cache", false, "do not cache downloaded images")
	f.StringVar(&opts.flags.Data, "data", "", "text to encode")
	f.IntVar(&opts.flags.Width, "width", 0, "canvas width in pixels (default 300)")
	f.IntVar(&opts.flags.Height, "height", 0, "canvas height in pixels (default 300)")
	f.StringVar(&opts.flags.Dots.Type, "dot-type", "", fmt.Sprintf("dot shape: %v", dots.Types()))
	f.StringVar(&opts.flags.Dots.Color, "fg", "", "dot color")
	f.StringVar(&opts.flags.Background.Color, "bg", "", "background color")
	f.StringVar(&opts.flags.QR.ErrorCorrectionLevel, "ecl", "", "error correction level: L, M, Q (default), H")
	f.IntVar(&opts.flags.QR.TypeNumber, "type-number", 0, "QR version 1-40 (default smallest that fits)")
	f.StringVar(&opts.flags.Image, "image", "", "logo SVG: file path, http(s) URL or data URI")
	f.Float64Var(&opts.flags.ImageStyle.ImageSize, "image-size", 0, "share of the error correction budget the logo may cover (default 0.4)")
	f.StringVar(&opts.flags.ImageStyle.Color, "image-color", "", "re-tint the logo")
	f.BoolVar(&opts.hide, "hide-background-dots", true, "remove the dots under the logo")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	base := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		base = loaded
		logger.Debug("loaded style", "path", opts.configPath)
	}

	imgCache, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer imgCache.Close()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	src := imagesource.NewResolver(wd, imgCache)

	q, err := styling.New(ctx, src, base, opts.flags)
	if err != nil {
		return err
	}
	svg, err := q.SVG(ctx)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), svg)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(svg), 0o644); err != nil {
		return err
	}
	logger.Info("wrote", "path", opts.output, "modules", q.Matrix().Size())
	return nil
}
