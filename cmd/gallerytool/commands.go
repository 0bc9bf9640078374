package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gallery-admin/internal/catalog"
	"gallery-admin/internal/logging"
	"gallery-admin/internal/media"
	"gallery-admin/internal/startup"
	"gallery-admin/internal/watcher"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	root     string
	logLevel string
	vips     bool
	out      io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	rootCmd := &cobra.Command{
		Use:   "gallerytool",
		Short: "Batch maintenance for the photo gallery catalog",
		Long: `gallerytool refreshes the EXIF data and thumbnails referenced by photos.json
without running the admin server. It reads the same environment variables as
the server; --root overrides GALLERY_ROOT.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logLevel == "" {
				return nil
			}
			level, ok := logging.ParseLevel(opts.logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", opts.logLevel)
			}
			logging.SetLevel(level)
			return nil
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.root, "root", "", "gallery root directory (default $GALLERY_ROOT or .)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&opts.vips, "vips", false, "decode with libvips when the Go decoders fail")

	rootCmd.AddCommand(newRunCmd(opts, "extract", catalog.ModeMetadata,
		"Refresh the exif field of every catalog record"))
	rootCmd.AddCommand(newThumbnailsCmd(opts))
	rootCmd.AddCommand(newRunCmd(opts, "update", catalog.ModeBoth,
		"Refresh both EXIF data and thumbnails"))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newVersionCmd(opts))

	return rootCmd
}

// setup reads the configuration and builds the catalog updater. The returned
// cleanup releases libvips when it was started.
func (o *options) setup() (*catalog.Updater, *startup.Config, func(), error) {
	config, err := startup.ReadConfig(o.root)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := startup.PrepareDirectories(config); err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {}
	if o.vips || config.VipsEnabled {
		if err := media.InitVips(); err != nil {
			logging.Warn("libvips unavailable: %v", err)
		} else {
			cleanup = media.ShutdownVips
		}
	}

	updater := catalog.NewUpdater(
		catalog.Config{Root: config.Root, DataDir: config.DataDir},
		catalog.NewStore(config.CatalogPath),
		media.NewMetadataExtractor(),
		media.NewThumbnailGenerator(config.ThumbnailDir, config.Thumbnail),
	)
	return updater, config, cleanup, nil
}

func newRunCmd(opts *options, use string, mode catalog.Mode, short string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updater, _, cleanup, err := opts.setup()
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := updater.Run(cmd.Context(), mode)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(opts.out, res)
			}
			printRunResult(opts.out, mode, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newThumbnailsCmd(opts *options) *cobra.Command {
	var (
		allFiles bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "thumbnails",
		Short: "Generate thumbnails for every catalog record",
		Long: `Generate thumbnails for every catalog record and store their paths in
photos.json. With --all-files, every image in the upload directory gets a
thumbnail instead and the catalog is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updater, _, cleanup, err := opts.setup()
			if err != nil {
				return err
			}
			defer cleanup()

			if !allFiles {
				res, err := updater.Run(cmd.Context(), catalog.ModeThumbnails)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(opts.out, res)
				}
				printRunResult(opts.out, catalog.ModeThumbnails, res)
				return nil
			}

			res, err := updater.GenerateDirectory(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(opts.out, res)
			}
			p := newPrinter(opts.out)
			p.ok("Thumbnails: found %d, generated %d, reused %d, failed %d",
				res.Found, res.Generated, res.Reused, res.Failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&allFiles, "all-files", false, "process every image in the upload directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newWatchCmd(opts *options) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Generate thumbnails for images as they arrive in the upload directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updater, config, cleanup, err := opts.setup()
			if err != nil {
				return err
			}
			defer cleanup()

			p := newPrinter(opts.out)
			w := watcher.New(config.DataDir, debounce, func(path string) {
				res := updater.ProcessFile(path)
				if res.ThumbnailPath == "" {
					p.fail("%s: no thumbnail", path)
					return
				}
				p.ok("%s -> %s (%d EXIF fields)", path, res.ThumbnailPath, len(res.Exif))
			})

			p.info("Watching %s (Ctrl+C to stop)", config.DataDir)
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed file is processed")
	return cmd
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := startup.GetBuildInfo()
			fmt.Fprintf(opts.out, "gallerytool %s (commit %s, built %s, %s %s/%s)\n",
				info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
			return nil
		},
	}
}

func printRunResult(out io.Writer, mode catalog.Mode, res catalog.RunResult) {
	p := newPrinter(out)
	switch mode {
	case catalog.ModeMetadata:
		p.ok("EXIF: processed %d, updated %d, skipped %d", res.Processed, res.MetadataUpdated, res.Skipped)
	case catalog.ModeThumbnails:
		p.ok("Thumbnails: processed %d, generated %d, skipped %d", res.Processed, res.ThumbnailsGenerated, res.Skipped)
	default:
		p.ok("Catalog: processed %d, updated %d (exif %d, thumbnails %d), skipped %d",
			res.Processed, res.Updated, res.MetadataUpdated, res.ThumbnailsGenerated, res.Skipped)
	}
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printer decorates status lines with ANSI colors when writing to a terminal.
type printer struct {
	out   io.Writer
	color bool
}

func newPrinter(out io.Writer) printer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return printer{out: out, color: color}
}

func (p printer) line(code, mark, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.color {
		fmt.Fprintf(p.out, "\x1b[%sm%s\x1b[0m %s\n", code, mark, msg)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", mark, msg)
}

func (p printer) ok(format string, args ...interface{})   { p.line("32", "[OK]", format, args...) }
func (p printer) fail(format string, args ...interface{}) { p.line("31", "[FAIL]", format, args...) }
func (p printer) info(format string, args ...interface{}) { p.line("36", "[..]", format, args...) }
