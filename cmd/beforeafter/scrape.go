package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"beforeafter/pkg/config"
	"beforeafter/pkg/logger"
	"beforeafter/pkg/models"
	"beforeafter/pkg/scraper"
	"beforeafter/pkg/ui"
	"beforeafter/pkg/ui/tui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

var (
	// Scrape command flags
	outputDir     string
	rendererMode  string
	cropHeight    int
	writeMetadata bool
	headless      bool
	useTUI        bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [page-url]",
	Short: "Download and split the images of a gallery page",
	Long: `Render a before/after gallery page, download every carousel image and split
it into cropped left and right halves.

Raw downloads are kept under downloads/raw/ only while they are processed.
Failures are reported per image; the run always continues with the next one.`,
	Example: `  # Scrape the default gallery
  beforeafter

  # Scrape a specific procedure page
  beforeafter scrape https://newimage-plasticsurgery.com/before-after/facelift/

  # Parse server-rendered HTML instead of launching a browser
  beforeafter --renderer static --output ./gallery

  # Trim 80 pixels from the bottom and keep JSON sidecars
  beforeafter --crop-height 80 --metadata

  # Follow the run in a full screen progress view
  beforeafter --tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func addScrapeFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&outputDir, "output", "o", "", "base directory for downloads/ (default: current directory)")
	fs.StringVar(&rendererMode, "renderer", "", "page renderer: browser or static")
	fs.IntVar(&cropHeight, "crop-height", 50, "pixels trimmed from the bottom of each half (capped at a quarter of the height)")
	fs.BoolVar(&writeMetadata, "metadata", false, "write a JSON metadata sidecar for every processed image")
	fs.BoolVar(&headless, "headless", true, "run the browser renderer headless")
	fs.BoolVar(&useTUI, "tui", false, "show a full screen progress view (terminals only)")
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	addScrapeFlags(scrapeCmd.Flags())

	// Also add these flags to root command so scrape is the default
	addScrapeFlags(rootCmd.Flags())
}

// collectFlags maps explicitly set flags onto config keys
func collectFlags(cmd *cobra.Command, args []string) map[string]interface{} {
	flags := make(map[string]interface{})
	if len(args) > 0 {
		flags["page-url"] = strings.TrimSpace(args[0])
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if rendererMode != "" {
		flags["renderer"] = rendererMode
	}
	if cmd.Flags().Changed("crop-height") {
		flags["crop-height"] = cropHeight
	}
	if cmd.Flags().Changed("metadata") {
		flags["metadata"] = writeMetadata
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, collectFlags(cmd, args))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var view *tui.TUI
	if useTUI && term.IsTerminal(int(os.Stdout.Fd())) {
		view = tui.New(cfg.Site.PageURL, stop)
	}

	logger.Version = version
	if view != nil {
		err = logger.InitializeWithWriter(&cfg.Logging, view.LogWriter())
	} else {
		err = logger.Initialize(&cfg.Logging)
	}
	if err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("page_url", cfg.Site.PageURL).Info("beforeafter starting")

	s, err := scraper.New(cfg, log)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	var summary *models.RunSummary
	if view != nil {
		summary, err = runWithTUI(ctx, s, view, cfg.Site.PageURL)
	} else {
		ui.PrintInfo("Gallery page", cfg.Site.PageURL)
		ui.PrintInfo("Renderer", cfg.Render.Mode)
		s.SetObserver(ui.NewStatusTracker(0))

		ui.PrintHighlight("[LOADING GALLERY]")
		summary, err = s.Run(ctx, cfg.Site.PageURL)
	}

	if err != nil {
		// run-level failures are reported, not turned into an exit code
		ui.PrintError("SCRAPE FAILED", err.Error())
	} else {
		ui.PrintSuccess("[SCRAPE COMPLETED]")
	}

	ui.PrintSummary(summary)
	return nil
}

// runWithTUI runs the scrape in the background while view owns the terminal
func runWithTUI(ctx context.Context, s *scraper.Scraper, view *tui.TUI, pageURL string) (*models.RunSummary, error) {
	type outcome struct {
		summary *models.RunSummary
		err     error
	}

	s.SetObserver(view)
	done := make(chan outcome, 1)
	go func() {
		summary, err := s.Run(ctx, pageURL)
		view.Finish(err)
		done <- outcome{summary, err}
	}()

	if err := view.Run(); err != nil {
		logger.WithError(err).Warn("Progress view exited early")
	}

	o := <-done
	return o.summary, o.err
}

// Make scrape the default command when no subcommand is specified
func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && isKnownCommand(args[0]) {
			return cmd.Help()
		}
		return runScrape(cmd, args)
	}
	rootCmd.Args = cobra.MaximumNArgs(1)
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
