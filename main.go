package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"stellarforge/internal/oracle"
	"stellarforge/internal/store"
)

var (
	configPath  string
	variantFlag string
	debugFlag   bool
	canvasOnly  bool

	rootCmd = &cobra.Command{
		Use:   "stellarforge",
		Short: "Combine elements on an infinite canvas to discover the universe",
		Long: `Stellar Forge is a terminal crafting sandbox. Drag elements from the
palette onto the canvas and drop them onto each other to discover new ones.`,
		SilenceUsage: true,
		RunE:         runPlay,
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Open the crafting canvas (default)",
		RunE:  runPlay,
	}

	exportCmd = &cobra.Command{
		Use:       "export {png|txt|xlsx} [file]",
		Short:     "Export the saved canvas or the discovery book",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"png", "txt", "xlsx"},
		RunE:      runExport,
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Clear the saved canvas, discoveries and generated recipes",
		Args:  cobra.NoArgs,
		RunE:  runReset,
	}

	recipesCmd = &cobra.Command{
		Use:   "recipes",
		Short: "List every known recipe",
		Args:  cobra.NoArgs,
		RunE:  runRecipes,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/"+configFileName+")")
	rootCmd.PersistentFlags().StringVar(&variantFlag, "variant", "", "recipe source: static or augmented")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "log at debug level")
	resetCmd.Flags().BoolVar(&canvasOnly, "canvas-only", false, "only clear the canvas")

	rootCmd.AddCommand(playCmd, exportCmd, resetCmd, recipesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds everything a command needs: config, logger, storage and the
// recipe resolver.
type app struct {
	config   *Config
	log      *slog.Logger
	store    store.Store
	persist  *Persistence
	cache    *RecipeCache
	resolver Resolver
	closers  []io.Closer
}

func openApp() (*app, error) {
	cfg, cfgErr := loadConfig(configPath)
	if variantFlag != "" {
		cfg.Variant = variantFlag
	}
	if debugFlag {
		cfg.Debug = true
	}
	cfg.normalize()

	logger, logFile, err := newLogger(cfg.LogPath(), cfg.Debug)
	if err != nil {
		return nil, err
	}
	a := &app{config: cfg, log: logger, closers: []io.Closer{logFile}}
	if cfgErr != nil {
		logger.Warn("using default config", "error", cfgErr)
	}

	switch cfg.Store {
	case StoreDir:
		a.store, err = store.OpenDir(cfg.StorePath(), logger)
	default:
		bc := store.DefaultBadgerConfig(cfg.StorePath())
		bc.Logger = logger
		a.store, err = store.OpenBadger(bc)
	}
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.closers = append([]io.Closer{a.store}, a.closers...)

	a.persist = NewPersistence(a.store, logger)
	a.cache = NewRecipeCache()
	a.resolver = a.buildResolver()
	logger.Info("started", "variant", cfg.Variant, "store", cfg.Store, "data_dir", cfg.DataDir)
	return a, nil
}

func (a *app) buildResolver() Resolver {
	if a.config.Variant != VariantAugmented {
		return NewStaticResolver(defaultRecipes)
	}
	oc := oracle.DefaultConfig()
	oc.APIKey = a.config.APIKey
	oc.Model = a.config.OpenAI.Model
	oc.BaseURL = a.config.OpenAI.BaseURL
	oc.RequestsPerMinute = a.config.OpenAI.RequestsPerMinute
	oc.Timeout = a.config.OpenAI.Timeout

	client, err := oracle.New(oc, a.log)
	if err != nil {
		a.log.Warn("completion capability unavailable, only known recipes will react", "error", err)
		return NewAugmentedResolver(defaultRecipes, a.cache, nil, a.log)
	}
	return NewAugmentedResolver(defaultRecipes, a.cache, client, a.log)
}

func (a *app) close() {
	for _, c := range a.closers {
		c.Close()
	}
}

func (a *app) session() *Session {
	return NewSession(SessionOptions{
		Resolver:      a.resolver,
		Cache:         a.cache,
		Persistence:   a.persist,
		Notifications: NewNotificationCenter(a.config.NotificationTTL, notificationExitGrace),
		Logger:        a.log,
	})
}

func runPlay(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("stellarforge needs an interactive terminal")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	m := newModel(a.session(), a.persist, a.config, a.log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := a.persist.Watch(ctx, func(c store.Change) {
			p.Send(storageChangedMsg{change: c})
		})
		if err != nil {
			a.log.Warn("storage watch stopped", "error", err)
		}
	}()
	if _, err := os.Stat(filepath.Dir(a.config.Path())); err == nil {
		go func() {
			err := watchConfig(ctx, a.config.Path(), a.log, func(c *Config) {
				p.Send(configReloadedMsg{config: c})
			})
			if err != nil {
				a.log.Warn("config watch stopped", "error", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		a.log.Error("ui stopped", "error", err)
		return err
	}
	a.log.Info("stopped")
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	format := strings.ToLower(args[0])
	name := fmt.Sprintf("stellarforge-%s.%s", time.Now().Format("20060102-150405"), format)
	path := a.config.GetSavePath(name)
	if len(args) == 2 {
		path = args[1]
	}

	s := a.session()
	switch format {
	case "png":
		err = ExportToPNG(s.Canvas().Snapshot(), path)
	case "txt":
		err = exportVisualTXT(s.Canvas().Snapshot(), path)
	case "xlsx":
		err = ExportXLSX(s.Discovery(), defaultRecipes, s.Cache(), path)
	default:
		return fmt.Errorf("unknown export format %q", args[0])
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Exported to", path)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	s := a.session()
	if canvasOnly {
		s.ResetCanvas()
		fmt.Fprintln(cmd.OutOrStdout(), "Canvas cleared")
		return nil
	}
	s.ResetAll()
	fmt.Fprintln(cmd.OutOrStdout(), "Progress reset")
	return nil
}

func runRecipes(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	s := a.session()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FIRST\tSECOND\tRESULT\tSOURCE")
	for _, r := range recipeRows(defaultRecipes, s.Cache()) {
		result := r.result()
		if !r.Result.IsExplosion && !s.Discovery().Has(r.Result.Name) {
			result = "???"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.First, r.Second, result, r.Source)
	}
	return w.Flush()
}
