package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hochfrequenz/app-forge/internal/appgen"
	"github.com/hochfrequenz/app-forge/internal/batch"
	"github.com/hochfrequenz/app-forge/internal/catalog"
	"github.com/hochfrequenz/app-forge/internal/config"
	"github.com/hochfrequenz/app-forge/internal/ideas"
	"github.com/hochfrequenz/app-forge/internal/llm/factory"
	"github.com/hochfrequenz/app-forge/internal/logging"
	"github.com/hochfrequenz/app-forge/internal/notify"
	"github.com/hochfrequenz/app-forge/internal/orchestrator"
	"github.com/hochfrequenz/app-forge/internal/prompts"
	"github.com/hochfrequenz/app-forge/internal/quality"
	"github.com/hochfrequenz/app-forge/internal/repo"
	"github.com/hochfrequenz/app-forge/internal/runlog"
	"github.com/hochfrequenz/app-forge/internal/runstate"
	"github.com/hochfrequenz/app-forge/tui"
	"github.com/hochfrequenz/app-forge/web/api"
)

var (
	runForce     bool
	runSchedule  bool
	listCategory string
	historyLimit int
	servePort    int
)

func init() {
	// run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one maintenance iteration",
		RunE:  runRun,
	}
	runCmd.Flags().BoolVar(&runForce, "force-generate", false, "generate new apps regardless of the weekday")
	runCmd.Flags().BoolVar(&runSchedule, "schedule", false, "keep running on the configured cron schedule")
	rootCmd.AddCommand(runCmd)

	// status command
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog and run statistics",
		RunE:  runStatus,
	}
	rootCmd.AddCommand(statusCmd)

	// list command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List generated apps",
		RunE:  runList,
	}
	listCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	rootCmd.AddCommand(listCmd)

	// history command
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)

	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)

	// tui command
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the terminal dashboard",
		RunE:  runTUI,
	}
	rootCmd.AddCommand(tuiCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func openCatalog(cfg *config.Config, log zerolog.Logger) *catalog.Catalog {
	return catalog.Open(filepath.Join(cfg.General.DataDir, "app_registry.json"), log)
}

func openState(cfg *config.Config, log zerolog.Logger) *runstate.State {
	return runstate.Open(filepath.Join(cfg.General.DataDir, "state.json"), log)
}

// buildOrchestrator wires the full generation pipeline from config.
func buildOrchestrator(cfg *config.Config, log zerolog.Logger) (*orchestrator.Orchestrator, *runlog.Store, error) {
	provider, err := factory.New(factory.Settings{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, nil, err
	}

	history, err := runlog.New(cfg.General.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening run database: %w", err)
	}

	cat := openCatalog(cfg, log)
	state := openState(cfg, log)
	loader := prompts.NewLoader()
	ws := repo.New(cfg.General.TargetRepoPath, cfg.General.DataDir, log)
	coordinator := batch.New(provider, log,
		batch.WithPollInterval(time.Duration(cfg.Batch.PollIntervalSeconds)*time.Second),
		batch.WithMaxWait(time.Duration(cfg.Batch.MaxWaitSeconds)*time.Second),
	)

	orch := orchestrator.New(orchestrator.Deps{
		Config:   cfg,
		Catalog:  cat,
		State:    state,
		History:  history,
		Ideas:    ideas.New(provider, cat, loader, log),
		AppGen:   appgen.New(coordinator, loader, log),
		Reviewer: quality.NewReviewer(provider, loader, ws, log),
		Fixer:    quality.NewFixer(provider, loader, ws, log),
		Repo:     ws,
		Notifier: notify.NewSlackNotifier(cfg.Notifications.SlackWebhook),
	}, log)

	return orch, history, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.Setup(logLevel, logJSON)

	orch, history, err := buildOrchestrator(cfg, log)
	if err != nil {
		return err
	}
	defer history.Close()

	iterate := func() error {
		summary, err := orch.Run(context.Background(), runForce)
		if err != nil {
			log.Error().Err(err).Msg("iteration failed")
			return err
		}
		log.Info().
			Int("new_apps", len(summary.NewApps)).
			Int("bugs_fixed", len(summary.BugsFixed)).
			Msg("iteration finished")
		return nil
	}

	if !runSchedule {
		return iterate()
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.General.Schedule, func() { iterate() }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.General.Schedule, err)
	}
	log.Info().Str("schedule", cfg.General.Schedule).Msg("running on schedule")
	c.Run()
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.Setup(logLevel, logJSON)

	cat := openCatalog(cfg, log)
	state := openState(cfg, log)

	fmt.Printf("Apps in catalog: %d\n", cat.Count())
	fmt.Printf("Generated: %d | Bugs fixed: %d | Improvements: %d | Doc updates: %d\n",
		state.Stat(runstate.StatAppsGenerated),
		state.Stat(runstate.StatBugsFixed),
		state.Stat(runstate.StatImprovements),
		state.Stat(runstate.StatDocUpdates))

	if last := state.LastRun(); last != nil {
		fmt.Printf("Last run: %s (%d new apps, %d bugs fixed)\n",
			last.Timestamp.Format(time.RFC3339), len(last.NewApps), len(last.BugsFixed))
	} else {
		fmt.Println("Last run: never")
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.Setup(logLevel, logJSON)

	cat := openCatalog(cfg, log)
	apps := cat.All()
	if listCategory != "" {
		apps = cat.ByCategory(listCategory)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tPATH\tCREATED")
	for _, app := range apps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			app.Name, app.Category, app.Path, app.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	history, err := runlog.New(cfg.General.DatabasePath)
	if err != nil {
		return err
	}
	defer history.Close()

	runs, err := history.ListRuns(historyLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSTARTED\tAPPS\tBUGS\tDOCS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.Status, r.StartedAt.Format(time.RFC3339),
			r.AppsGenerated, r.BugsFixed, r.DocUpdates)
	}
	w.Flush()
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.Setup(logLevel, logJSON)

	history, err := runlog.New(cfg.General.DatabasePath)
	if err != nil {
		return err
	}
	defer history.Close()

	port := servePort
	if port == 0 {
		port = cfg.Web.Port
	}
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, port)

	server := api.NewServer(openCatalog(cfg, log), openState(cfg, log), history, addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := server.WatchAndBroadcast(ctx, cfg.General.DataDir)
	if err != nil {
		log.Warn().Err(err).Msg("state watcher disabled")
	} else {
		defer watcher.Stop()
	}

	log.Info().Str("addr", addr).Msg("starting web dashboard")
	return server.Start()
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, "error", logJSON)

	cat := openCatalog(cfg, log)
	state := openState(cfg, log)

	history, err := runlog.New(cfg.General.DatabasePath)
	if err != nil {
		return err
	}
	defer history.Close()

	runs, err := history.ListRuns(50)
	if err != nil {
		return err
	}

	model := tui.NewModel(tui.ModelConfig{
		Apps:    cat.All(),
		Runs:    runs,
		Stats:   state.Stats(),
		LastRun: state.LastRun(),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
