// Package orchestrator drives one full automation run: new app
// generation, bug fixing, bookkeeping and reporting.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/catalog"
	"github.com/hochfrequenz/app-forge/internal/config"
	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/notify"
	"github.com/hochfrequenz/app-forge/internal/quality"
	"github.com/hochfrequenz/app-forge/internal/repo"
	"github.com/hochfrequenz/app-forge/internal/runlog"
	"github.com/hochfrequenz/app-forge/internal/runstate"
)

// IdeaSelector produces unique app ideas.
type IdeaSelector interface {
	Generate(ctx context.Context, category string, services []string) domain.Idea
}

// AppGenerator renders the file set for one idea.
type AppGenerator interface {
	GenerateApp(ctx context.Context, idea domain.Idea) (map[string]string, error)
}

// Reviewer finds issues in an existing app.
type Reviewer interface {
	ReviewApp(ctx context.Context, appDir string) []quality.Issue
}

// Fixer applies fixes and returns the rewritten files.
type Fixer interface {
	FixIssues(ctx context.Context, appDir string, issues []quality.Issue) []string
}

// Orchestrator wires every stage of a run together. Failures of a
// single app never abort the run; they are logged and the run moves on.
type Orchestrator struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	state    *runstate.State
	history  *runlog.Store
	ideas    IdeaSelector
	appgen   AppGenerator
	reviewer Reviewer
	fixer    Fixer
	ws       *repo.Workspace
	notifier notify.Notifier
	rng      *rand.Rand
	now      func() time.Time
	log      zerolog.Logger
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	State    *runstate.State
	History  *runlog.Store
	Ideas    IdeaSelector
	AppGen   AppGenerator
	Reviewer Reviewer
	Fixer    Fixer
	Repo     *repo.Workspace
	Notifier notify.Notifier
}

// New creates an Orchestrator.
func New(deps Deps, log zerolog.Logger) *Orchestrator {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return &Orchestrator{
		cfg:      deps.Config,
		catalog:  deps.Catalog,
		state:    deps.State,
		history:  deps.History,
		ideas:    deps.Ideas,
		appgen:   deps.AppGen,
		reviewer: deps.Reviewer,
		fixer:    deps.Fixer,
		ws:       deps.Repo,
		notifier: notifier,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		log:      log.With().Str("component", "orchestrator").Logger(),
	}
}

// Run executes one full iteration. forceGenerate overrides the
// new-app day gate.
func (o *Orchestrator) Run(ctx context.Context, forceGenerate bool) (domain.RunSummary, error) {
	o.log.Info().Msg("starting run")
	summary := domain.RunSummary{Timestamp: o.now()}

	var runID string
	if o.history != nil {
		id, err := o.history.StartRun()
		if err != nil {
			o.log.Error().Err(err).Msg("recording run start failed")
		} else {
			runID = id
		}
	}

	if forceGenerate || o.isNewAppDay() {
		summary.NewApps = o.generateNewApps(ctx, runID)
	} else {
		o.log.Info().Int("new_app_day", o.cfg.Generation.NewAppDay).Msg("not new app day, skipping generation")
	}

	if o.catalog.Count() > 0 && o.cfg.Generation.BugFixesPerDay > 0 {
		summary.BugsFixed = o.fixBugs(ctx, runID)
	} else {
		o.log.Info().Msg("no existing apps to review yet")
	}

	// Per-item failures above are tolerated, but losing the run summary
	// or the hand-off artifacts fails the whole run.
	var synthErr error
	if err := o.state.RecordRun(summary); err != nil {
		o.log.Error().Err(err).Msg("recording run summary failed")
		synthErr = fmt.Errorf("recording run summary: %w", err)
	}
	if err := o.ws.FlushCommitMessage(CommitSubject(summary)); err != nil {
		o.log.Error().Err(err).Msg("writing commit message failed")
		if synthErr == nil {
			synthErr = fmt.Errorf("writing commit message: %w", err)
		}
	}
	if err := o.writeReport(summary); err != nil {
		o.log.Error().Err(err).Msg("writing summary report failed")
		if synthErr == nil {
			synthErr = fmt.Errorf("writing summary report: %w", err)
		}
	}

	status := domain.RunCompleted
	errMsg := ""
	if synthErr != nil {
		status = domain.RunFailed
		errMsg = synthErr.Error()
	}
	if o.history != nil && runID != "" {
		if err := o.history.FinishRun(runID, status, summary, errMsg); err != nil {
			o.log.Error().Err(err).Msg("recording run finish failed")
		}
	}
	if err := o.notifier.Send(notify.RunFinished(runID, summary, synthErr)); err != nil {
		o.log.Warn().Err(err).Msg("notification failed")
	}

	if synthErr != nil {
		return summary, synthErr
	}
	o.log.Info().Int("new_apps", len(summary.NewApps)).Int("bugs_fixed", len(summary.BugsFixed)).Msg("run completed")
	return summary, nil
}

// isNewAppDay matches today against the configured day, counted with
// Monday as day zero.
func (o *Orchestrator) isNewAppDay() bool {
	today := (int(o.now().Weekday()) + 6) % 7
	return today == o.cfg.Generation.NewAppDay
}

func (o *Orchestrator) generateNewApps(ctx context.Context, runID string) []string {
	var newApps []string

	for i := 0; i < o.cfg.Generation.NewAppsPerWeek; i++ {
		name, err := o.generateOneApp(ctx, runID)
		if err != nil {
			o.log.Error().Err(err).Msg("app generation failed")
			continue
		}
		newApps = append(newApps, name)
	}
	return newApps
}

func (o *Orchestrator) generateOneApp(ctx context.Context, runID string) (string, error) {
	category := SelectCategory(o.rng, o.cfg.Categories, o.state)
	if category == "" {
		return "", fmt.Errorf("no categories configured")
	}
	services := SelectServices(o.rng, o.cfg.Services)

	o.log.Info().Str("category", category).Strs("services", services).Msg("generating idea")
	idea := o.ideas.Generate(ctx, category, services)

	o.log.Info().Str("app", idea.Name).Msg("generating code")
	files, err := o.appgen.GenerateApp(ctx, idea)
	if err != nil {
		return "", fmt.Errorf("generating %q: %w", idea.Name, err)
	}

	appDir := fmt.Sprintf("%s/%s", category, domain.Slugify(idea.Name))
	if err := o.ws.WriteFiles(appDir, files); err != nil {
		return "", fmt.Errorf("writing %q: %w", idea.Name, err)
	}

	if err := o.catalog.Register(domain.Entry{
		Name:     idea.Name,
		Category: category,
		Path:     appDir,
		Services: idea.Services,
	}); err != nil {
		return "", err
	}
	if err := o.state.BumpCategory(category, idea.Name); err != nil {
		o.log.Error().Err(err).Msg("bumping category failed")
	}
	if err := o.state.IncrementStat(runstate.StatAppsGenerated, 1); err != nil {
		o.log.Error().Err(err).Msg("updating stats failed")
	}
	if o.history != nil && runID != "" {
		if err := o.history.RecordArtifact(runID, idea.Name, category, runlog.ArtifactApp, appDir); err != nil {
			o.log.Error().Err(err).Msg("recording artifact failed")
		}
	}

	o.ws.AddCommitLine("Add new app: %s (%s)", idea.Name, category)
	o.log.Info().Str("app", idea.Name).Str("path", appDir).Msg("generated app")
	return idea.Name, nil
}

func (o *Orchestrator) fixBugs(ctx context.Context, runID string) []string {
	var bugsFixed []string

	apps := o.catalog.All()
	sampleSize := o.cfg.Generation.BugFixesPerDay
	if sampleSize > len(apps) {
		sampleSize = len(apps)
	}
	o.rng.Shuffle(len(apps), func(i, j int) { apps[i], apps[j] = apps[j], apps[i] })

	for _, app := range apps[:sampleSize] {
		fixed := o.reviewAndFix(ctx, runID, app)
		if fixed > 0 {
			bugsFixed = append(bugsFixed, fmt.Sprintf("%s: %d bugs fixed", app.Name, fixed))
		}
	}
	return bugsFixed
}

func (o *Orchestrator) reviewAndFix(ctx context.Context, runID string, app domain.Entry) int {
	issues := o.reviewer.ReviewApp(ctx, app.Path)
	if len(issues) == 0 {
		return 0
	}

	fixes := o.fixer.FixIssues(ctx, app.Path, issues)
	if len(fixes) == 0 {
		return 0
	}

	if err := o.state.IncrementStat(runstate.StatBugsFixed, len(fixes)); err != nil {
		o.log.Error().Err(err).Msg("updating stats failed")
	}
	if o.history != nil && runID != "" {
		for _, path := range fixes {
			if err := o.history.RecordArtifact(runID, app.Name, app.Category, runlog.ArtifactFix, path); err != nil {
				o.log.Error().Err(err).Msg("recording artifact failed")
			}
		}
	}
	o.ws.AddCommitLine("Fix %d bugs in %s", len(fixes), app.Name)
	o.log.Info().Str("app", app.Name).Int("fixes", len(fixes)).Msg("fixed bugs")
	return len(fixes)
}
