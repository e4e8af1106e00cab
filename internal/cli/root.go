// Package cli wires the gh next-release command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ryo246912/gh-next-release/internal/config"
	"github.com/ryo246912/gh-next-release/internal/github"
	"github.com/ryo246912/gh-next-release/internal/gitlab"
	"github.com/ryo246912/gh-next-release/internal/logging"
	"github.com/ryo246912/gh-next-release/internal/models"
	"github.com/ryo246912/gh-next-release/internal/service"
	"github.com/ryo246912/gh-next-release/internal/ui"
)

type options struct {
	configFile string
	envFile    string
	branch     string
	rule       string
	platform   string
	bot        string
	format     string
	logLevel   string
}

// ClientFactory builds the hosting client for a platform
type ClientFactory func(cfg *config.Config, platform models.Platform, log *zap.SugaredLogger) (github.HostingClient, error)

// app holds the collaborators of a command run
type app struct {
	prompter    ui.Prompter
	currentRepo func() (models.Repository, error)
	newClient   ClientFactory
}

// NewCommand creates the root command with the real collaborators
func NewCommand() *cobra.Command {
	return newCommand(&app{
		prompter:    &ui.DefaultPrompter{},
		currentRepo: currentRepository,
		newClient:   newHostingClient,
	})
}

func newCommand(a *app) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "next-release [project | owner/repo]",
		Short: "Show what the next release would contain",
		Long: `Show the pull requests merged into the stable branch since the latest
published release, together with the combined commit status of the branch head.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args)
		},
		SilenceUsage: true,
	}

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "path to config file (default "+config.DefaultPath()+")")
	f.StringVar(&opts.envFile, "env-file", ".env", "path to .env file")
	f.StringVarP(&opts.branch, "branch", "b", "", "stable branch name")
	f.StringVar(&opts.rule, "rule", "", "stable branch rule: explicit, default or newest")
	f.StringVar(&opts.platform, "platform", "", "hosting platform: github or gitlab")
	f.StringVar(&opts.bot, "bot", "", "login of the release automation account to ignore")
	f.StringVarP(&opts.format, "format", "o", "", "output format: text, json or yaml")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	return cmd
}

func (a *app) run(ctx context.Context, stdout, stderr io.Writer, opts *options, args []string) error {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.format != "" {
		if err := config.ValidateFormat(opts.format); err != nil {
			return err
		}
		cfg.Output.Format = opts.format
	}
	if opts.bot != "" {
		cfg.BotLogin = opts.bot
	}

	log, err := logging.New(cfg.Log.Level, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Debugw("loaded config", "file", cfg.File, "projects", len(cfg.Projects))

	pc, err := a.selectProject(cfg, opts, args)
	if err != nil {
		return err
	}
	project, err := pc.Project()
	if err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}
	log.Infow("resolving next release",
		"repository", project.Repository.FullName(),
		"platform", project.Platform,
		"branch_rule", project.BranchRule,
		"stable_branch", project.StableBranch,
	)

	client, err := a.newClient(cfg, project.Platform, log)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", project.Platform, err)
	}

	resolver := service.NewNextReleaseResolverForClient(client, service.WithBotLogin(cfg.BotLogin))
	next, err := resolver.Resolve(ctx, project)
	if err != nil {
		return describe(err)
	}

	return ui.RenderNextRelease(stdout, next, cfg.Output.Format)
}

// selectProject picks the project from the argument, the config or the
// current git repository, then applies flag overrides.
func (a *app) selectProject(cfg *config.Config, opts *options, args []string) (config.ProjectConfig, error) {
	var pc config.ProjectConfig

	switch {
	case len(args) == 1:
		if found, ok := cfg.FindProject(args[0]); ok {
			pc = found
		} else {
			pc = config.ProjectConfig{Repository: args[0]}
		}
	case len(cfg.Projects) == 1:
		pc = cfg.Projects[0]
	case len(cfg.Projects) > 1:
		idx, err := a.prompter.SelectProject(cfg.Projects)
		if err != nil {
			return pc, fmt.Errorf("failed to select project: %w", err)
		}
		if idx < 0 || idx >= len(cfg.Projects) {
			return pc, fmt.Errorf("invalid project selection %d", idx)
		}
		pc = cfg.Projects[idx]
	default:
		repo, err := a.currentRepo()
		if err != nil {
			return pc, fmt.Errorf("failed to get current repository: %w", err)
		}
		pc = config.ProjectConfig{Repository: repo.FullName()}
	}

	if opts.branch != "" {
		pc.StableBranch = opts.branch
		if opts.rule == "" {
			pc.BranchRule = string(models.BranchRuleExplicit)
		}
	}
	if opts.rule != "" {
		pc.BranchRule = opts.rule
	}
	if opts.platform != "" {
		pc.Platform = opts.platform
	}
	return pc, nil
}

// describe turns resolver failures into messages for the terminal
func describe(err error) error {
	var noPRs *service.NoPullRequestsMergedSinceLastReleaseError
	if errors.As(err, &noPRs) {
		return fmt.Errorf("nothing to release: %w", err)
	}
	var cannot *service.CannotDetermineNextReleaseError
	if errors.As(err, &cannot) {
		return err
	}
	return fmt.Errorf("failed to resolve next release: %w", err)
}

func currentRepository() (models.Repository, error) {
	repo, err := repository.Current()
	if err != nil {
		return models.Repository{}, err
	}
	return models.Repository{Owner: repo.Owner, Name: repo.Name}, nil
}

func newHostingClient(cfg *config.Config, platform models.Platform, log *zap.SugaredLogger) (github.HostingClient, error) {
	if platform == models.PlatformGitLab {
		client, err := gitlab.NewClient(cfg.GitLab.Token,
			gitlab.WithBaseURL(cfg.GitLab.BaseURL),
			gitlab.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}),
			gitlab.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := github.NewClient(api.ClientOptions{
		Host:      cfg.GitHub.Host,
		AuthToken: cfg.GitHub.Token,
		Timeout:   cfg.HTTP.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewCommand().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
