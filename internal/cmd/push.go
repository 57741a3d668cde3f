package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pushfile/internal/logging"
	"pushfile/pkg/config"
	"pushfile/pkg/github"
	"pushfile/pkg/localfile"
)

// runner carries what one invocation needs to plan and push the file
type runner struct {
	lookup    config.LookupFunc
	logger    *logging.Logger
	inspector *localfile.Inspector
}

func newRunner(cmd *cobra.Command) (*runner, error) {
	lookup := env.lookup
	if envFile != "" {
		fileLookup, err := config.LoadEnvFile(envFile, lookup)
		if err != nil {
			return nil, &usageError{err: err}
		}
		lookup = fileLookup
	}

	runnerDebug, _ := lookup("RUNNER_DEBUG")
	logger, err := logging.NewLogger(logging.LevelFor(logLevel, runnerDebug), logFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, &usageError{err: err}
	}

	return &runner{
		lookup:    lookup,
		logger:    logger,
		inspector: localfile.NewInspector(env.fs),
	}, nil
}

// planned is a computed plan together with the reconciler that can apply it
type planned struct {
	config     *config.Config
	plan       *github.ReconciliationPlan
	reconciler github.Reconciler
}

// plan loads inputs, reads both copies of the file and decides the change.
// Inputs are validated before any request is made.
func (r *runner) plan(ctx context.Context) (*planned, error) {
	cfg, err := config.Load(r.lookup)
	if err != nil {
		return nil, err
	}

	local, err := r.inspector.Inspect(cfg.FilePath)
	if err != nil {
		return nil, err
	}
	local.Path = cfg.RemotePath()

	session, err := github.NewAuthManager(r.logger.Logger).
		Authenticate(ctx, cfg.Token, cfg.APIURL, cfg.Owner(), cfg.RepoName())
	if err != nil {
		return nil, err
	}

	branch, err := session.ResolveBranch(cfg.Branch)
	if err != nil {
		return nil, err
	}

	opts := github.Options{
		Branch:        branch,
		Message:       cfg.CommitMessage,
		AllowRemoving: cfg.AllowRemoving,
	}
	if cfg.Committer != nil {
		opts.Committer = &github.CommitAuthor{Name: cfg.Committer.Name, Email: cfg.Committer.Email}
	}

	reconciler := github.NewReconciler(session.Client, opts, r.logger.Logger)
	plan, err := reconciler.Plan(ctx, local)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("planned change",
		zap.String("repository", cfg.Repository),
		zap.String("path", plan.Path),
		zap.String("branch", plan.Branch),
		zap.String("type", string(plan.Type)))

	return &planned{config: cfg, plan: plan, reconciler: reconciler}, nil
}

func runPush(cmd *cobra.Command, _ []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = r.logger.Sync() }()

	ctx := cmd.Context()
	p, err := r.plan(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		printDryRun(out, p.plan)
		return nil
	}

	result, err := p.reconciler.Apply(ctx, p.plan)
	if err != nil {
		return fmt.Errorf("push to %s failed: %w", p.config.Repository, err)
	}

	printResult(out, result)
	return nil
}
