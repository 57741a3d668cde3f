package github

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"pushfile/pkg/localfile"
)

// Options configures what the reconciler writes and whether it may delete
type Options struct {
	Branch        string
	Message       string
	AllowRemoving bool
	Committer     *CommitAuthor
}

// reconciler implements the Reconciler interface
type reconciler struct {
	client ContentsAPI
	opts   Options
	logger *zap.Logger
}

// NewReconciler creates a new reconciler instance
func NewReconciler(client ContentsAPI, opts Options, logger *zap.Logger) Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reconciler{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// Decide picks the change that makes the remote file match the local one.
// It fails with RemovalNotAllowedError when only the remote copy exists and
// removal is disabled.
func Decide(local *localfile.LocalFile, remote *RemoteFile, allowRemoving bool) (ChangeType, error) {
	localExists := local != nil && local.Exists
	remoteExists := remote != nil && remote.Exists

	switch {
	case !localExists && !remoteExists:
		return ChangeTypeNone, nil
	case !localExists:
		if !allowRemoving {
			return "", &RemovalNotAllowedError{Path: remote.Path}
		}
		return ChangeTypeDelete, nil
	case !remoteExists:
		return ChangeTypeCreate, nil
	case bytes.Equal(local.Content, remote.Content):
		return ChangeTypeNone, nil
	default:
		return ChangeTypeUpdate, nil
	}
}

// Plan reads the remote file once and compares it with local
func (r *reconciler) Plan(ctx context.Context, local *localfile.LocalFile) (*ReconciliationPlan, error) {
	if local == nil {
		return nil, fmt.Errorf("local file state is required")
	}

	remote, err := r.client.GetFile(ctx, local.Path, r.opts.Branch)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote %s: %w", local.Path, err)
	}

	r.logger.Debug("compared file states",
		zap.String("path", local.Path),
		zap.String("branch", r.opts.Branch),
		zap.Bool("local_exists", local.Exists),
		zap.Int("local_size", local.Size()),
		zap.Bool("remote_exists", remote.Exists),
		zap.Int("remote_size", remote.Size()),
		zap.String("remote_sha", remote.SHA))

	changeType, err := Decide(local, remote, r.opts.AllowRemoving)
	if err != nil {
		return nil, err
	}

	return &ReconciliationPlan{
		Type:   changeType,
		Path:   local.Path,
		Branch: r.opts.Branch,
		Local:  local,
		Remote: remote,
	}, nil
}

// Apply executes the reconciliation plan with at most one write
func (r *reconciler) Apply(ctx context.Context, plan *ReconciliationPlan) (*Result, error) {
	if plan == nil {
		return nil, fmt.Errorf("reconciliation plan is required")
	}

	result := &Result{
		Type:   plan.Type,
		Path:   plan.Path,
		Branch: plan.Branch,
	}

	change := FileChange{
		Message:   r.opts.Message,
		Branch:    plan.Branch,
		Committer: r.opts.Committer,
	}

	var (
		commit *Commit
		err    error
	)

	switch plan.Type {
	case ChangeTypeNone:
		return result, nil

	case ChangeTypeCreate:
		change.Content = plan.Local.Content
		commit, err = r.client.CreateFile(ctx, plan.Path, change)

	case ChangeTypeUpdate:
		change.Content = plan.Local.Content
		change.SHA = plan.Remote.SHA
		commit, err = r.client.UpdateFile(ctx, plan.Path, change)

	case ChangeTypeDelete:
		change.SHA = plan.Remote.SHA
		commit, err = r.client.DeleteFile(ctx, plan.Path, change)

	default:
		return nil, fmt.Errorf("unsupported change type: %s", plan.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", plan.Type, plan.Path, err)
	}

	r.logger.Info("pushed change",
		zap.String("type", string(plan.Type)),
		zap.String("path", plan.Path),
		zap.String("branch", plan.Branch),
		zap.String("commit", commit.SHA))

	result.Commit = commit
	return result, nil
}
