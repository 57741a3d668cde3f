package github

import (
	"context"

	"pushfile/pkg/localfile"
)

// ContentsAPI defines the repository contents operations the reconciler needs
type ContentsAPI interface {
	// GetFile reads a file at ref. A missing file is returned with Exists=false, not an error.
	GetFile(ctx context.Context, path, ref string) (*RemoteFile, error)
	CreateFile(ctx context.Context, path string, change FileChange) (*Commit, error)
	UpdateFile(ctx context.Context, path string, change FileChange) (*Commit, error)
	DeleteFile(ctx context.Context, path string, change FileChange) (*Commit, error)
}

// Reconciler defines the interface for state reconciliation operations
type Reconciler interface {
	Plan(ctx context.Context, local *localfile.LocalFile) (*ReconciliationPlan, error)
	Apply(ctx context.Context, plan *ReconciliationPlan) (*Result, error)
}

// ChangeType represents the type of change in a reconciliation plan
type ChangeType string

const (
	ChangeTypeNone   ChangeType = "none"
	ChangeTypeCreate ChangeType = "create"
	ChangeTypeUpdate ChangeType = "update"
	ChangeTypeDelete ChangeType = "delete"
)

// ReconciliationPlan represents the single change needed to make the remote file match the local one
type ReconciliationPlan struct {
	Type   ChangeType           `json:"type" yaml:"type"`
	Path   string               `json:"path" yaml:"path"`
	Branch string               `json:"branch" yaml:"branch"`
	Local  *localfile.LocalFile `json:"local" yaml:"local"`
	Remote *RemoteFile          `json:"remote" yaml:"remote"`
}

// HasChanges reports whether applying the plan writes anything
func (p *ReconciliationPlan) HasChanges() bool {
	return p != nil && p.Type != ChangeTypeNone
}

// Result is the outcome of applying a plan
type Result struct {
	Type   ChangeType `json:"type" yaml:"type"`
	Path   string     `json:"path" yaml:"path"`
	Branch string     `json:"branch" yaml:"branch"`
	Commit *Commit    `json:"commit,omitempty" yaml:"commit,omitempty"`
}
