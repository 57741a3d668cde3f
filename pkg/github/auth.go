package github

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// AuthManager handles GitHub authentication
type AuthManager struct {
	logger *zap.Logger
}

// NewAuthManager creates a new authentication manager
func NewAuthManager(logger *zap.Logger) *AuthManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthManager{logger: logger}
}

// Session is an authenticated client scoped to one repository
type Session struct {
	Client        *Client
	Owner         string
	Repo          string
	DefaultBranch string
}

// Authenticate sets up a client with the provided token and validates it
// against the target repository. A rejected token yields an ErrorTypeAuth error.
func (am *AuthManager) Authenticate(ctx context.Context, token, apiURL, owner, repo string) (*Session, error) {
	if token == "" {
		return nil, NewGitHubError(ErrorTypeAuth, "GitHub token cannot be empty", nil)
	}

	client, err := NewClient(token, apiURL, owner, repo, am.logger)
	if err != nil {
		return nil, err
	}

	return am.validate(ctx, client)
}

// validate reads the repository with the client's credentials. Installation
// tokens cannot read /user, so the repository itself is the probe.
func (am *AuthManager) validate(ctx context.Context, client *Client) (*Session, error) {
	repository, err := client.GetRepository(ctx)
	if err != nil {
		if IsAuthError(err) {
			am.logger.Debug("token rejected", zap.String("repository", client.Owner()+"/"+client.Repo()))
		}
		return nil, err
	}

	am.logger.Debug("authenticated",
		zap.String("repository", repository.GetFullName()),
		zap.String("default_branch", repository.GetDefaultBranch()))

	return &Session{
		Client:        client,
		Owner:         client.Owner(),
		Repo:          client.Repo(),
		DefaultBranch: repository.GetDefaultBranch(),
	}, nil
}

// ResolveBranch returns branch, or the repository default branch when branch is empty
func (s *Session) ResolveBranch(branch string) (string, error) {
	if branch != "" {
		return branch, nil
	}
	if s.DefaultBranch == "" {
		return "", fmt.Errorf("branch input is empty and %s/%s reports no default branch", s.Owner, s.Repo)
	}
	return s.DefaultBranch, nil
}

// GetAuthInstructions returns instructions for setting up GitHub authentication
func GetAuthInstructions() string {
	return `GitHub authentication failed. Check the github-token input of the step:

1. In a workflow, pass the built-in token and grant it write access:

   permissions:
     contents: write
   steps:
     - uses: <this action>
       with:
         github-token: ${{ secrets.GITHUB_TOKEN }}

2. To push to another repository, use a fine-grained personal access token
   with "Contents: Read and write" on that repository, stored as a secret.`
}
