package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultAPIURL is the public GitHub REST endpoint
const DefaultAPIURL = "https://api.github.com/"

// Client implements the ContentsAPI interface using the GitHub REST API
type Client struct {
	client *github.Client
	owner  string
	repo   string
	logger *zap.Logger
}

// NewClient creates a new GitHub API client scoped to owner/repo.
// An empty apiURL selects DefaultAPIURL.
func NewClient(token, apiURL, owner, repo string, logger *zap.Logger) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return newClient(tc, apiURL, owner, repo, logger)
}

func newClient(hc *http.Client, apiURL, owner, repo string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	gh := github.NewClient(hc)
	if apiURL != "" && apiURL != DefaultAPIURL {
		baseURL, err := parseAPIURL(apiURL)
		if err != nil {
			return nil, err
		}
		gh.BaseURL = baseURL
	}

	return &Client{
		client: gh,
		owner:  owner,
		repo:   repo,
		logger: logger,
	}, nil
}

// parseAPIURL validates an API endpoint and adds the trailing slash go-github requires
func parseAPIURL(apiURL string) (*url.URL, error) {
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid GitHub API URL %q: scheme must be http or https", apiURL)
	}
	return u, nil
}

// Owner returns the repository owner the client is scoped to
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name the client is scoped to
func (c *Client) Repo() string { return c.repo }

// GetRepository retrieves the repository the client is scoped to
func (c *Client) GetRepository(ctx context.Context) (*github.Repository, error) {
	repo, resp, err := c.client.Repositories.Get(ctx, c.owner, c.repo)
	c.observe(resp)
	if err != nil {
		return nil, c.wrap(err, fmt.Sprintf("repository %s/%s", c.owner, c.repo))
	}
	return repo, nil
}

// GetFile retrieves a file and its blob SHA at the given ref
func (c *Client) GetFile(ctx context.Context, path, ref string) (*RemoteFile, error) {
	resource := c.fileResource(path, ref)
	opts := &github.RepositoryContentGetOptions{Ref: ref}

	fileContent, dirContent, resp, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path, opts)
	c.observe(resp)
	if err != nil {
		if IsNotFound(err) {
			// The contents API answers 404 for a missing ref too
			if ref != "" {
				if err := c.ensureBranch(ctx, ref); err != nil {
					return nil, err
				}
			}
			c.logger.Debug("remote file not found", zap.String("path", path), zap.String("ref", ref))
			return &RemoteFile{Path: path, Ref: ref, Exists: false}, nil
		}
		return nil, c.wrap(err, resource)
	}

	if fileContent == nil {
		if dirContent != nil {
			return nil, NewGitHubError(ErrorTypeValidation, fmt.Sprintf("%s is a directory, not a file", path), nil)
		}
		return &RemoteFile{Path: path, Ref: ref, Exists: false}, nil
	}

	if t := fileContent.GetType(); t != "" && t != "file" {
		return nil, NewGitHubError(ErrorTypeValidation, fmt.Sprintf("%s is a %s, not a file", path, t), nil)
	}

	content, err := c.decodeContent(ctx, fileContent)
	if err != nil {
		return nil, c.wrap(err, resource)
	}

	return &RemoteFile{
		Path:    path,
		Ref:     ref,
		Exists:  true,
		SHA:     fileContent.GetSHA(),
		Content: content,
	}, nil
}

// ensureBranch fails with an ErrorTypeNotFound error when branch does not exist
func (c *Client) ensureBranch(ctx context.Context, branch string) error {
	_, resp, err := c.client.Repositories.GetBranch(ctx, c.owner, c.repo, branch, 0)
	c.observe(resp)
	if err == nil {
		return nil
	}
	if IsNotFound(err) || resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound {
		ghErr := NewGitHubError(ErrorTypeNotFound,
			fmt.Sprintf("Branch %s does not exist in %s/%s", branch, c.owner, c.repo), err)
		ghErr.Resource = "branch " + branch
		ghErr.StatusCode = http.StatusNotFound
		return ghErr
	}
	return c.wrap(err, "branch "+branch)
}

// decodeContent returns the raw bytes of a contents API entry. Files over the
// inline size limit come back with encoding "none" and are fetched as a raw blob.
func (c *Client) decodeContent(ctx context.Context, fc *github.RepositoryContent) ([]byte, error) {
	if fc.GetEncoding() == "none" {
		c.logger.Debug("fetching large file as raw blob",
			zap.String("sha", fc.GetSHA()),
			zap.Int("size", fc.GetSize()))

		blob, resp, err := c.client.Git.GetBlobRaw(ctx, c.owner, c.repo, fc.GetSHA())
		c.observe(resp)
		if err != nil {
			return nil, err
		}
		return blob, nil
	}

	content, err := fc.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}
	return []byte(content), nil
}

// CreateFile creates a new file on change.Branch
func (c *Client) CreateFile(ctx context.Context, path string, change FileChange) (*Commit, error) {
	res, resp, err := c.client.Repositories.CreateFile(ctx, c.owner, c.repo, escapePath(path), buildFileOptions(change, true))
	c.observe(resp)
	if err != nil {
		return nil, c.wrap(err, c.fileResource(path, change.Branch))
	}
	return convertCommit(res), nil
}

// UpdateFile replaces an existing file. change.SHA must be the blob SHA that was
// read; the API rejects the write if the file moved on since.
func (c *Client) UpdateFile(ctx context.Context, path string, change FileChange) (*Commit, error) {
	if change.SHA == "" {
		return nil, fmt.Errorf("update of %s requires the current blob SHA", path)
	}

	res, resp, err := c.client.Repositories.UpdateFile(ctx, c.owner, c.repo, escapePath(path), buildFileOptions(change, true))
	c.observe(resp)
	if err != nil {
		return nil, c.wrap(err, c.fileResource(path, change.Branch))
	}
	return convertCommit(res), nil
}

// DeleteFile removes an existing file. change.SHA must be the blob SHA that was read.
func (c *Client) DeleteFile(ctx context.Context, path string, change FileChange) (*Commit, error) {
	if change.SHA == "" {
		return nil, fmt.Errorf("delete of %s requires the current blob SHA", path)
	}

	res, resp, err := c.client.Repositories.DeleteFile(ctx, c.owner, c.repo, escapePath(path), buildFileOptions(change, false))
	c.observe(resp)
	if err != nil {
		return nil, c.wrap(err, c.fileResource(path, change.Branch))
	}
	return convertCommit(res), nil
}

// buildFileOptions builds the contents API request body from a FileChange
func buildFileOptions(change FileChange, withContent bool) *github.RepositoryContentFileOptions {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(change.Message),
	}

	if withContent {
		// A nil slice would be sent as null, which the API rejects for empty files
		opts.Content = change.Content
		if opts.Content == nil {
			opts.Content = []byte{}
		}
	}

	if change.SHA != "" {
		opts.SHA = github.String(change.SHA)
	}

	if change.Branch != "" {
		opts.Branch = github.String(change.Branch)
	}

	if change.Committer != nil {
		opts.Committer = &github.CommitAuthor{
			Name:  github.String(change.Committer.Name),
			Email: github.String(change.Committer.Email),
		}
	}

	return opts
}

// convertCommit extracts the commit from a contents API write response
func convertCommit(res *github.RepositoryContentResponse) *Commit {
	if res == nil {
		return &Commit{}
	}
	return &Commit{SHA: res.Commit.GetSHA()}
}

// escapePath escapes each segment of a repository path. The contents write
// endpoints put the path into the URL unescaped, so "?", "#" and "%" in a file
// name would otherwise change the request target.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func (c *Client) fileResource(path, ref string) string {
	return fmt.Sprintf("file %s in %s/%s@%s", path, c.owner, c.repo, ref)
}

// wrap converts err to a GitHubError and surfaces rate limit hits
func (c *Client) wrap(err error, resource string) *GitHubError {
	ghErr := WrapGitHubError(err, resource)
	if ghErr.Type == ErrorTypeRateLimit {
		c.logger.Warn("request quota exhausted",
			zap.String("resource", resource),
			zap.String("detail", ghErr.Message))
	}
	return ghErr
}

// observe logs the rate limit state reported with each response
func (c *Client) observe(resp *github.Response) {
	if resp == nil || resp.Response == nil || resp.Request == nil {
		return
	}
	c.logger.Debug("github api response",
		zap.String("method", resp.Request.Method),
		zap.String("url", resp.Request.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("rate_remaining", resp.Rate.Remaining))
}
