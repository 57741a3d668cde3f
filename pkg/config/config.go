package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Action inputs and runner variables read by pushfile
const (
	KeyToken          = "INPUT_GITHUB-TOKEN"
	KeyBranch         = "INPUT_BRANCH"
	KeyFilePath       = "INPUT_FILE-PATH"
	KeyCommitMessage  = "INPUT_COMMIT-MSG"
	KeyAllowRemoving  = "INPUT_ALLOW-REMOVING"
	KeyRepository     = "GITHUB_REPOSITORY"
	KeyCommitterName  = "INPUT_COMMITTER-NAME"
	KeyCommitterEmail = "INPUT_COMMITTER-EMAIL"
	KeyAPIURL         = "GITHUB_API_URL"
)

// DefaultAPIURL is used when GITHUB_API_URL is unset
const DefaultAPIURL = "https://api.github.com/"

// LookupFunc resolves a configuration key, reporting whether it is set
type LookupFunc func(key string) (string, bool)

// Config represents the inputs of a single push
type Config struct {
	Token         string     `json:"-" yaml:"-"`
	Branch        string     `json:"branch" yaml:"branch"`
	FilePath      string     `json:"file_path" yaml:"file_path"`
	CommitMessage string     `json:"commit_message" yaml:"commit_message"`
	AllowRemoving bool       `json:"allow_removing" yaml:"allow_removing"`
	Repository    string     `json:"repository" yaml:"repository"`
	Committer     *Committer `json:"committer,omitempty" yaml:"committer,omitempty"`
	APIURL        string     `json:"api_url" yaml:"api_url"`
}

// Committer overrides the identity recorded on pushed commits
type Committer struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// MissingInputError is returned when a required key is unset or empty
type MissingInputError struct {
	Key string
}

// Error implements the error interface
func (e *MissingInputError) Error() string {
	return fmt.Sprintf("No input: %s", e.Key)
}

// InvalidInputError is returned when a key holds an unusable value
type InvalidInputError struct {
	Key    string
	Value  string
	Reason string
}

// Error implements the error interface
func (e *InvalidInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Invalid input %s=%q: %s", e.Key, e.Value, e.Reason)
	}
	return fmt.Sprintf("Invalid input %s=%q", e.Key, e.Value)
}

// Load builds a Config from lookup. Keys are checked in a fixed order and the
// first problem is returned.
func Load(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	var err error

	if cfg.Token, err = required(lookup, KeyToken, true); err != nil {
		return nil, err
	}
	// An empty branch is allowed and means the repository default branch
	if cfg.Branch, err = required(lookup, KeyBranch, false); err != nil {
		return nil, err
	}
	if cfg.FilePath, err = required(lookup, KeyFilePath, true); err != nil {
		return nil, err
	}
	if remote := cfg.RemotePath(); remote == "" || remote == "." || remote == ".." || strings.HasPrefix(remote, "../") {
		return nil, &InvalidInputError{Key: KeyFilePath, Value: cfg.FilePath, Reason: "must name a file inside the repository"}
	}
	if cfg.CommitMessage, err = required(lookup, KeyCommitMessage, true); err != nil {
		return nil, err
	}

	allowRemoving, err := required(lookup, KeyAllowRemoving, false)
	if err != nil {
		return nil, err
	}
	if cfg.AllowRemoving, err = parseBool(KeyAllowRemoving, allowRemoving); err != nil {
		return nil, err
	}

	if cfg.Repository, err = required(lookup, KeyRepository, true); err != nil {
		return nil, err
	}
	if _, _, err := splitRepository(cfg.Repository); err != nil {
		return nil, err
	}

	if cfg.Committer, err = loadCommitter(lookup); err != nil {
		return nil, err
	}

	cfg.APIURL = DefaultAPIURL
	if apiURL, ok := lookup(KeyAPIURL); ok && strings.TrimSpace(apiURL) != "" {
		cfg.APIURL = strings.TrimSpace(apiURL)
	}

	return cfg, nil
}

// Owner returns the owner half of Repository
func (c *Config) Owner() string {
	owner, _, _ := splitRepository(c.Repository)
	return owner
}

// RepoName returns the name half of Repository
func (c *Config) RepoName() string {
	_, name, _ := splitRepository(c.Repository)
	return name
}

// RemotePath returns FilePath as a repository path: slash separated, cleaned,
// without a leading "./" or "/"
func (c *Config) RemotePath() string {
	p := path.Clean(filepath.ToSlash(c.FilePath))
	return strings.TrimPrefix(p, "/")
}

// required reads key, failing when it is unset, or empty if nonEmpty is set
func required(lookup LookupFunc, key string, nonEmpty bool) (string, error) {
	value, ok := lookup(key)
	if !ok {
		return "", &MissingInputError{Key: key}
	}
	if nonEmpty && strings.TrimSpace(value) == "" {
		return "", &MissingInputError{Key: key}
	}
	return value, nil
}

func parseBool(key, value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &InvalidInputError{Key: key, Value: value, Reason: `must be "true" or "false"`}
	}
}

func splitRepository(repository string) (string, string, error) {
	owner, name, found := strings.Cut(repository, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", &InvalidInputError{Key: KeyRepository, Value: repository, Reason: "expected owner/name"}
	}
	return owner, name, nil
}

func loadCommitter(lookup LookupFunc) (*Committer, error) {
	name, _ := lookup(KeyCommitterName)
	email, _ := lookup(KeyCommitterEmail)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name == "" && email == "":
		return nil, nil
	case name == "":
		return nil, &InvalidInputError{Key: KeyCommitterName, Value: name, Reason: "required when " + KeyCommitterEmail + " is set"}
	case email == "":
		return nil, &InvalidInputError{Key: KeyCommitterEmail, Value: email, Reason: "required when " + KeyCommitterName + " is set"}
	default:
		return &Committer{Name: name, Email: email}, nil
	}
}

// EnvLookup reads the process environment
func EnvLookup() LookupFunc {
	return os.LookupEnv
}

// LoadEnvFile reads a dotenv file and returns a lookup that prefers base and
// falls back to the file's values. dotenv names cannot contain dashes, so
// INPUT_FILE-PATH may be written as INPUT_FILE_PATH in the file.
func LoadEnvFile(path string, base LookupFunc) (LookupFunc, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	return func(key string) (string, bool) {
		if value, ok := base(key); ok {
			return value, true
		}
		if value, ok := values[key]; ok {
			return value, true
		}
		value, ok := values[strings.ReplaceAll(key, "-", "_")]
		return value, ok
	}, nil
}

// MapLookup serves keys from a map
func MapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
