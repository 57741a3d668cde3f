package github

// ShortSHALength is the number of commit SHA characters shown in status lines
const ShortSHALength = 7

// RemoteFile represents a file as stored on a repository branch
type RemoteFile struct {
	Path   string `json:"path" yaml:"path"`
	Ref    string `json:"ref" yaml:"ref"`
	Exists bool   `json:"exists" yaml:"exists"`
	// SHA is the blob SHA, required by the API to update or delete the file
	SHA     string `json:"sha,omitempty" yaml:"sha,omitempty"`
	Content []byte `json:"-" yaml:"-"`
}

// Size returns the content length in bytes
func (f *RemoteFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Content)
}

// CommitAuthor identifies the committer recorded on pushed commits
type CommitAuthor struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// FileChange describes a single write against the contents API
type FileChange struct {
	Message   string
	Content   []byte
	SHA       string
	Branch    string
	Committer *CommitAuthor
}

// Commit is the commit created by a contents API write
type Commit struct {
	SHA string `json:"sha" yaml:"sha"`
}

// ShortSHA returns the abbreviated commit SHA
func (c Commit) ShortSHA() string {
	if len(c.SHA) <= ShortSHALength {
		return c.SHA
	}
	return c.SHA[:ShortSHALength]
}
