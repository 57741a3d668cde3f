// Package testutil provides an in-memory GitHub contents API for tests.
package testutil

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeGitHub serves the subset of the REST API used to push a file:
// repository and branch lookup, contents read/create/update/delete and raw
// blob reads.
type FakeGitHub struct {
	Server *httptest.Server

	Owner         string
	Repo          string
	Token         string
	DefaultBranch string

	// InlineLimit makes files larger than this many bytes come back with
	// encoding "none", like the real API does above 1 MB. Zero disables it.
	InlineLimit int

	mu       sync.Mutex
	files    map[string]fakeFile // key: branch + ":" + path
	blobs    map[string][]byte
	branches map[string]bool
	calls    []string
	writes   []WriteRequest
	commits  int
	failOn   map[string]int
}

type fakeFile struct {
	content []byte
	sha     string
}

// WriteRequest is a decoded create/update/delete body
type WriteRequest struct {
	Method    string
	Path      string
	Message   string `json:"message"`
	Content   []byte `json:"content"`
	SHA       string `json:"sha"`
	Branch    string `json:"branch"`
	Committer *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"committer"`
}

// NewFakeGitHub starts a fake API for owner/repo accepting token
func NewFakeGitHub(t *testing.T, owner, repo, token string) *FakeGitHub {
	t.Helper()

	f := &FakeGitHub{
		Owner:         owner,
		Repo:          repo,
		Token:         token,
		DefaultBranch: "main",
		files:         make(map[string]fakeFile),
		blobs:         make(map[string][]byte),
		branches:      make(map[string]bool),
		failOn:        make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)

	return f
}

// URL returns the API base URL to configure clients with
func (f *FakeGitHub) URL() string {
	return f.Server.URL + "/"
}

// PutFile seeds a file on branch
func (f *FakeGitHub) PutFile(branch, path string, content []byte) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store(branch, path, content)
}

// AddBranch creates an empty branch. The default branch and any branch
// seeded with PutFile always exist.
func (f *FakeGitHub) AddBranch(branch string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.branches[branch] = true
}

// File returns the current content of path on branch
func (f *FakeGitHub) File(branch, path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[branch+":"+path]
	return file.content, ok
}

// FileSHA returns the blob SHA of path on branch
func (f *FakeGitHub) FileSHA(branch, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[branch+":"+path].sha
}

// FailNext makes the next request matching "METHOD /path" answer with status
func (f *FakeGitHub) FailNext(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[method+" "+path] = status
}

// Calls returns every request as "METHOD /path"
func (f *FakeGitHub) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Writes returns every create/update/delete request received
func (f *FakeGitHub) Writes() []WriteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]WriteRequest(nil), f.writes...)
}

// CommitSHA returns the commit SHA the fake assigns to the n-th write (1-based)
func CommitSHA(n int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("commit-%d", n)))
	return hex.EncodeToString(sum[:])
}

// BlobSHA computes the git blob SHA of content
func BlobSHA(content []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func (f *FakeGitHub) store(branch, path string, content []byte) string {
	sha := BlobSHA(content)
	f.files[branch+":"+path] = fakeFile{content: append([]byte(nil), content...), sha: sha}
	f.blobs[sha] = append([]byte(nil), content...)
	f.branches[branch] = true
	return sha
}

func (f *FakeGitHub) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, key)
	w.Header().Set("Content-Type", "application/json")

	if r.Header.Get("Authorization") != "Bearer "+f.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		return
	}

	if status, ok := f.failOn[key]; ok {
		delete(f.failOn, key)
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
		return
	}

	repoPrefix := fmt.Sprintf("/repos/%s/%s", f.Owner, f.Repo)
	switch {
	case r.URL.Path == repoPrefix && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":           f.Repo,
			"full_name":      f.Owner + "/" + f.Repo,
			"default_branch": f.DefaultBranch,
		})

	case strings.HasPrefix(r.URL.Path, repoPrefix+"/contents/"):
		f.handleContents(w, r, strings.TrimPrefix(r.URL.Path, repoPrefix+"/contents/"))

	case strings.HasPrefix(r.URL.Path, repoPrefix+"/branches/") && r.Method == http.MethodGet:
		branch := strings.TrimPrefix(r.URL.Path, repoPrefix+"/branches/")
		if branch != f.DefaultBranch && !f.branches[branch] {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Branch not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":   branch,
			"commit": map[string]interface{}{"sha": CommitSHA(f.commits)},
		})

	case strings.HasPrefix(r.URL.Path, repoPrefix+"/git/blobs/") && r.Method == http.MethodGet:
		blob, ok := f.blobs[strings.TrimPrefix(r.URL.Path, repoPrefix+"/git/blobs/")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		w.Header().Set("Content-Type", "application/vnd.github.raw")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(blob)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	}
}

func (f *FakeGitHub) handleContents(w http.ResponseWriter, r *http.Request, path string) {
	if r.Method == http.MethodGet {
		ref := r.URL.Query().Get("ref")
		if ref == "" {
			ref = f.DefaultBranch
		}
		file, ok := f.files[ref+":"+path]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}

		body := map[string]interface{}{
			"type":     "file",
			"name":     path[strings.LastIndex(path, "/")+1:],
			"path":     path,
			"sha":      file.sha,
			"size":     len(file.content),
			"encoding": "base64",
			"content":  wrapBase64(file.content),
		}
		if f.InlineLimit > 0 && len(file.content) > f.InlineLimit {
			body["encoding"] = "none"
			body["content"] = ""
		}
		writeJSON(w, http.StatusOK, body)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	req := WriteRequest{Method: r.Method, Path: path}
	if err := json.Unmarshal(raw, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	f.writes = append(f.writes, req)

	branch := req.Branch
	if branch == "" {
		branch = f.DefaultBranch
	}
	existing, exists := f.files[branch+":"+path]

	switch r.Method {
	case http.MethodPut:
		if exists && req.SHA == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid request.\n\n\"sha\" wasn't supplied."})
			return
		}
		if exists && req.SHA != existing.sha || !exists && req.SHA != "" {
			writeJSON(w, http.StatusConflict, map[string]string{"message": fmt.Sprintf("%s does not match %s", path, req.SHA)})
			return
		}
		status := http.StatusOK
		if !exists {
			status = http.StatusCreated
		}
		sha := f.store(branch, path, req.Content)
		f.commits++
		writeJSON(w, status, map[string]interface{}{
			"content": map[string]interface{}{"path": path, "sha": sha},
			"commit":  map[string]interface{}{"sha": CommitSHA(f.commits), "message": req.Message},
		})

	case http.MethodDelete:
		if !exists {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		if req.SHA != existing.sha {
			writeJSON(w, http.StatusConflict, map[string]string{"message": fmt.Sprintf("%s does not match %s", path, req.SHA)})
			return
		}
		delete(f.files, branch+":"+path)
		f.commits++
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"content": nil,
			"commit":  map[string]interface{}{"sha": CommitSHA(f.commits), "message": req.Message},
		})

	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method Not Allowed"})
	}
}

// wrapBase64 encodes like the API does, with a newline every 60 characters
func wrapBase64(content []byte) string {
	encoded := base64.StdEncoding.EncodeToString(content)
	var sb strings.Builder
	for len(encoded) > 60 {
		sb.WriteString(encoded[:60])
		sb.WriteByte('\n')
		encoded = encoded[60:]
	}
	sb.WriteString(encoded)
	sb.WriteByte('\n')
	return sb.String()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
