// Package github pushes a single local file to a GitHub repository branch.
// It wraps the REST contents API and decides, from the local and remote
// state, whether the remote file has to be created, updated or removed.
//
// The package includes:
// - ContentsAPI interface for the contents endpoints
// - Client, the go-github implementation of ContentsAPI
// - AuthManager for token validation
// - Reconciler for planning and applying the single change
package github
