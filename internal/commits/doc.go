// Package commits implements the composite commit builder for hubctl.
//
// It offers CommandBuilder for the Cobra push command and Service for
// orchestrating the Git Data API sequence that applies a multi-file change
// set to a branch as a single commit: resolve the branch head, resolve its
// base tree, materialize blobs, compose the layered tree, record the commit,
// and advance the branch reference.
package commits
