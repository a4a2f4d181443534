// Package githubapi implements the authenticated GitHub REST gateway for hubctl.
//
// It exposes the Git Data operations (references, commits, blobs, trees) as a
// typed Client constructed from explicit configuration, and classifies HTTP
// failures into the error taxonomy consumed by the commit and branch services.
package githubapi
