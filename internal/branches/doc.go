// Package branches provides branch creation services for hubctl.
//
// It offers CommandBuilder for the Cobra branch command group and Service for
// creating a branch reference from an explicitly named source branch. The
// source branch is always explicit: there is no fallback guessing between
// naming conventions.
package branches
