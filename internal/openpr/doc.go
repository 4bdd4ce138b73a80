// Package openpr commits the current changes on a new branch, pushes it, and opens a pull request.
//
// The flow is a fixed stage sequence: the staged index is committed as-is when anything is staged,
// otherwise every working tree change is staged first. The branch name is derived from the commit
// message title.
package openpr
