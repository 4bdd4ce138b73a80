// Package workflow runs the explicit, named stage sequences behind each prflow command.
package workflow
