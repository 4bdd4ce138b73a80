// Package gitrepo wraps the git operations used by the pull request workflows.
//
// RepositoryManager runs every command through an injected GitCommandExecutor
// with terminal prompts disabled, and parses porcelain status and log output
// into plain values.
package gitrepo
