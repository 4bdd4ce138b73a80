// Package githubcli wraps the GitHub CLI for the pull request workflows.
//
// Client issues gh subcommands through an injected executor, decodes their
// JSON output into typed values, and reports malformed output as
// ResponseDecodingError. ParsePullRequestURL validates pull request links
// supplied on the command line.
package githubcli
