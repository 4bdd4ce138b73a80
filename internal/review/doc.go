// Package review asks an AI agent to review a pull request. The agent receives a prompt built from
// the pull request metadata, commits, and diff, and its output is streamed to the user unchanged.
package review
