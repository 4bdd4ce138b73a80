// Package commitmsg derives, validates, and formats commit messages.
//
// It covers the commit title limits, the branch slug derived from a title, the
// Co-authored-by trailers appended to squash commits, and the Deriver that obtains a
// message from an explicit flag, an AI suggestion, or an interactive edit.
package commitmsg
