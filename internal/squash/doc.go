// Package squash collapses the commits of the current pull request branch into one commit titled
// after the pull request, crediting the other commit authors with Co-authored-by trailers.
package squash
