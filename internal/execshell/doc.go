// Package execshell runs git, gh, and AI assistant executables.
//
// ShellExecutor logs every invocation, reports lifecycle events to a
// CommandEventObserver, and turns non-zero exits into CommandFailedError
// values that carry the failing command's standard error. OSCommandRunner is
// the os/exec backed CommandRunner; tests substitute recording runners.
package execshell
