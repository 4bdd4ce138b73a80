// Package ui provides the human-facing console pieces of prflow.
//
// ConsoleCommandEventLogger turns external command lifecycle events into progress lines,
// and LineEditor asks the user to confirm or edit a commit message in the terminal.
package ui
