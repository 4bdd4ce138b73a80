// Package agents knows how to invoke the AI assistant CLIs supported by prflow.
//
// The Registry describes each agent binary, its default models per task, and the argument
// layout it expects. Runner executes an agent through the shared shell executor, and the
// prompt helpers render the commit message and review prompts with fasttemplate.
package agents
