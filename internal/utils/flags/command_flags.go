// Package flags provides helpers for binding the shared prflow flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Print the planned result without rewriting history or pushing"
	// AgentFlagName selects the AI agent.
	AgentFlagName = "agent"
	// AgentFlagUsage describes the agent flag purpose.
	AgentFlagUsage = "AI agent used to generate text"
	// ModelFlagName selects the agent model.
	ModelFlagName = "model"
	// ModelFlagUsage describes the model flag purpose.
	ModelFlagUsage = "Model passed to the agent (defaults to the agent's task default)"
	// RemoteFlagName exposes the shared remote flag name.
	RemoteFlagName = "remote"
	// RemoteFlagUsage describes the shared remote flag purpose.
	RemoteFlagUsage = "Remote name to push to"
)

// AgentFlagValues stores the selected agent and model.
type AgentFlagValues struct {
	Agent string
	Model string
}

// BindAgentFlags attaches --agent and --model to the command. The agent flag rejects names outside agentChoices.
func BindAgentFlags(command *cobra.Command, defaults AgentFlagValues, agentChoices []string) *AgentFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if flagSet.Lookup(AgentFlagName) == nil {
		choiceValue := NewChoiceValue(&values.Agent, defaults.Agent, agentChoices)
		flagSet.Var(choiceValue, AgentFlagName, FormatChoiceUsage(defaults.Agent, agentChoices, AgentFlagUsage))
	}
	if flagSet.Lookup(ModelFlagName) == nil {
		flagSet.StringVar(&values.Model, ModelFlagName, defaults.Model, ModelFlagUsage)
	}

	return &values
}

// BindDryRunFlag attaches --dry-run to the command.
func BindDryRunFlag(command *cobra.Command, defaultValue bool) *bool {
	value := defaultValue
	if command == nil {
		return &value
	}
	if command.Flags().Lookup(DryRunFlagName) == nil {
		command.Flags().BoolVar(&value, DryRunFlagName, defaultValue, DryRunFlagUsage)
	}
	return &value
}

// FlagChanged reports whether the user supplied the named flag explicitly.
func FlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	flag := command.Flags().Lookup(flagName)
	return flag != nil && flag.Changed
}

// FlagValue returns the textual value of the named flag, or an empty string when the flag is not defined.
func FlagValue(command *cobra.Command, flagName string) string {
	if command == nil {
		return ""
	}
	flag := command.Flags().Lookup(flagName)
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}
