package commitmsg

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/utils"
)

const (
	editorLabelConstant                  = "Commit message"
	messageRequiredMessageConstant       = "commit message required: pass --message or run in an interactive terminal"
	messageInputCancelledMessageConstant = "commit message input cancelled"
	generatingMessageLogConstant         = "Generating commit message with AI agent"
	generatedMessageLogConstant          = "AI agent suggested a commit message"
	generatorUnavailableLogConstant      = "AI agent unavailable, asking for the commit message"
	emptyDiffLogConstant                 = "No diff available for an AI suggestion"
	repositoryPathFieldNameConstant      = "repository_path"
	generatedMessageFieldNameConstant    = "suggestion"
)

// ErrDiffSourceNotConfigured indicates the Deriver was built without a diff source.
var ErrDiffSourceNotConfigured = errors.New("diff source not configured")

// DiffSource reads repository diffs.
type DiffSource interface {
	Diff(executionContext context.Context, repositoryPath string, stagedOnly bool) (string, error)
}

// MessageGenerator proposes a commit message for a diff.
type MessageGenerator interface {
	Available() bool
	Generate(executionContext context.Context, repositoryPath string, diff string) (string, error)
}

// MessageEditor lets the user edit a suggested message in place and confirm it.
// validate is consulted before an answer is returned.
type MessageEditor interface {
	Interactive() bool
	Edit(executionContext context.Context, label string, suggestion string, validate func(string) error) (string, error)
}

// DeriveRequest carries the inputs of one derivation.
type DeriveRequest struct {
	ExplicitMessage string
	RepositoryPath  string
}

// Derivation is the message chosen for a commit along with its branch name.
type Derivation struct {
	Message    Message
	BranchName string
	Generated  bool
}

// Deriver obtains the commit message for open-pr.
type Deriver struct {
	logger    *zap.Logger
	diffs     DiffSource
	generator MessageGenerator
	editor    MessageEditor
}

// NewDeriver constructs a Deriver. generator and editor are optional.
func NewDeriver(logger *zap.Logger, diffs DiffSource, generator MessageGenerator, editor MessageEditor) (*Deriver, error) {
	if diffs == nil {
		return nil, ErrDiffSourceNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deriver{logger: logger, diffs: diffs, generator: generator, editor: editor}, nil
}

// Derive returns the explicit message when one was supplied. Otherwise it asks the agent for a
// suggestion (when available) and lets the user confirm or edit it.
func (deriver *Deriver) Derive(executionContext context.Context, request DeriveRequest) (Derivation, error) {
	if len(strings.TrimSpace(request.ExplicitMessage)) > 0 {
		message, parseError := Parse(request.ExplicitMessage)
		if parseError != nil {
			return Derivation{}, parseError
		}
		return newDerivation(message, false), nil
	}

	if deriver.editor == nil || !deriver.editor.Interactive() {
		return Derivation{}, utils.NewUsageError(messageRequiredMessageConstant)
	}

	suggestion, suggestionError := deriver.suggest(executionContext, request.RepositoryPath)
	if suggestionError != nil {
		return Derivation{}, suggestionError
	}

	edited, editError := deriver.editor.Edit(executionContext, editorLabelConstant, suggestion, func(candidate string) error {
		_, validationError := Parse(candidate)
		return validationError
	})
	if editError != nil {
		if errors.Is(editError, io.EOF) {
			return Derivation{}, utils.NewUsageError(messageInputCancelledMessageConstant)
		}
		return Derivation{}, editError
	}

	message, parseError := Parse(edited)
	if parseError != nil {
		return Derivation{}, parseError
	}
	generated := len(suggestion) > 0 && message.String() == suggestion
	return newDerivation(message, generated), nil
}

func (deriver *Deriver) suggest(executionContext context.Context, repositoryPath string) (string, error) {
	if deriver.generator == nil || !deriver.generator.Available() {
		deriver.logger.Info(generatorUnavailableLogConstant)
		return "", nil
	}

	diff, diffError := deriver.diffs.Diff(executionContext, repositoryPath, true)
	if diffError != nil {
		return "", diffError
	}
	if len(strings.TrimSpace(diff)) == 0 {
		diff, diffError = deriver.diffs.Diff(executionContext, repositoryPath, false)
		if diffError != nil {
			return "", diffError
		}
	}
	if len(strings.TrimSpace(diff)) == 0 {
		deriver.logger.Info(emptyDiffLogConstant)
		return "", nil
	}

	deriver.logger.Info(generatingMessageLogConstant, zap.String(repositoryPathFieldNameConstant, repositoryPath))
	suggestion, generateError := deriver.generator.Generate(executionContext, repositoryPath, diff)
	if generateError != nil {
		return "", generateError
	}
	suggestion = strings.TrimSpace(suggestion)
	deriver.logger.Debug(generatedMessageLogConstant, zap.String(generatedMessageFieldNameConstant, suggestion))
	return suggestion, nil
}

func newDerivation(message Message, generated bool) Derivation {
	return Derivation{Message: message, BranchName: BranchName(message.Title), Generated: generated}
}
