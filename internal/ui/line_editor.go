package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

const (
	promptTemplateConstant          = "%s: "
	validationProblemLinePrefix     = "  "
	acceptedAnswerViewTemplate      = "%s%s\n"
	editorViewLineSeparatorConstant = "\n"
)

// TerminalCheck reports whether the editor can prompt interactively.
type TerminalCheck func() bool

// LineEditor edits a single line of text in the terminal. The suggestion is placed in the
// input field so it can be changed in place before it is accepted with Enter.
type LineEditor struct {
	input         io.Reader
	output        io.Writer
	terminalCheck TerminalCheck
}

// LineEditorOption customizes a LineEditor.
type LineEditorOption func(*LineEditor)

// WithTerminalCheck overrides TTY detection.
func WithTerminalCheck(check TerminalCheck) LineEditorOption {
	return func(editor *LineEditor) {
		editor.terminalCheck = check
	}
}

// NewLineEditor builds an editor reading from input and rendering to output.
// When input is an *os.File its descriptor drives TTY detection.
func NewLineEditor(input io.Reader, output io.Writer, options ...LineEditorOption) *LineEditor {
	editor := &LineEditor{
		input:         input,
		output:        output,
		terminalCheck: func() bool { return false },
	}

	if inputFile, isFile := input.(*os.File); isFile {
		fileDescriptor := int(inputFile.Fd())
		editor.terminalCheck = func() bool { return term.IsTerminal(fileDescriptor) }
	}

	for _, option := range options {
		if option != nil {
			option(editor)
		}
	}
	return editor
}

// Interactive reports whether input is attached to a terminal.
func (editor *LineEditor) Interactive() bool {
	if editor == nil || editor.input == nil || editor.output == nil || editor.terminalCheck == nil {
		return false
	}
	return editor.terminalCheck()
}

// Edit prefills the input with suggestion and returns the trimmed line confirmed with Enter.
// Answers rejected by validate are reported under the input and editing continues.
// Ctrl-C and Esc return io.EOF.
func (editor *LineEditor) Edit(executionContext context.Context, label string, suggestion string, validate func(string) error) (string, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return "", contextError
	}

	program := tea.NewProgram(
		newEditModel(label, suggestion, validate),
		tea.WithContext(executionContext),
		tea.WithInput(editor.input),
		tea.WithOutput(editor.output),
	)

	finalModel, runError := program.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return "", contextError
	}
	if runError != nil {
		return "", runError
	}

	result, isEditModel := finalModel.(editModel)
	if !isEditModel || result.cancelled {
		return "", io.EOF
	}
	return result.answer, nil
}

// editModel is the bubbletea model behind LineEditor.Edit.
type editModel struct {
	input     textinput.Model
	validate  func(string) error
	problem   string
	answer    string
	accepted  bool
	cancelled bool
}

func newEditModel(label string, suggestion string, validate func(string) error) editModel {
	input := textinput.New()
	input.Prompt = fmt.Sprintf(promptTemplateConstant, label)
	input.SetValue(suggestion)
	input.CursorEnd()
	input.Focus()
	return editModel{input: input, validate: validate}
}

// Init implements tea.Model.
func (model editModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (model editModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if keyMessage, isKey := message.(tea.KeyMsg); isKey {
		switch keyMessage.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			model.cancelled = true
			return model, tea.Quit
		case tea.KeyEnter:
			candidate := strings.TrimSpace(model.input.Value())
			if model.validate != nil {
				if validationError := model.validate(candidate); validationError != nil {
					model.problem = validationError.Error()
					return model, nil
				}
			}
			model.answer = candidate
			model.accepted = true
			return model, tea.Quit
		}
	}

	var command tea.Cmd
	model.input, command = model.input.Update(message)
	return model, command
}

// View implements tea.Model.
func (model editModel) View() string {
	if model.accepted {
		return fmt.Sprintf(acceptedAnswerViewTemplate, model.input.Prompt, model.answer)
	}
	if model.cancelled {
		return ""
	}

	var view strings.Builder
	view.WriteString(model.input.View())
	view.WriteString(editorViewLineSeparatorConstant)
	if len(model.problem) > 0 {
		view.WriteString(validationProblemLinePrefix)
		view.WriteString(model.problem)
		view.WriteString(editorViewLineSeparatorConstant)
	}
	return view.String()
}
