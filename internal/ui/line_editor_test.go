package ui_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prflow/internal/ui"
)

func newScriptedEditor(input string, output *bytes.Buffer) *ui.LineEditor {
	return ui.NewLineEditor(
		strings.NewReader(input),
		output,
		ui.WithTerminalCheck(func() bool { return true }),
	)
}

func rejectEmpty(candidate string) error {
	if len(candidate) == 0 {
		return errors.New("Commit message size should be between 1 and 70 characters. Current size: 0")
	}
	return nil
}

func TestLineEditorEdit(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		suggestion     string
		expectedAnswer string
	}{
		{
			name:           "enter_accepts_suggestion",
			input:          "\r",
			suggestion:     "Add review command",
			expectedAnswer: "Add review command",
		},
		{
			name:           "suggestion_is_edited_in_place",
			input:          "\x7f\x7f\x7f\x7f\x7fstuff\r",
			suggestion:     "feat: add thing",
			expectedAnswer: "feat: add stuff",
		},
		{
			name:           "suggestion_is_cleared_and_retyped",
			input:          "\x15Fix squash preview\r",
			suggestion:     "Add review command",
			expectedAnswer: "Fix squash preview",
		},
		{
			name:           "invalid_answer_keeps_editing",
			input:          "\rManual title\r",
			expectedAnswer: "Manual title",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			editor := newScriptedEditor(testCase.input, &output)
			require.True(testInstance, editor.Interactive())

			answer, editError := editor.Edit(context.Background(), "Commit message", testCase.suggestion, rejectEmpty)
			require.NoError(testInstance, editError)
			require.Equal(testInstance, testCase.expectedAnswer, answer)
			require.Contains(testInstance, output.String(), "Commit message: ")
		})
	}
}

func TestLineEditorInterrupt(testInstance *testing.T) {
	var output bytes.Buffer
	editor := newScriptedEditor("\x03", &output)

	_, editError := editor.Edit(context.Background(), "Commit message", "feat: add thing", rejectEmpty)
	require.ErrorIs(testInstance, editError, io.EOF)
}

func TestLineEditorCancelledContext(testInstance *testing.T) {
	var output bytes.Buffer
	editor := newScriptedEditor("title\r", &output)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, editError := editor.Edit(cancelledContext, "Commit message", "", nil)
	require.ErrorIs(testInstance, editError, context.Canceled)
	require.Empty(testInstance, output.String())
}

func TestLineEditorInteractiveDetection(testInstance *testing.T) {
	require.False(testInstance, ui.NewLineEditor(strings.NewReader(""), io.Discard).Interactive())

	var nilEditor *ui.LineEditor
	require.False(testInstance, nilEditor.Interactive())
}
