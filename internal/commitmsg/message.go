package commitmsg

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/temirov/prflow/internal/utils"
)

const (
	// MaximumTitleLength is the longest accepted commit title, counted in characters.
	MaximumTitleLength = 70

	invalidTitleLengthTemplateConstant = "Commit message size should be between 1 and %d characters. Current size: %d"
	paragraphSeparatorConstant         = "\n\n"
	lineSeparatorConstant              = "\n"
)

// Message is a commit message split into its title line and optional body.
type Message struct {
	Title string
	Body  string
}

// String renders the message in git's title, blank line, body layout.
func (message Message) String() string {
	if len(message.Body) == 0 {
		return message.Title
	}
	return message.Title + paragraphSeparatorConstant + message.Body
}

// Parse splits raw text into a Message and validates the title.
// The title is the first non-blank line; the body is the remaining text with surrounding whitespace removed.
func Parse(raw string) (Message, error) {
	normalized := strings.ReplaceAll(raw, "\r\n", lineSeparatorConstant)
	lines := strings.Split(normalized, lineSeparatorConstant)

	titleIndex := -1
	for lineIndex, line := range lines {
		if len(strings.TrimSpace(line)) > 0 {
			titleIndex = lineIndex
			break
		}
	}
	if titleIndex < 0 {
		return Message{}, ValidateTitle("")
	}

	message := Message{
		Title: strings.TrimSpace(lines[titleIndex]),
		Body:  strings.TrimSpace(strings.Join(lines[titleIndex+1:], lineSeparatorConstant)),
	}
	if validationError := ValidateTitle(message.Title); validationError != nil {
		return Message{}, validationError
	}
	return message, nil
}

// ValidateTitle enforces the 1..MaximumTitleLength character limit.
func ValidateTitle(title string) error {
	titleLength := utf8.RuneCountInString(title)
	if titleLength == 0 || titleLength > MaximumTitleLength {
		return utils.NewUsageError(fmt.Sprintf(invalidTitleLengthTemplateConstant, MaximumTitleLength, titleLength))
	}
	return nil
}
