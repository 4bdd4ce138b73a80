package commitmsg

import "strings"

const (
	maximumBranchNameLength = 60
	branchSeparator         = '-'
	fallbackBranchName      = "change"
)

// BranchName derives a git branch name from a commit title.
//
// The title is lowercased, every run of characters outside [a-z0-9] collapses to a single
// hyphen, and leading or trailing hyphens are dropped. Names longer than 60 characters are
// cut at the last word boundary inside the limit. A title with no usable characters yields "change".
func BranchName(title string) string {
	var builder strings.Builder
	pendingSeparator := false
	for _, character := range strings.ToLower(title) {
		if (character >= 'a' && character <= 'z') || (character >= '0' && character <= '9') {
			if pendingSeparator && builder.Len() > 0 {
				builder.WriteRune(branchSeparator)
			}
			pendingSeparator = false
			builder.WriteRune(character)
			continue
		}
		pendingSeparator = true
	}

	slug := builder.String()
	if len(slug) > maximumBranchNameLength {
		wordBoundary := slug[maximumBranchNameLength] == byte(branchSeparator)
		slug = slug[:maximumBranchNameLength]
		if !wordBoundary {
			if cutIndex := strings.LastIndexByte(slug, byte(branchSeparator)); cutIndex > 0 {
				slug = slug[:cutIndex]
			}
		}
		slug = strings.Trim(slug, string(branchSeparator))
	}

	if len(slug) == 0 {
		return fallbackBranchName
	}
	return slug
}
