package commitmsg

import (
	"fmt"
	"strings"

	"github.com/temirov/prflow/internal/gitrepo"
)

const (
	coAuthorTrailerTemplateConstant = "Co-authored-by: %s <%s>"
)

// CoAuthor is a commit author credited through a Co-authored-by trailer.
type CoAuthor struct {
	Name  string
	Email string
}

// Trailer renders the Co-authored-by line.
func (coAuthor CoAuthor) Trailer() string {
	return fmt.Sprintf(coAuthorTrailerTemplateConstant, coAuthor.Name, coAuthor.Email)
}

// DistinctCoAuthors returns commit authors in order of first appearance without duplicates,
// leaving out the committing identity. Authors are compared by email, case-insensitively,
// falling back to the name when a commit carries no email.
func DistinctCoAuthors(commits []gitrepo.Commit, committer gitrepo.Identity) []CoAuthor {
	committerKey := authorKey(committer.Name, committer.Email)
	seen := map[string]struct{}{}
	coAuthors := make([]CoAuthor, 0, len(commits))

	for _, commit := range commits {
		name := strings.TrimSpace(commit.AuthorName)
		email := strings.TrimSpace(commit.AuthorEmail)
		if len(name) == 0 && len(email) == 0 {
			continue
		}

		key := authorKey(name, email)
		if key == committerKey {
			continue
		}
		if _, duplicate := seen[key]; duplicate {
			continue
		}
		seen[key] = struct{}{}
		coAuthors = append(coAuthors, CoAuthor{Name: name, Email: email})
	}

	return coAuthors
}

// ComposeSquashMessage builds the squash commit message: the title, then a blank line and one
// trailer per co-author. Without co-authors the message is the title alone.
func ComposeSquashMessage(title string, coAuthors []CoAuthor) string {
	trimmedTitle := strings.TrimSpace(title)
	if len(coAuthors) == 0 {
		return trimmedTitle
	}

	trailers := make([]string, 0, len(coAuthors))
	for _, coAuthor := range coAuthors {
		trailers = append(trailers, coAuthor.Trailer())
	}
	return trimmedTitle + paragraphSeparatorConstant + strings.Join(trailers, lineSeparatorConstant)
}

func authorKey(name string, email string) string {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	if len(trimmedEmail) > 0 {
		return trimmedEmail
	}
	return "name:" + strings.TrimSpace(name)
}
