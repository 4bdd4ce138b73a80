package agents

import (
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
	"gopkg.in/yaml.v3"
)

const (
	templateStartTagConstant = "{{"
	templateEndTagConstant   = "}}"

	diffPlaceholderConstant     = "diff"
	urlPlaceholderConstant      = "url"
	metadataPlaceholderConstant = "metadata"
	commitsPlaceholderConstant  = "commits"

	commitPromptTemplateConstant = "Don't ask me questions or confirmation. Write a git commit message (max 70 characters) for these changes in one line: {{diff}}"

	// DefaultReviewPromptTemplate is used when no prompt_template is configured.
	DefaultReviewPromptTemplate = `You are an expert code reviewer. Review this GitHub pull request and write your review in Markdown.

Rules:
- Do not ask questions unless information is missing.
- Be concise but specific.
- Include a short summary, then a list of issues (if any) with severity labels (BLOCKER, MAJOR, MINOR), and then suggestions.
- If there are no issues, say so explicitly.
- Refer to files and code hunks where possible.

PR URL: {{url}}

PR METADATA (YAML):
{{metadata}}

PR COMMITS:
{{commits}}

PR DIFF:
{{diff}}
`

	noCommitsPlaceholderConstant        = "(none)"
	commitLineTemplateConstant          = "- %s %s"
	shortHashLengthConstant             = 7
	promptTemplateErrorTemplateConstant = "invalid review prompt template: %w"
	metadataRenderErrorTemplateConstant = "render pull request metadata: %w"
)

// ReviewContext carries the pull request material embedded into a review prompt.
type ReviewContext struct {
	PullRequestURL string
	Metadata       map[string]any
	Commits        []ReviewCommit
	Diff           string
}

// ReviewCommit is one commit line shown to the reviewer.
type ReviewCommit struct {
	Hash     string
	Headline string
}

// CommitMessagePrompt renders the one-line commit message request for diff.
func CommitMessagePrompt(diff string) string {
	return fasttemplate.ExecuteString(commitPromptTemplateConstant, templateStartTagConstant, templateEndTagConstant, map[string]interface{}{
		diffPlaceholderConstant: strings.TrimRight(diff, "\n"),
	})
}

// ReviewPrompt renders promptTemplate with the review context. An empty template selects DefaultReviewPromptTemplate.
// Supported placeholders are {{url}}, {{metadata}}, {{commits}} and {{diff}}; unknown placeholders render empty.
func ReviewPrompt(promptTemplate string, reviewContext ReviewContext) (string, error) {
	if len(strings.TrimSpace(promptTemplate)) == 0 {
		promptTemplate = DefaultReviewPromptTemplate
	}

	compiledTemplate, templateError := fasttemplate.NewTemplate(promptTemplate, templateStartTagConstant, templateEndTagConstant)
	if templateError != nil {
		return "", fmt.Errorf(promptTemplateErrorTemplateConstant, templateError)
	}

	renderedMetadata, metadataError := RenderMetadata(reviewContext.Metadata)
	if metadataError != nil {
		return "", metadataError
	}

	values := map[string]string{
		urlPlaceholderConstant:      reviewContext.PullRequestURL,
		metadataPlaceholderConstant: renderedMetadata,
		commitsPlaceholderConstant:  renderCommits(reviewContext.Commits),
		diffPlaceholderConstant:     strings.TrimRight(reviewContext.Diff, "\n"),
	}

	return compiledTemplate.ExecuteFuncString(func(writer io.Writer, tag string) (int, error) {
		return writer.Write([]byte(values[strings.TrimSpace(tag)]))
	}), nil
}

// RenderMetadata renders pull request metadata as YAML with sorted keys.
func RenderMetadata(metadata map[string]any) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	encoded, encodeError := yaml.Marshal(metadata)
	if encodeError != nil {
		return "", fmt.Errorf(metadataRenderErrorTemplateConstant, encodeError)
	}
	return strings.TrimRight(string(encoded), "\n"), nil
}

func renderCommits(commits []ReviewCommit) string {
	if len(commits) == 0 {
		return noCommitsPlaceholderConstant
	}
	lines := make([]string, 0, len(commits))
	for _, commit := range commits {
		hash := commit.Hash
		if len(hash) > shortHashLengthConstant {
			hash = hash[:shortHashLengthConstant]
		}
		lines = append(lines, fmt.Sprintf(commitLineTemplateConstant, hash, commit.Headline))
	}
	return strings.Join(lines, "\n")
}
