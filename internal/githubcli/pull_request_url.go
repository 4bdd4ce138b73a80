package githubcli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	schemeSeparatorConstant             = "://"
	defaultSchemePrefixConstant         = "https://"
	httpsSchemeConstant                 = "https"
	httpSchemeConstant                  = "http"
	gitHubHostConstant                  = "github.com"
	gitHubWWWHostConstant               = "www.github.com"
	pullPathSegmentConstant             = "pull"
	urlPathSeparatorConstant            = "/"
	pullRequestURLTemplateConstant      = "https://github.com/%s/%s/pull/%d"
	pullRequestURLErrorTemplateConstant = "invalid pull request url %q: %s"
	malformedURLMessageConstant         = "not a url"
	unsupportedHostMessageConstant      = "expected a github.com url"
	missingPullSegmentMessageConstant   = "expected owner/repository/pull/<number>"
	invalidNumberMessageConstant        = "pull request number must be a positive integer"
)

// PullRequestReference identifies a pull request by repository and number.
type PullRequestReference struct {
	Owner      string
	Repository string
	Number     int
}

// URL renders the canonical pull request URL.
func (reference PullRequestReference) URL() string {
	return fmt.Sprintf(pullRequestURLTemplateConstant, reference.Owner, reference.Repository, reference.Number)
}

// PullRequestURLError reports a string that is not a GitHub pull request URL.
type PullRequestURLError struct {
	Input  string
	Reason string
}

func (urlError PullRequestURLError) Error() string {
	return fmt.Sprintf(pullRequestURLErrorTemplateConstant, urlError.Input, urlError.Reason)
}

// ParsePullRequestURL extracts the pull request reference from a github.com URL.
// The scheme is optional and the scheme and host match case-insensitively.
// Trailing path segments such as /files, query strings, and fragments are ignored.
func ParsePullRequestURL(input string) (PullRequestReference, error) {
	candidate := strings.TrimSpace(input)
	if !strings.Contains(candidate, schemeSeparatorConstant) {
		candidate = defaultSchemePrefixConstant + candidate
	}

	parsedURL, parseError := url.Parse(candidate)
	if parseError != nil {
		return PullRequestReference{}, PullRequestURLError{Input: input, Reason: malformedURLMessageConstant}
	}

	switch strings.ToLower(parsedURL.Scheme) {
	case httpsSchemeConstant, httpSchemeConstant:
	default:
		return PullRequestReference{}, PullRequestURLError{Input: input, Reason: unsupportedHostMessageConstant}
	}
	switch strings.ToLower(parsedURL.Hostname()) {
	case gitHubHostConstant, gitHubWWWHostConstant:
	default:
		return PullRequestReference{}, PullRequestURLError{Input: input, Reason: unsupportedHostMessageConstant}
	}

	segments := strings.Split(strings.TrimPrefix(parsedURL.Path, urlPathSeparatorConstant), urlPathSeparatorConstant)
	if len(segments) < 4 || len(segments[0]) == 0 || len(segments[1]) == 0 || segments[2] != pullPathSegmentConstant {
		return PullRequestReference{}, PullRequestURLError{Input: input, Reason: missingPullSegmentMessageConstant}
	}

	number, conversionError := strconv.Atoi(segments[3])
	if conversionError != nil || number <= 0 {
		return PullRequestReference{}, PullRequestURLError{Input: input, Reason: invalidNumberMessageConstant}
	}

	return PullRequestReference{Owner: segments[0], Repository: segments[1], Number: number}, nil
}
