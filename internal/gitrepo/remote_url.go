package gitrepo

import (
	"context"
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	nameWithOwnerTemplateConstant       = "%s/%s"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
	gitGetURLSubcommandConstant         = "get-url"
	remoteURLOperationTemplateConstant  = "failed to read url of remote %s"
)

// RemoteRepository identifies the hosted repository a remote points to.
type RemoteRepository struct {
	Host       string
	Owner      string
	Repository string
}

// NameWithOwner renders owner/repository as accepted by gh.
func (remote RemoteRepository) NameWithOwner() string {
	return fmt.Sprintf(nameWithOwnerTemplateConstant, remote.Owner, remote.Repository)
}

// RemoteURLParseError indicates a remote URL could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// RemoteURL returns the fetch URL configured for a remote.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	trimmedRemote := strings.TrimSpace(remoteName)
	if len(trimmedRemote) == 0 {
		return "", InvalidInputError{Message: remoteNameRequiredMessageConstant}
	}
	output, executionError := manager.run(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, trimmedRemote)
	if executionError != nil {
		return "", fmt.Errorf(operationErrorTemplateConstant, fmt.Sprintf(remoteURLOperationTemplateConstant, trimmedRemote), executionError)
	}
	return strings.TrimSpace(output), nil
}

// ParseRemoteURL accepts scp-like SSH, ssh://, https:// and http:// remotes.
func ParseRemoteURL(remote string) (RemoteRepository, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteRepository{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, stripUserInfo(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant)))
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, stripUserInfo(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant)))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, stripUserInfo(strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant)))
	case strings.Contains(trimmedRemote, sshUserDelimiterConstant) && strings.Contains(trimmedRemote, sshPathDelimiterConstant):
		return parseScpLikeRemote(remote, stripUserInfo(trimmedRemote))
	default:
		return RemoteRepository{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

func stripUserInfo(remote string) string {
	slashIndex := strings.Index(remote, pathSeparatorConstant)
	userIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userIndex >= 0 && (slashIndex == -1 || userIndex < slashIndex) {
		return remote[userIndex+1:]
	}
	return remote
}

func parseScpLikeRemote(input string, hostAndPath string) (RemoteRepository, error) {
	delimiterIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if delimiterIndex <= 0 {
		return RemoteRepository{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	return buildRemoteRepository(input, hostAndPath[:delimiterIndex], hostAndPath[delimiterIndex+1:])
}

func parseHierarchicalRemote(input string, hostAndPath string) (RemoteRepository, error) {
	slashIndex := strings.Index(hostAndPath, pathSeparatorConstant)
	if slashIndex <= 0 {
		return RemoteRepository{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	host := hostAndPath[:slashIndex]
	if portIndex := strings.Index(host, sshPathDelimiterConstant); portIndex >= 0 {
		host = host[:portIndex]
	}
	return buildRemoteRepository(input, host, hostAndPath[slashIndex+1:])
}

func buildRemoteRepository(input string, host string, path string) (RemoteRepository, error) {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) != 2 {
		return RemoteRepository{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	owner := strings.TrimSpace(segments[0])
	repository := strings.TrimSuffix(strings.TrimSpace(segments[1]), gitSuffixConstant)
	if len(host) == 0 || len(owner) == 0 || len(repository) == 0 {
		return RemoteRepository{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteRepository{Host: host, Owner: owner, Repository: repository}, nil
}
