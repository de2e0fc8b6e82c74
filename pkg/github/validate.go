package github

import (
	"fmt"
	"regexp"
	"strconv"
)

// ValidationError reports malformed user input (repository names, issue
// references) before any API call is made. The message always names the
// expected shape so the model can self-correct.
type ValidationError struct {
	Input    string
	Expected string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %q: expected %s", e.Input, e.Expected)
}

// IssueRef identifies one issue in one repository.
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r IssueRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

var (
	repoNameRegex   = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)/([A-Za-z0-9._\-]+)$`)
	issueURLRegex   = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/issues/(\d+)/?$`)
	issueShortRegex = regexp.MustCompile(`^([^/\s#]+)/([^/\s#]+)#(\d+)$`)
)

// ValidateRepoName checks the "owner/repo" shape and splits it.
func ValidateRepoName(name string) (owner, repo string, err error) {
	m := repoNameRegex.FindStringSubmatch(name)
	if m == nil {
		return "", "", &ValidationError{Input: name, Expected: `a repository name in "owner/repo" form`}
	}
	return m[1], m[2], nil
}

// ParseIssueRef accepts both a full issue URL
// (https://github.com/owner/repo/issues/123) and the short form
// owner/repo#123.
func ParseIssueRef(ref string) (IssueRef, error) {
	if m := issueURLRegex.FindStringSubmatch(ref); m != nil {
		n, _ := strconv.Atoi(m[3])
		return IssueRef{Owner: m[1], Repo: m[2], Number: n}, nil
	}
	if m := issueShortRegex.FindStringSubmatch(ref); m != nil {
		n, _ := strconv.Atoi(m[3])
		return IssueRef{Owner: m[1], Repo: m[2], Number: n}, nil
	}
	return IssueRef{}, &ValidationError{
		Input:    ref,
		Expected: `an issue URL like "https://github.com/owner/repo/issues/123" or the short form "owner/repo#123"`,
	}
}
