// Package gitutil clones pull-request repositories and reads file content
// out of their commit trees.
package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var prURLRegex = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)

// ParsePullRequestURL extracts owner, repo and PR number from a GitHub pull
// request URL of the form https://github.com/{owner}/{repo}/pull/{number}.
func ParsePullRequestURL(url string) (owner, repo string, prNumber int, err error) {
	url = strings.TrimSuffix(url, "/")

	matches := prURLRegex.FindStringSubmatch(url)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid pull request URL format: %s", url)
	}

	prNumber, err = strconv.Atoi(matches[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid PR number %q: %w", matches[3], err)
	}
	return matches[1], matches[2], prNumber, nil
}
