package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alimgiray/projectdesk/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
)

var ErrNotGitHubURL = errors.New("not a GitHub repository URL")

// LinkChecker verifies that a repository link points at something reachable
type LinkChecker interface {
	CheckRepository(ctx context.Context, rawURL string) (bool, error)
}

// GitHubService checks GitHub repository links through the GitHub API. Calls
// go through a circuit breaker so an unreachable API does not slow every
// link operation down.
type GitHubService struct {
	client  *github.Client
	breaker *gobreaker.CircuitBreaker
}

// NewGitHubService creates a GitHub client, authenticated when token is set
func NewGitHubService(token string) *GitHubService {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "github-api",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s changed from %s to %s", name, from.String(), to.String())
		},
	})

	return &GitHubService{
		client:  github.NewClient(httpClient),
		breaker: breaker,
	}
}

// SetBaseURL points the client at another API endpoint (GitHub Enterprise)
func (s *GitHubService) SetBaseURL(rawURL string) error {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	s.client.BaseURL = u
	return nil
}

// CheckRepository reports whether the repository behind rawURL exists and is
// visible to the configured token. A missing repository is (false, nil).
func (s *GitHubService) CheckRepository(ctx context.Context, rawURL string) (bool, error) {
	owner, repo, err := ParseGitHubURL(rawURL)
	if err != nil {
		return false, err
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		_, resp, err := s.client.Repositories.Get(ctx, owner, repo)
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to check repository %s/%s: %w", owner, repo, err)
	}
	return result.(bool), nil
}

// ParseGitHubURL extracts owner and repository name from a github.com URL
func ParseGitHubURL(rawURL string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", ErrNotGitHubURL
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "github.com" {
		return "", "", ErrNotGitHubURL
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrNotGitHubURL
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
