// Package comment publishes the bundle size report on a GitHub pull request,
// editing the earlier report instead of stacking new comments on every push.
package comment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Marker identifies comments written by bundlesize.
const Marker = "<!-- bundlesize-report -->"

const perPage = 100

// GitHubPoster upserts report comments through the GitHub REST API.
type GitHubPoster struct {
	BaseURL string
	Owner   string
	Repo    string
	HTTP    *http.Client
}

var _ contract.CommentPoster = &GitHubPoster{} // Compile-time check

type issueComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// NewGitHubPoster creates a poster authenticated with the token in cfg.
func NewGitHubPoster(ctx context.Context, cfg contract.CommentConfig) *GitHubPoster {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	return &GitHubPoster{
		BaseURL: strings.TrimRight(cfg.APIURL, "/"),
		Owner:   cfg.Owner,
		Repo:    cfg.Repo,
		HTTP:    oauth2.NewClient(ctx, src),
	}
}

// Upsert edits the existing report comment on the pull request, or creates one.
func (p *GitHubPoster) Upsert(ctx context.Context, pullRequest int, body string) error {
	body = WithMarker(body)

	existing, err := p.findReport(ctx, pullRequest)
	if err != nil {
		return err
	}
	payload := map[string]string{"body": body}

	if existing != 0 {
		endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/comments/%d", p.BaseURL, p.Owner, p.Repo, existing)
		if err := p.do(ctx, http.MethodPatch, endpoint, payload, nil); err != nil {
			return fmt.Errorf("failed to update comment %d: %w", existing, err)
		}
		log.Debug().Int64("comment_id", existing).Int("pr", pullRequest).Msg("report comment updated")
		return nil
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", p.BaseURL, p.Owner, p.Repo, pullRequest)
	var created issueComment
	if err := p.do(ctx, http.MethodPost, endpoint, payload, &created); err != nil {
		return fmt.Errorf("failed to create comment on #%d: %w", pullRequest, err)
	}
	log.Debug().Int64("comment_id", created.ID).Int("pr", pullRequest).Msg("report comment created")
	return nil
}

// findReport returns the ID of the first comment carrying Marker, or 0.
func (p *GitHubPoster) findReport(ctx context.Context, pullRequest int) (int64, error) {
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments?per_page=%d&page=%d",
			p.BaseURL, p.Owner, p.Repo, pullRequest, perPage, page)
		var comments []issueComment
		if err := p.do(ctx, http.MethodGet, endpoint, nil, &comments); err != nil {
			return 0, fmt.Errorf("failed to list comments on #%d: %w", pullRequest, err)
		}
		for _, c := range comments {
			if strings.Contains(c.Body, Marker) {
				return c.ID, nil
			}
		}
		if len(comments) < perPage {
			return 0, nil
		}
	}
}

func (p *GitHubPoster) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := p.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s returned %s: %s", method, req.URL.Path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// WithMarker prepends Marker to body unless it is already present.
func WithMarker(body string) string {
	if strings.Contains(body, Marker) {
		return body
	}
	return Marker + "\n" + body
}
