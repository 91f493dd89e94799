package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
)

const (
	// namePrefix separates published builds from drafts, betas and nightlies
	// in the brave-browser catalog.
	namePrefix = "Release"

	// catalogPageSize bounds the single catalog page fetched per invocation.
	catalogPageSize = 100
)

// ErrNoRelease indicates that no release/asset pair matched the filter
// within the fetched catalog page.
var ErrNoRelease = errors.New("no matching release found")

// Resolved identifies the newest installable release asset.
type Resolved struct {
	// Name is the trimmed, human-readable release label. It doubles as the
	// equality key against the installed version marker.
	Name string
	// URL is the direct download location of the matching asset.
	URL string
}

// Resolver queries a GitHub release catalog for one repository.
type Resolver struct {
	client *github.Client
	owner  string
	repo   string
}

// NewResolver creates a Resolver for the given repository. An empty
// apiBaseURL keeps the public GitHub endpoint; a nil httpClient uses the
// default transport.
func NewResolver(owner, repo, apiBaseURL string, httpClient *http.Client) (*Resolver, error) {
	client := github.NewClient(httpClient)

	if apiBaseURL != "" {
		baseURL, err := url.Parse(apiBaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse catalog URL: %w", err)
		}

		// The go-github client requires a trailing slash on the base URL.
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}

		client.BaseURL = baseURL
	}

	return &Resolver{
		client: client,
		owner:  owner,
		repo:   repo,
	}, nil
}

// Latest returns the first release in catalog order whose name starts with
// "Release" and which carries an asset whose filename ends with suffix.
// The catalog's own newest-first ordering is trusted; there is no
// client-side sorting and no pagination beyond the first page. A qualifying
// release without a matching asset does not stop the scan.
func (r *Resolver) Latest(ctx context.Context, suffix string) (*Resolved, error) {
	listOptions := &github.ListOptions{PerPage: catalogPageSize}

	releases, _, err := r.client.Repositories.ListReleases(ctx, r.owner, r.repo, listOptions)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}

	for _, candidate := range releases {
		name := candidate.GetName()
		if !strings.HasPrefix(name, namePrefix) {
			continue
		}

		for _, asset := range candidate.Assets {
			if strings.HasSuffix(asset.GetName(), suffix) {
				return &Resolved{
					Name: strings.TrimSpace(name),
					URL:  asset.GetBrowserDownloadURL(),
				}, nil
			}
		}
	}

	return nil, ErrNoRelease
}
