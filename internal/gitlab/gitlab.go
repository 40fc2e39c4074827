// Package gitlab provides a release store client for GitLab releases.
package gitlab

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/native-pkgs/prebuilts/internal/core"
)

const (
	DefaultHost = "https://gitlab.com"
	storeType   = "gitlab"
)

func init() {
	core.Register(storeType, DefaultHost, func(host string, client *core.Client) core.Store {
		return New(host, client)
	})
}

// Store talks to gitlab.com or a self-managed GitLab instance.
type Store struct {
	host   string
	client *core.Client
	urls   *URLs
}

func New(host string, client *core.Client) *Store {
	if host == "" {
		host = DefaultHost
	}
	s := &Store{
		host:   strings.TrimSuffix(host, "/"),
		client: client,
	}
	s.urls = &URLs{host: s.host}
	return s
}

func (s *Store) Type() string {
	return storeType
}

func (s *Store) Host() string {
	return s.host
}

func (s *Store) URLs() core.URLBuilder {
	return s.urls
}

type releaseResponse struct {
	TagName         string `json:"tag_name"`
	Name            string `json:"name"`
	UpcomingRelease bool   `json:"upcoming_release"`
	Assets          struct {
		Links []linkResponse `json:"links"`
	} `json:"assets"`
}

type linkResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Release retrieves release metadata for the source's version tag.
func (s *Store) Release(ctx context.Context, src core.Source) (*core.Release, error) {
	url := s.urls.API(src.Owner, src.Repo, src.Version)

	var resp releaseResponse
	if err := s.client.GetJSON(ctx, url, &resp); err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.ReleaseNotFoundError{Store: storeType, Owner: src.Owner, Repo: src.Repo, Version: src.Version}
		}
		return nil, err
	}

	release := &core.Release{
		TagName:    resp.TagName,
		Name:       resp.Name,
		Prerelease: resp.UpcomingRelease,
		Assets:     make([]core.Asset, len(resp.Assets.Links)),
	}
	for i, link := range resp.Assets.Links {
		release.Assets[i] = core.Asset{
			Name: link.Name,
			// Release links do not report a size
			Size:        -1,
			DownloadURL: link.URL,
		}
	}

	return release, nil
}

type URLs struct {
	host string
}

func (u *URLs) Release(owner, repo, version string) string {
	return fmt.Sprintf("%s/%s/%s/-/releases/v%s", u.host, owner, repo, version)
}

func (u *URLs) Download(owner, repo, version, filename string) string {
	return fmt.Sprintf("%s/%s/%s/-/releases/v%s/downloads/%s", u.host, owner, repo, version, filename)
}

func (u *URLs) API(owner, repo, version string) string {
	// The API addresses projects by URL-encoded "owner/repo"
	project := url.PathEscape(owner + "/" + repo)
	return fmt.Sprintf("%s/api/v4/projects/%s/releases/v%s", u.host, project, version)
}

func (u *URLs) PURL(owner, repo, version string) string {
	if version != "" {
		return fmt.Sprintf("pkg:gitlab/%s/%s@%s", owner, repo, version)
	}
	return fmt.Sprintf("pkg:gitlab/%s/%s", owner, repo)
}
