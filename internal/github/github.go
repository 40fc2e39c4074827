// Package github provides a release store client for GitHub releases.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/native-pkgs/prebuilts/internal/core"
)

const (
	DefaultHost = "https://github.com"
	apiHost     = "https://api.github.com"
	storeType   = "github"
)

func init() {
	core.Register(storeType, DefaultHost, func(host string, client *core.Client) core.Store {
		return New(host, client)
	})
}

// Store talks to github.com, or a GitHub Enterprise instance when
// constructed with a custom host.
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
	s.urls = &URLs{host: s.host, api: apiBase(s.host)}
	return s
}

// apiBase derives the REST endpoint root: api.github.com for the
// public host, <host>/api/v3 for Enterprise instances.
func apiBase(host string) string {
	if host == DefaultHost {
		return apiHost
	}
	return host + "/api/v3"
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
	TagName    string          `json:"tag_name"`
	Name       string          `json:"name"`
	Prerelease bool            `json:"prerelease"`
	Assets     []assetResponse `json:"assets"`
}

type assetResponse struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
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
		Prerelease: resp.Prerelease,
		Assets:     make([]core.Asset, len(resp.Assets)),
	}
	for i, a := range resp.Assets {
		release.Assets[i] = core.Asset{
			Name:        a.Name,
			Size:        a.Size,
			DownloadURL: a.BrowserDownloadURL,
		}
	}

	return release, nil
}

type URLs struct {
	host string
	api  string
}

func (u *URLs) Release(owner, repo, version string) string {
	return fmt.Sprintf("%s/%s/%s/releases/tag/v%s", u.host, owner, repo, version)
}

func (u *URLs) Download(owner, repo, version, filename string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/v%s/%s", u.host, owner, repo, version, filename)
}

func (u *URLs) API(owner, repo, version string) string {
	return fmt.Sprintf("%s/repos/%s/%s/releases/tags/v%s", u.api, owner, repo, version)
}

func (u *URLs) PURL(owner, repo, version string) string {
	if version != "" {
		return fmt.Sprintf("pkg:github/%s/%s@%s", owner, repo, version)
	}
	return fmt.Sprintf("pkg:github/%s/%s", owner, repo)
}
