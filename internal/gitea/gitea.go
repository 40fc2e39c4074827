// Package gitea implements the Gitea release store.
package gitea

import (
	"context"
	"fmt"
	"strings"

	"github.com/native-pkgs/prebuilts/internal/core"
)

const (
	// DefaultHost is the hosted Gitea instance.
	DefaultHost = "https://gitea.com"

	storeType = "gitea"
)

func init() {
	core.Register(storeType, DefaultHost, func(host string, client *core.Client) core.Store {
		return New(host, client)
	})
}

// Store fetches release metadata from a Gitea instance. Self-hosted
// instances work by passing their base URL as the host.
type Store struct {
	host   string
	client *core.Client
	urls   *URLs
}

// New creates a Gitea store client.
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

// Release fetches the release metadata for a tagged version.
func (s *Store) Release(ctx context.Context, src core.Source) (*core.Release, error) {
	url := s.urls.API(src.Owner, src.Repo, src.Version)

	var resp releaseResponse
	err := s.client.GetJSON(ctx, url, &resp)
	if err != nil {
		if httpErr, ok := err.(*core.HTTPError); ok && httpErr.IsNotFound() {
			return nil, &core.ReleaseNotFoundError{
				Store:   storeType,
				Owner:   src.Owner,
				Repo:    src.Repo,
				Version: src.Version,
			}
		}
		return nil, err
	}

	release := &core.Release{
		TagName:    resp.TagName,
		Name:       resp.Name,
		Prerelease: resp.Prerelease,
	}
	for _, asset := range resp.Assets {
		release.Assets = append(release.Assets, core.Asset{
			Name:        asset.Name,
			Size:        asset.Size,
			DownloadURL: asset.BrowserDownloadURL,
		})
	}
	return release, nil
}

func (s *Store) URLs() core.URLBuilder {
	return s.urls
}

// URLs builds Gitea release URLs. Download URLs follow the same shape
// as GitHub's, which Gitea serves for compatibility.
type URLs struct {
	host string
}

func (u *URLs) Release(owner, repo, version string) string {
	return fmt.Sprintf("%s/%s/%s/releases/tag/v%s", u.host, owner, repo, version)
}

func (u *URLs) Download(owner, repo, version, filename string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/v%s/%s", u.host, owner, repo, version, filename)
}

func (u *URLs) API(owner, repo, version string) string {
	return fmt.Sprintf("%s/api/v1/repos/%s/%s/releases/tags/v%s", u.host, owner, repo, version)
}

func (u *URLs) PURL(owner, repo, version string) string {
	if version != "" {
		return fmt.Sprintf("pkg:gitea/%s/%s@%s", owner, repo, version)
	}
	return fmt.Sprintf("pkg:gitea/%s/%s", owner, repo)
}
