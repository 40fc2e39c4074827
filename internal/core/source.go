package core

import (
	"context"
	"fmt"
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// DefaultStore is the backend assumed when a source does not name one.
const DefaultStore = "github"

// ParseSource parses a package URL into release coordinates.
// The purl type selects the store backend, so pkg:github/acme/demo@1.2.3
// resolves against GitHub releases. A repository_url qualifier overrides
// the host for self-hosted instances.
func ParseSource(purl string) (Source, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return Source{}, err
	}

	if p.Namespace == "" {
		return Source{}, fmt.Errorf("purl has no owner: %s", purl)
	}
	if p.Version == "" {
		return Source{}, fmt.Errorf("purl has no version: %s", purl)
	}

	return Source{
		Store: p.Type,
		// Extract repository_url qualifier for self-hosted instances
		Host:    p.Qualifiers.Map()["repository_url"],
		Owner:   p.Namespace,
		Repo:    p.Name,
		Version: strings.TrimPrefix(p.Version, "v"),
	}, nil
}

// FromPURL creates a store and release coordinates from a package URL.
func FromPURL(purl string, client *Client) (Store, Source, error) {
	src, err := ParseSource(purl)
	if err != nil {
		return nil, Source{}, err
	}

	store, err := New(src.Store, src.Host, client)
	if err != nil {
		return nil, Source{}, err
	}

	return store, src, nil
}

// ResolveFromPURL resolves a target's artifact using a package URL for
// the release coordinates.
func ResolveFromPURL(ctx context.Context, purl string, target Target, outputDir string, client *Client, opts ...ResolverOption) (*ResolvedArtifact, error) {
	store, src, err := FromPURL(purl, client)
	if err != nil {
		return nil, err
	}

	return NewResolver(store, src, outputDir, opts...).Resolve(ctx, target)
}
