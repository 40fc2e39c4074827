package core

import (
	"github.com/native-pkgs/prebuilts/client"
)

// Type aliases so store implementations only need to import core.
type (
	RateLimiter = client.RateLimiter
	Client      = client.Client
	Option      = client.Option
	URLBuilder  = client.URLBuilder
	BaseURLs    = client.BaseURLs
	HTTPError   = client.HTTPError
)

// Function aliases for the same reason.
var (
	DefaultClient   = client.DefaultClient
	NewClient       = client.NewClient
	WithTimeout     = client.WithTimeout
	WithUserAgent   = client.WithUserAgent
	WithHTTPClient  = client.WithHTTPClient
	WithToken       = client.WithToken
	WithRateLimiter = client.WithRateLimiter
	BuildURLs       = client.BuildURLs
)
