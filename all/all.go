// Package all imports all supported release store implementations.
//
// Import this package for its side effects to register all stores:
//
//	import (
//		"github.com/native-pkgs/prebuilts"
//		_ "github.com/native-pkgs/prebuilts/all"
//	)
//
//	// Now all stores are available
//	stores := prebuilts.SupportedStores()
//	// ["gitea", "github", "gitlab"]
package all

import (
	_ "github.com/native-pkgs/prebuilts/internal/gitea"
	_ "github.com/native-pkgs/prebuilts/internal/github"
	_ "github.com/native-pkgs/prebuilts/internal/gitlab"
)
