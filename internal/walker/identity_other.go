//go:build !unix

package walker

import (
	"os"

	"github.com/ivoronin/hashkeep/internal/types"
)

// fillPlatformIdentity is a no-op on non-unix platforms: hashkeep still
// works, but hardlink-aware deduplication (C9) falls back to treating
// every file as its own inode.
func fillPlatformIdentity(fi *types.FileInfo, info os.FileInfo) {}
