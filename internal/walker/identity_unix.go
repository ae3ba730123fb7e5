//go:build unix

package walker

import (
	"os"
	"syscall"

	"github.com/ivoronin/hashkeep/internal/types"
)

// fillPlatformIdentity extracts device/inode/link-count identity from the
// platform stat structure, adapted from the teacher's
// internal/scanner/types.go newFileInfo.
func fillPlatformIdentity(fi *types.FileInfo, info os.FileInfo) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	fi.Dev = uint64(stat.Dev) //nolint:unconvert // platform-dependent type
	fi.Ino = stat.Ino
	fi.Nlink = uint32(stat.Nlink)
}
