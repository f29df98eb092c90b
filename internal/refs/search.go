package refs

import (
	"context"
	"path/filepath"

	"github.com/dshills/texprettify/internal/project/ignore"
	"github.com/dshills/texprettify/internal/project/vfs"
)

// FindAuxFiles lists every .aux file under workspace, skipping ignored
// directories, in lexical walk order.
func FindAuxFiles(ctx context.Context, fsys vfs.FS, skip *ignore.Matcher, workspace string) ([]string, error) {
	var files []string
	err := fsys.WalkDir(workspace, func(p string, info vfs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			return nil
		}
		if skip != nil && skip.MatchUnder(workspace, p, info.IsDir()) {
			if info.IsDir() {
				return vfs.SkipDir
			}
			return nil
		}
		if !info.IsDir() && filepath.Ext(p) == ".aux" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
