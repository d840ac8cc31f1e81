package du

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/sizemap/pkg/core/item"
	errs "github.com/matzehuels/sizemap/pkg/errors"
)

// Scan walks the directory tree at dir and returns one entry per file and
// directory, like "du -ab". Paths are absolute and slash-separated; sizes
// are apparent sizes in bytes, and a directory's size is the total of
// everything below it. Symbolic links are listed with their own size and
// not followed.
//
// Entries are returned in walk order (lexical, parents before children).
// Subdirectories that cannot be read are listed with the size gathered so
// far and otherwise skipped, as du does. Scan stops with ctx.Err() when ctx
// is cancelled.
func Scan(ctx context.Context, dir string) ([]item.Entry, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", dir)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "stat %s", dir)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.ErrCodeInvalidPath, "%s is not a directory", dir)
	}

	var (
		entries []item.Entry
		dirs    []int // indexes of the directories enclosing the current path
	)

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if p == root {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		for len(dirs) > 0 && !within(p, entries[dirs[len(dirs)-1]].Path) {
			dirs = dirs[:len(dirs)-1]
		}

		slashed := filepath.ToSlash(p)
		if d.IsDir() {
			dirs = append(dirs, len(entries))
			entries = append(entries, item.Entry{Path: slashed})
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		size := fi.Size()
		entries = append(entries, item.Entry{Path: slashed, Size: size})
		for _, i := range dirs {
			entries[i].Size += size
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "scan %s", dir)
	}
	return entries, nil
}

// within reports whether p lies below the directory with slash path dir.
func within(p, dir string) bool {
	p = filepath.ToSlash(p)
	if dir == "/" {
		return strings.HasPrefix(p, "/") && p != "/"
	}
	return strings.HasPrefix(p, dir+"/")
}
