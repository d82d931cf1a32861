// Package library turns files on disk into queue items and keeps queued
// items in sync with the files they point to.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"

	"github.com/llehouerou/reprise/internal/player"
	"github.com/llehouerou/reprise/internal/playlist"
)

// ContentID returns the stable identity of the media at path. The same
// file always maps to the same ID, across runs.
func ContentID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String()
}

// ItemFromFile reads the tags and length of the file at path. Missing tags
// fall back to the file name; a length that cannot be probed is left zero.
// The returned item has no InstanceID.
func ItemFromFile(path string) (playlist.Item, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return playlist.Item{}, err
	}
	if !player.Supported(abs) {
		return playlist.Item{}, fmt.Errorf("%w: %s", player.ErrUnsupportedFormat, filepath.Ext(abs))
	}

	f, err := os.Open(abs)
	if err != nil {
		return playlist.Item{}, err
	}
	defer f.Close()

	item := playlist.Item{
		ContentID:      ContentID(abs),
		SourceLocator:  abs,
		ArtworkLocator: FindAlbumArt(abs),
	}

	if m, err := tag.ReadFrom(f); err == nil {
		item.Title = m.Title()
		item.Author = m.Artist()
		if item.Author == "" {
			item.Author = m.AlbumArtist()
		}
	}
	if item.Title == "" {
		base := filepath.Base(abs)
		item.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if d, err := player.Probe(abs); err == nil {
		item.Duration = d
	}
	return item, nil
}

// Collect expands paths into queue items. Directories are walked
// recursively and their playable files added in lexical order. Files that
// cannot be read are skipped and reported in the returned error.
func Collect(paths []string) ([]playlist.Item, error) {
	var (
		items []playlist.Item
		errs  []error
	)
	for _, p := range paths {
		files, err := expand(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, file := range files {
			item, err := ItemFromFile(file)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", file, err))
				continue
			}
			items = append(items, item)
		}
	}
	return items, errors.Join(errs...)
}

// expand returns path itself for a file, or the playable files below it
// for a directory.
func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		// Skip unreadable entries, keep scanning the rest
		if walkErr != nil {
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if !d.IsDir() && player.Supported(p) {
			files = append(files, p)
		}
		return nil
	})
	slices.Sort(files)
	return files, err
}
