package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FileSet is the sorted list of slash-separated paths, relative to the
// unit's source directory, of the regular files in one unit. Sorting is a
// plain byte-wise string sort so the order never depends on locale.
type FileSet []string

// unitFileSet lists the files belonging to unit.
func unitFileSet(unit BackupUnit, policy SplitPolicy) (FileSet, error) {
	if unit.SingleFile {
		return FileSet{filepath.Base(unit.UnitPath)}, nil
	}
	return buildFileSet(unit.UnitPath, unit.FilesOnly, policy)
}

// buildFileSet enumerates the regular files of unitPath. Symlinks, sockets,
// devices and pipes are left out. Excluded directory names are not entered.
func buildFileSet(unitPath string, filesOnly bool, policy SplitPolicy) (FileSet, error) {
	var files FileSet
	var err error
	if filesOnly {
		files, err = listDirectFiles(unitPath)
	} else {
		files, err = walkDirectory(unitPath, policy)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func listDirectFiles(dirPath string) (FileSet, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, &UnreadablePathError{Path: dirPath, Err: err}
	}

	files := make(FileSet, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}

func walkDirectory(dirPath string, policy SplitPolicy) (FileSet, error) {
	files := make(FileSet, 0)
	walkErr := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &UnreadablePathError{Path: path, Err: err}
		}
		if d.IsDir() {
			if path != dirPath && policy.excludes(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(dirPath, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})

	return files, walkErr
}
