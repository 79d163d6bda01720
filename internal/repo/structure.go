package repo

import (
	"io/fs"
	"path/filepath"

	"prodassist/internal/logging"
	"prodassist/internal/types"
)

// skipDirs are directory names excluded from structure walks. They carry
// generated or vendored content that only inflates prompts.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	"venv":         true,
	".venv":        true,
}

// Structure walks the checkout and returns its file and directory listing
// with paths relative to the root. Walk errors degrade to an empty structure
// rather than failing the turn.
func Structure(root string) *types.RepoStructure {
	s := &types.RepoStructure{Path: root}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			s.Directories = append(s.Directories, rel)
			return nil
		}
		s.Files = append(s.Files, rel)
		return nil
	})
	if err != nil {
		logging.RepoWarn("structure walk failed for %s: %v", root, err)
		return &types.RepoStructure{Path: root}
	}

	return s
}
