package tour

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// tourFilePattern matches every tour file below the repository root.
const tourFilePattern = "**/*.{json,yaml,yml}"

var tourExtensions = []string{".json", ".yaml", ".yml"}

// FileRepository serves tours from a directory of descriptor files, one
// file per tour named {tourID}.json, .yaml or .yml.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a repository rooted at dir.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Dir returns the repository root.
func (r *FileRepository) Dir() string { return r.dir }

func (r *FileRepository) Load(ctx context.Context, tourID string) (*Tour, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{TourID: tourID, Err: err}
	}
	if tourID == "" || !filepath.IsLocal(filepath.FromSlash(tourID)) {
		return nil, &LoadError{TourID: tourID, Err: fmt.Errorf("invalid tour id")}
	}

	for _, ext := range tourExtensions {
		path := filepath.Join(r.dir, filepath.FromSlash(tourID)+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &LoadError{TourID: tourID, Err: fmt.Errorf("reading %s: %w", path, err)}
		}
		return DecodeFile(tourID, path, data)
	}
	return nil, &LoadError{TourID: tourID, Err: ErrNotFound}
}

// List returns the ids of all tour files below the root, sorted.
func (r *FileRepository) List() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(r.dir), tourFilePattern)
	if err != nil {
		return nil, fmt.Errorf("listing tours in %s: %w", r.dir, err)
	}

	seen := make(map[string]bool, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := strings.TrimSuffix(m, filepath.Ext(m))
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DecodeFile parses a tour file, picking the format from its extension.
func DecodeFile(tourID, path string, data []byte) (*Tour, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decode(tourID, data, yaml.Unmarshal)
	default:
		return decode(tourID, data, json.Unmarshal)
	}
}
