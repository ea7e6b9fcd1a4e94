// Package collect walks a dropped directory tree and groups accepted image
// files per folder.
package collect

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/book-expert/logger"
)

// ErrNoImagesFound is returned when the walk finishes without a single
// accepted image file anywhere in the tree. This is the only collector
// outcome surfaced to the user as a blocking message.
var ErrNoImagesFound = errors.New("no images found")

// MaxDepth is the default nesting depth limit. Subtrees below it are skipped
// and logged, never treated as errors.
const MaxDepth = 4

// PathSeparator joins ancestor folder names into a folder identifier.
const PathSeparator = "/"

// acceptedExtensions is the image extension allow-list, lowercase with dot.
var acceptedExtensions = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff"}

// FileEntry is one accepted image file found during the walk.
type FileEntry struct {
	Name     string
	Path     string
	ByteSize int64
}

// Folder is one directory that contained at least one accepted image file.
// Files are in natural filename order.
type Folder struct {
	Title string
	Path  string
	Depth int
	Files []FileEntry
}

// Collector walks directory trees up to a bounded depth.
type Collector struct {
	log      *logger.Logger
	maxDepth int
}

// New creates a collector. A non-positive maxDepth falls back to MaxDepth.
func New(maxDepth int, log *logger.Logger) *Collector {
	if maxDepth <= 0 {
		maxDepth = MaxDepth
	}

	return &Collector{log: log, maxDepth: maxDepth}
}

// workItem is one directory pending a visit, with the identifier path built
// from ancestor folder names.
type workItem struct {
	dirPath string
	idPath  string
	depth   int
}

// Collect walks the tree rooted at rootDir with an explicit worklist and
// returns one folder record per directory containing at least one accepted
// file. Unreadable directories are skipped with a warning; directories beyond
// the depth limit are skipped silently except for a log line. An entirely
// empty result yields ErrNoImagesFound.
func (c *Collector) Collect(rootDir string) ([]Folder, error) {
	var folders []Folder

	queue := []workItem{{dirPath: rootDir, idPath: filepath.Base(rootDir), depth: 1}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.depth > c.maxDepth {
			c.log.Warn("Skipping '%s': nested deeper than %d levels", item.dirPath, c.maxDepth)

			continue
		}

		folder, children := c.visitDirectory(item)
		if len(folder.Files) > 0 {
			folders = append(folders, folder)
		}

		queue = append(queue, children...)
	}

	if len(folders) == 0 {
		return nil, ErrNoImagesFound
	}

	return folders, nil
}

// visitDirectory partitions one directory's entries into accepted files and
// nested directories. Accepted files come back sorted in natural order.
func (c *Collector) visitDirectory(item workItem) (Folder, []workItem) {
	folder := Folder{
		Title: filepath.Base(item.dirPath),
		Path:  item.idPath,
		Depth: item.depth,
		Files: nil,
	}

	entries, readErr := os.ReadDir(item.dirPath)
	if readErr != nil {
		c.log.Warn("Skipping unreadable directory '%s': %v", item.dirPath, readErr)

		return folder, nil
	}

	var children []workItem

	for _, entry := range entries {
		if entry.IsDir() {
			children = append(children, workItem{
				dirPath: filepath.Join(item.dirPath, entry.Name()),
				idPath:  item.idPath + PathSeparator + entry.Name(),
				depth:   item.depth + 1,
			})

			continue
		}

		if !Accepted(entry.Name()) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			c.log.Warn("Skipping unreadable file '%s': %v", entry.Name(), infoErr)

			continue
		}

		folder.Files = append(folder.Files, FileEntry{
			Name:     entry.Name(),
			Path:     filepath.Join(item.dirPath, entry.Name()),
			ByteSize: info.Size(),
		})
	}

	sort.SliceStable(folder.Files, func(i, j int) bool {
		return NaturalLess(folder.Files[i].Name, folder.Files[j].Name)
	})

	return folder, children
}

// Accepted reports whether the filename carries an allowed image extension.
// The check is case-insensitive.
func Accepted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, accepted := range acceptedExtensions {
		if ext == accepted {
			return true
		}
	}

	return false
}
