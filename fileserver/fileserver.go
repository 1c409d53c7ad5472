// Package fileserver maps URL paths onto mounted files and directories.
package fileserver

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/basaltio/basalt/filesystem"
)

var (
	ErrMountExists = errors.New("fileserver: route already mapped")
	ErrTraversal   = errors.New("fileserver: path escapes its mount")
	ErrNoMount     = errors.New("fileserver: no mount for path")
	ErrNoFile      = errors.New("fileserver: no servable file")
)

// MountPoint binds a route to a filesystem location. Route is stored
// without leading or trailing slashes.
type MountPoint struct {
	Route string
	Path  string
	IsDir bool
}

// FileServer resolves request paths against its mount points. Mounts are
// configured before serving starts; the server is not safe for concurrent
// mutation.
type FileServer struct {
	filesystem filesystem.Filesystem
	mounts     map[string]MountPoint
}

func New(fsys filesystem.Filesystem) *FileServer {
	return &FileServer{
		filesystem: fsys,
		mounts:     make(map[string]MountPoint),
	}
}

// MapFile serves filePath for requests naming route exactly.
func (s *FileServer) MapFile(route string, filePath string) error {
	return s.mapRoute(route, filePath, false)
}

// MapDir serves files under dirPath for requests below route,
// subdirectories included.
func (s *FileServer) MapDir(route string, dirPath string) error {
	return s.mapRoute(route, dirPath, true)
}

func (s *FileServer) mapRoute(route string, fsPath string, isDir bool) error {
	key := strings.Trim(route, "/")
	if existing, found := s.mounts[key]; found {
		return fmt.Errorf("%w: %s is mapped to %s", ErrMountExists, route, existing.Path)
	}

	s.mounts[key] = MountPoint{Route: key, Path: fsPath, IsDir: isDir}
	return nil
}

// Resolve maps urlPath to the filesystem path of a mounted regular file.
// A file mount must match the whole path; otherwise the longest directory
// mount whose route prefixes the path on a segment boundary wins, and the
// remainder is joined below its directory. Paths with ".." segments are
// rejected before any mount is consulted.
func (s *FileServer) Resolve(urlPath string) (string, error) {
	segments := splitSegments(urlPath)
	for _, segment := range segments {
		if segment == ".." {
			return "", fmt.Errorf("%w: %s", ErrTraversal, urlPath)
		}
	}
	key := strings.Join(segments, "/")

	if mount, found := s.mounts[key]; found && !mount.IsDir {
		return s.regularFile(mount.Path)
	}

	var best MountPoint
	var bestFound bool
	for _, mount := range s.mounts {
		if !mount.IsDir {
			continue
		}
		if mount.Route == "" && key == "" {
			continue
		}
		if mount.Route != "" && !strings.HasPrefix(key, mount.Route+"/") {
			continue
		}
		if !bestFound || len(mount.Route) > len(best.Route) {
			best = mount
			bestFound = true
		}
	}
	if !bestFound {
		return "", fmt.Errorf("%w: %s", ErrNoMount, urlPath)
	}

	remainder := strings.TrimPrefix(key, best.Route)
	remainder = strings.Trim(remainder, "/")
	return s.regularFile(filepath.Join(best.Path, filepath.FromSlash(remainder)))
}

// ReadFile reads a path previously returned by Resolve.
func (s *FileServer) ReadFile(path string) ([]byte, error) {
	return s.filesystem.ReadFile(path)
}

func (s *FileServer) regularFile(path string) (string, error) {
	isFile, err := s.filesystem.IsFile(path)
	if err != nil {
		return "", err
	}
	if !isFile {
		return "", fmt.Errorf("%w: %s", ErrNoFile, path)
	}
	return path, nil
}

func splitSegments(urlPath string) []string {
	segments := make([]string, 0, strings.Count(urlPath, "/"))
	for _, segment := range strings.Split(urlPath, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
