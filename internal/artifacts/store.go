// Package artifacts stores run artifacts on the local filesystem.
//
// Every run owns a directory <root>/<experiment id>/<run id>/artifacts,
// addressed by a file:// URI recorded on the run. Artifacts may also be
// addressed as runs:/<run id>/<path>, which is resolved through the run store.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/log"
)

const (
	fileScheme = "file://"
	runsScheme = "runs:/"
)

// Artifact store errors
var (
	ErrPathEscapesRoot   = errors.New("artifact path escapes the run root")
	ErrUnsupportedScheme = errors.New("unsupported artifact URI scheme")
)

// RunLookup resolves a run id to its record.
type RunLookup interface {
	GetRun(ctx context.Context, runID string) (*domaintrack.Run, error)
}

// LocalStore writes and resolves artifacts below a root directory.
type LocalStore struct {
	root string
	runs RunLookup
}

// NewLocalStore creates a store rooted at root, creating it if needed.
// runs may be nil, in which case runs:/ URIs cannot be resolved.
func NewLocalStore(root string, runs RunLookup) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}
	return &LocalStore{root: abs, runs: runs}, nil
}

// Root returns the absolute root directory.
func (s *LocalStore) Root() string { return s.root }

// ExperimentURI returns the artifact location of an experiment.
func (s *LocalStore) ExperimentURI(experimentID string) string {
	return toURI(filepath.Join(s.root, experimentID))
}

// RunRoot returns the artifact URI of a run.
func (s *LocalStore) RunRoot(experimentID, runID string) string {
	return toURI(filepath.Join(s.root, experimentID, runID, "artifacts"))
}

// WriteText writes text to path below the run artifact URI and returns the
// URI of the written file.
func (s *LocalStore) WriteText(artifactURI, path, text string) (string, error) {
	return s.write(artifactURI, path, []byte(text))
}

// WriteJSON writes v as indented JSON to path below the run artifact URI.
func (s *LocalStore) WriteJSON(artifactURI, path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return s.write(artifactURI, path, append(data, '\n'))
}

// CopyFile copies the local file src into dstDir below the run artifact URI,
// keeping its base name. dstDir may be empty.
func (s *LocalStore) CopyFile(artifactURI, src, dstDir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", src)
	}

	dst, err := s.target(artifactURI, filepath.Join(dstDir, filepath.Base(src)))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", dst, err)
	}

	log.Debug(log.CatArtifact, "Copied artifact", "src", src, "dst", dst)
	return toURI(dst), nil
}

// Resolve maps a file:// or runs:/<run id>/<path> URI to a local path.
func (s *LocalStore) Resolve(ctx context.Context, uri string) (string, error) {
	switch {
	case strings.HasPrefix(uri, fileScheme):
		p, err := fromURI(uri)
		if err != nil {
			return "", err
		}
		return p, nil
	case strings.HasPrefix(uri, runsScheme):
		if s.runs == nil {
			return "", fmt.Errorf("%w: no run store to resolve %s", ErrUnsupportedScheme, uri)
		}
		runID, rel, _ := strings.Cut(strings.TrimPrefix(uri, runsScheme), "/")
		if runID == "" {
			return "", fmt.Errorf("malformed runs:/ URI %q", uri)
		}
		run, err := s.runs.GetRun(ctx, runID)
		if err != nil {
			return "", err
		}
		return s.target(run.ArtifactURI, rel)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, uri)
	}
}

// Exists reports whether the artifact behind uri is present.
func (s *LocalStore) Exists(ctx context.Context, uri string) (bool, error) {
	p, err := s.Resolve(ctx, uri)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	return true, nil
}

func (s *LocalStore) write(artifactURI, path string, data []byte) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("artifact path is required")
	}
	dst, err := s.target(artifactURI, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	log.Debug(log.CatArtifact, "Wrote artifact", "path", dst, "bytes", len(data))
	return toURI(dst), nil
}

// target joins rel onto the run directory behind artifactURI and rejects
// results outside it.
func (s *LocalStore) target(artifactURI, rel string) (string, error) {
	base, err := fromURI(artifactURI)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q is absolute", ErrPathEscapesRoot, rel)
	}
	joined := filepath.Join(base, filepath.FromSlash(rel))
	within, err := filepath.Rel(base, joined)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesRoot, rel)
	}
	return joined, nil
}

func toURI(path string) string {
	return fileScheme + filepath.ToSlash(path)
}

func fromURI(uri string) (string, error) {
	p, ok := strings.CutPrefix(uri, fileScheme)
	if !ok || p == "" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, uri)
	}
	return filepath.Clean(filepath.FromSlash(p)), nil
}
