package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/auditlens/seo-audit/internal/logging"
)

// Store persists an opaque byte buffer and returns a stable retrievable reference.
type Store interface {
	Upload(ctx context.Context, data []byte, suggestedName string) (string, error)
}

// LocalStore writes artifacts to a local directory served as static files.
type LocalStore struct {
	dir     string
	baseURL string
	log     *logging.Logger
}

// NewLocalStore creates a disk-backed artifact store. baseURL is the public
// prefix under which dir is served (e.g. http://host/files).
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logging.Default().WithComponent("artifacts"),
	}, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Upload writes the buffer to disk under a collision-free name and returns
// its public URL.
func (s *LocalStore) Upload(ctx context.Context, data []byte, suggestedName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := unsafeNameChars.ReplaceAllString(suggestedName, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "artifact"
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	name = fmt.Sprintf("%s-%s%s", base, uuid.NewString()[:8], ext)

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	ref := s.baseURL + "/" + name
	s.log.Debug("stored artifact", "name", name, "bytes", len(data))
	return ref, nil
}
