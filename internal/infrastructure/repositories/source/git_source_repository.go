package source

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	logger "github.com/sirupsen/logrus"

	"github.com/fabworks/fabdeploy/internal/domain/repositories"
)

// GitSourceRepository clones a Git repository into a temporary directory and
// checks out the requested branch. The clone is removed on Cleanup.
type GitSourceRepository struct {
	url     string
	branch  string
	tempDir string
}

// NewGitSourceRepository creates a git source for the given URL and branch.
func NewGitSourceRepository(url, branch string) repositories.SourceRepository {
	return &GitSourceRepository{url: url, branch: branch}
}

// Acquire clones the repository and returns the working copy root.
func (it *GitSourceRepository) Acquire(ctx context.Context) (string, error) {
	tempDir, err := os.MkdirTemp("", "fabdeploy_")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	it.tempDir = tempDir

	logger.Infof("Cloning %s (branch %s)...", it.url, it.branch)

	//nolint:exhaustruct // Minimal CloneOptions initialization with required fields only
	_, cloneErr := git.PlainCloneContext(ctx, tempDir, false, &git.CloneOptions{
		URL:           it.url,
		ReferenceName: plumbing.NewBranchReferenceName(it.branch),
		SingleBranch:  true,
		Depth:         1,
	})
	if cloneErr != nil {
		it.Cleanup()
		return "", fmt.Errorf("failed to clone %q (branch %q): %w", it.url, it.branch, cloneErr)
	}

	logger.Infof("Repository ready at %s", tempDir)
	return tempDir, nil
}

// Cleanup removes the temporary clone.
func (it *GitSourceRepository) Cleanup() {
	if it.tempDir == "" {
		return
	}
	if err := os.RemoveAll(it.tempDir); err != nil {
		logger.Warnf("Could not clean up %s: %v", it.tempDir, err)
		return
	}
	it.tempDir = ""
}

// Describe returns the source label for logging.
func (it *GitSourceRepository) Describe() string {
	return fmt.Sprintf("%s@%s", it.url, it.branch)
}
