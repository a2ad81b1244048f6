package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Adapter implements domain.GitInfo using go-git. Repo detection walks up
// from projectPath, so linting a package inside a larger repo still stamps
// the report.
type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (g *Adapter) open(projectPath string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
}

func (g *Adapter) IsGitRepo(projectPath string) bool {
	_, err := g.open(projectPath)
	return err == nil
}

func (g *Adapter) CommitHash(projectPath string) (string, error) {
	repo, err := g.open(projectPath)
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", projectPath, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
