package repos

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kbukum/bitbucket/validation"
)

// CommitListOptions controls commit listing.
type CommitListOptions struct {
	// Revision limits history to a branch, tag, or commit hash. Empty means
	// the repository's main branch.
	Revision string `json:"revision"`
	// PageLen is the page size (1-100).
	PageLen int `json:"pagelen" validate:"omitempty,min=1,max=100"`
	// Page is the 1-based page number.
	Page int `json:"page" validate:"omitempty,min=1"`
	// Path limits history to commits touching this file path.
	Path string `json:"path"`
}

// ListCommits returns a page of commits in a repository.
func (s *Service) ListCommits(ctx context.Context, workspace, repoSlug string, opts CommitListOptions) (*Paginated[Commit], error) {
	const op = "list commits"
	if err := requireRepo(op, workspace, repoSlug); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(opts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	suffix := []string{"commits"}
	if opts.Revision != "" {
		suffix = append(suffix, url.PathEscape(opts.Revision))
	}

	q := pageQuery(opts.PageLen, opts.Page)
	if opts.Path != "" {
		q["path"] = opts.Path
	}
	return get[Paginated[Commit]](ctx, s, op, repoPath(workspace, repoSlug, suffix...), q)
}
