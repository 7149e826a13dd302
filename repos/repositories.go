package repos

import (
	"context"
	"fmt"

	"github.com/kbukum/bitbucket/validation"
)

// ListOptions controls repository listing.
type ListOptions struct {
	// PageLen is the page size (1-100).
	PageLen int `json:"pagelen" validate:"omitempty,min=1,max=100"`
	// Page is the 1-based page number.
	Page int `json:"page" validate:"omitempty,min=1"`
	// Sort orders results, e.g. "-updated_on".
	Sort string `json:"sort"`
	// Query filters results with Bitbucket query syntax, e.g. `name~"api"`.
	Query string `json:"q"`
	// Role filters by the caller's role on the repository.
	Role string `json:"role" validate:"omitempty,oneof=owner admin contributor member"`
}

func (o ListOptions) query() map[string]string {
	q := pageQuery(o.PageLen, o.Page)
	if o.Sort != "" {
		q["sort"] = o.Sort
	}
	if o.Query != "" {
		q["q"] = o.Query
	}
	if o.Role != "" {
		q["role"] = o.Role
	}
	return q
}

// List returns a page of repositories in a workspace.
func (s *Service) List(ctx context.Context, workspace string, opts ListOptions) (*Paginated[Repository], error) {
	const op = "list repositories"
	if err := requireWorkspace(op, workspace); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(opts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return get[Paginated[Repository]](ctx, s, op, repoPath(workspace, ""), opts.query())
}

// Get returns a single repository.
func (s *Service) Get(ctx context.Context, workspace, repoSlug string) (*Repository, error) {
	const op = "get repository"
	if err := requireRepo(op, workspace, repoSlug); err != nil {
		return nil, err
	}
	return get[Repository](ctx, s, op, repoPath(workspace, repoSlug), nil)
}
