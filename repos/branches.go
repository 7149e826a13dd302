package repos

import (
	"context"
	"fmt"

	"github.com/kbukum/bitbucket/validation"
)

// BranchListOptions controls branch listing.
type BranchListOptions struct {
	// PageLen is the page size (1-100).
	PageLen int `json:"pagelen" validate:"omitempty,min=1,max=100"`
	// Page is the 1-based page number.
	Page int `json:"page" validate:"omitempty,min=1"`
	// Query filters branches by name, e.g. `name~"release"`.
	Query string `json:"q"`
	// Sort orders results, e.g. "-name".
	Sort string `json:"sort"`
}

// CreateBranchOptions names the branch to create and its target commit.
type CreateBranchOptions struct {
	// Name is the new branch name.
	Name string `json:"name" validate:"required"`
	// Target is the commit hash the branch starts from.
	Target string `json:"target" validate:"required"`
}

// ListBranches returns a page of branches in a repository.
func (s *Service) ListBranches(ctx context.Context, workspace, repoSlug string, opts BranchListOptions) (*Paginated[Branch], error) {
	const op = "list branches"
	if err := requireRepo(op, workspace, repoSlug); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(opts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := pageQuery(opts.PageLen, opts.Page)
	if opts.Query != "" {
		q["q"] = opts.Query
	}
	if opts.Sort != "" {
		q["sort"] = opts.Sort
	}
	return get[Paginated[Branch]](ctx, s, op, repoPath(workspace, repoSlug, "refs", "branches"), q)
}

// CreateBranch creates a branch pointing at the target commit.
func (s *Service) CreateBranch(ctx context.Context, workspace, repoSlug string, opts CreateBranchOptions) (*Branch, error) {
	const op = "create branch"
	if err := requireRepo(op, workspace, repoSlug); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(opts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payload := map[string]any{
		"name":   opts.Name,
		"target": map[string]string{"hash": opts.Target},
	}
	return post[Branch](ctx, s, op, repoPath(workspace, repoSlug, "refs", "branches"), payload)
}
