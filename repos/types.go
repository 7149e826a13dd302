package repos

import (
	"time"

	"github.com/kbukum/bitbucket/util"
)

// Paginated is the Bitbucket Cloud pagination envelope.
type Paginated[T any] struct {
	Size     int    `json:"size"`
	Page     int    `json:"page"`
	PageLen  int    `json:"pagelen"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Values   []T    `json:"values"`
}

// HasNext reports whether another page is available.
func (p *Paginated[T]) HasNext() bool { return p.Next != "" }

// Repository is a Bitbucket Cloud repository.
type Repository struct {
	UUID        string    `json:"uuid"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"is_private"`
	Language    string    `json:"language"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
	MainBranch  *Ref      `json:"mainbranch"`
}

// MainBranchName returns the main branch name, or "" when the repository
// reports none.
func (r *Repository) MainBranchName() string {
	return util.Deref(r.MainBranch).Name
}

// Ref names a branch or tag.
type Ref struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Branch is a repository branch with its head commit.
type Branch struct {
	Name   string  `json:"name"`
	Target *Commit `json:"target"`
}

// TargetHash returns the head commit hash, or "" when the target is absent.
func (b *Branch) TargetHash() string {
	return util.Deref(b.Target).Hash
}

// Commit is a single commit.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Author  *Author   `json:"author"`
}

// Author is commit authorship information.
type Author struct {
	Raw  string   `json:"raw"`
	User *Account `json:"user"`
}

// Account is a Bitbucket user account.
type Account struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname"`
}
