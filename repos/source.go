package repos

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kbukum/bitbucket/transport"
	"github.com/kbukum/bitbucket/validation"
)

// WriteFileOptions describes one file write (commit) through the source API.
type WriteFileOptions struct {
	// Path is the file path within the repository.
	Path string `json:"path" validate:"required"`
	// Content is the full new file content.
	Content string `json:"content"`
	// Message is the commit message.
	Message string `json:"message" validate:"required"`
	// Branch is the branch to commit to.
	Branch string `json:"branch" validate:"required"`
	// Author overrides commit authorship, in "Name <email>" form.
	Author string `json:"author"`
}

// GetFileContent returns the raw content of a file at a revision. The
// source endpoint serves file content verbatim; JSON files come back
// exactly as stored, not re-encoded.
func (s *Service) GetFileContent(ctx context.Context, workspace, repoSlug, revision, filePath string) (string, error) {
	const op = "get file content"
	if err := requireRepo(op, workspace, repoSlug); err != nil {
		return "", err
	}
	v := validation.New()
	v.Required("revision", revision)
	v.Required("path", filePath)
	if err := v.Error(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	suffix := []string{"src", url.PathEscape(revision), escapeFilePath(filePath)}
	body, err := s.perform(ctx, op, transport.Request{
		Path: repoPath(workspace, repoSlug, suffix...),
	})
	if err != nil {
		return "", err
	}
	return body.Text(), nil
}

// WriteFile commits new file content to a branch. The source endpoint takes
// form-encoded fields, so the body is pre-encoded and the content type set
// explicitly.
func (s *Service) WriteFile(ctx context.Context, workspace, repoSlug string, opts WriteFileOptions) error {
	const op = "write file"
	if err := requireRepo(op, workspace, repoSlug); err != nil {
		return err
	}
	if err := validation.ValidateStruct(opts); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	form := url.Values{}
	form.Set(opts.Path, opts.Content)
	form.Set("message", opts.Message)
	form.Set("branch", opts.Branch)
	if opts.Author != "" {
		form.Set("author", opts.Author)
	}

	_, err := s.perform(ctx, op, transport.Request{
		Method:  "POST",
		Path:    repoPath(workspace, repoSlug, "src"),
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:    form.Encode(),
	})
	return err
}

// escapeFilePath escapes each path segment while keeping separators.
func escapeFilePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
