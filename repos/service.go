package repos

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kbukum/bitbucket/config"
	"github.com/kbukum/bitbucket/logger"
	"github.com/kbukum/bitbucket/transport"
	"github.com/kbukum/bitbucket/validation"
)

// Service exposes repository operations over the transport client.
type Service struct {
	client *transport.Client
	cfg    *config.Config
	log    *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClient replaces the transport client.
func WithClient(c *transport.Client) Option {
	return func(s *Service) { s.client = c }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a Service for the given configuration.
func NewService(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.New(cfg.Logging).WithComponent("repos")
	}
	if s.client == nil {
		s.client = transport.New(cfg, transport.WithLogger(s.log))
	}
	return s
}

// perform resolves credentials fresh, dispatches, and wraps failures with
// the operation name. Kind and status pass through unchanged.
func (s *Service) perform(ctx context.Context, op string, req transport.Request) (*transport.DecodedBody, error) {
	creds := transport.ResolveCredentials(s.cfg)
	if creds == nil {
		return nil, fmt.Errorf("%s: %w", op, transport.NewAuthMissingError())
	}
	start := time.Now()
	body, err := s.client.Do(ctx, creds, req)
	if err != nil {
		s.log.Debug("operation failed", logger.ErrorFields(op, err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("operation completed", logger.DurationFields(op, time.Since(start)))
	return body, nil
}

// get dispatches a GET request and decodes the JSON response into T.
func get[T any](ctx context.Context, s *Service, op, path string, query map[string]string) (*T, error) {
	body, err := s.perform(ctx, op, transport.Request{Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	var out T
	if err := body.Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// post dispatches a POST request with a JSON body and decodes the response into T.
func post[T any](ctx context.Context, s *Service, op, path string, payload any) (*T, error) {
	body, err := s.perform(ctx, op, transport.Request{
		Method: "POST",
		Path:   path,
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}
	var out T
	if err := body.Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// requireWorkspace validates the positional workspace argument.
func requireWorkspace(op, workspace string) error {
	if err := validation.New().Required("workspace", workspace).Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// requireRepo validates the positional workspace and repository arguments.
func requireRepo(op, workspace, repoSlug string) error {
	v := validation.New()
	v.Required("workspace", workspace)
	v.Required("repo_slug", repoSlug)
	if err := v.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// repoPath builds /repositories/{workspace}/{repo_slug}[/suffix...] with
// escaped segments.
func repoPath(workspace, repoSlug string, suffix ...string) string {
	path := "/repositories/" + url.PathEscape(workspace)
	if repoSlug != "" {
		path += "/" + url.PathEscape(repoSlug)
	}
	for _, s := range suffix {
		path += "/" + s
	}
	return path
}

// pageQuery converts pagination options into query parameters.
func pageQuery(pageLen, page int) map[string]string {
	q := make(map[string]string)
	if pageLen > 0 {
		q["pagelen"] = strconv.Itoa(pageLen)
	}
	if page > 0 {
		q["page"] = strconv.Itoa(page)
	}
	return q
}
