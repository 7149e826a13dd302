package repos

import (
	"strings"
	"testing"

	"github.com/kbukum/bitbucket/testutil"
)

func newTestService(t *testing.T) (*Service, *testutil.Server) {
	t.Helper()
	srv := testutil.NewServer()
	t.Cleanup(srv.Close)
	return NewService(srv.Config()), srv
}

func wantValidationError(t *testing.T, err error, field string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), field) {
		t.Errorf("error %q does not mention field %q", err, field)
	}
}
