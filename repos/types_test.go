package repos

import "testing"

func TestMainBranchName(t *testing.T) {
	repo := Repository{MainBranch: &Ref{Name: "main", Type: "branch"}}
	if got := repo.MainBranchName(); got != "main" {
		t.Errorf("MainBranchName = %q, want main", got)
	}

	var bare Repository
	if got := bare.MainBranchName(); got != "" {
		t.Errorf("MainBranchName without mainbranch = %q, want empty", got)
	}
}

func TestTargetHash(t *testing.T) {
	b := Branch{Name: "main", Target: &Commit{Hash: "abc123"}}
	if got := b.TargetHash(); got != "abc123" {
		t.Errorf("TargetHash = %q, want abc123", got)
	}

	headless := Branch{Name: "empty"}
	if got := headless.TargetHash(); got != "" {
		t.Errorf("TargetHash without target = %q, want empty", got)
	}
}

func TestHasNext(t *testing.T) {
	page := Paginated[Repository]{Next: "https://api.bitbucket.org/2.0/repositories/acme?page=2"}
	if !page.HasNext() {
		t.Error("HasNext() = false with next link")
	}
	var last Paginated[Repository]
	if last.HasNext() {
		t.Error("HasNext() = true without next link")
	}
}
