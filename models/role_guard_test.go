package models

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestIsAdminRole(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{Role("admin"), true},
		{Role(" Admin "), true},
		{RoleUser, false},
		{Role(""), false},
		{Role("superadmin"), false},
	}
	for _, tt := range tests {
		if got := IsAdminRole(tt.role); got != tt.want {
			t.Errorf("IsAdminRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

// Admin checks must go through IsAdminRole; a raw string comparison anywhere else is how the
// lowercase-role bypass crept in.
var rawRoleComparison = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(==|!=)\s*"admin"`),
	regexp.MustCompile(`(?i)"admin"\s*(==|!=)`),
	regexp.MustCompile(`(?i)case\s+"admin"`),
	regexp.MustCompile(`(?i)\b(eq|ne)\s+\(?\s*(print\s+)?\.Role\)?\s+"admin"`),
}

func TestNoRawRoleComparisons(t *testing.T) {
	root := ".."
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "models") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, "_test.go") {
			return nil
		}
		if !strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, ".html") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for i, line := range strings.Split(string(raw), "\n") {
			for _, re := range rawRoleComparison {
				if re.MatchString(line) {
					t.Errorf("%s:%d compares a role string directly, use models.IsAdminRole: %s", path, i+1, strings.TrimSpace(line))
				}
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
