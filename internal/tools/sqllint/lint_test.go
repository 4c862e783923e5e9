package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLint(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  int
		match string
	}{
		{
			name: "marked query",
			src:  "package q\n\nconst QOk = `--sql 72e1e0f9-8fbe-4f1c-b4d2-c7eb80cca3d7\nselect 1;`\n",
			want: 0,
		},
		{
			name:  "missing marker",
			src:   "package q\n\nconst QBad = `select value from app_settings`\n",
			want:  1,
			match: "missing or invalid",
		},
		{
			name:  "create table counts as sql",
			src:   "package q\n\nconst QDDL = \"create table t (id int)\"\n",
			want:  1,
			match: "QDDL",
		},
		{
			name:  "duplicate marker",
			src:   "package q\n\nconst (\n\tQA = `--sql 72e1e0f9-8fbe-4f1c-b4d2-c7eb80cca3d7\nselect 1;`\n\tQB = `--sql 72e1e0f9-8fbe-4f1c-b4d2-c7eb80cca3d7\nselect 2;`\n)\n",
			want:  1,
			match: "already used by QA",
		},
		{
			name: "plain strings ignored",
			src:  "package q\n\nconst greeting = \"hello\"\n",
			want: 0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeGo(t, dir, "q.go", tc.src)
			vs, err := Lint([]string{dir})
			if err != nil {
				t.Fatalf("Lint: %v", err)
			}
			if len(vs) != tc.want {
				t.Fatalf("violations = %v, want %d", vs, tc.want)
			}
			if tc.match != "" && !strings.Contains(vs[0].String(), tc.match) {
				t.Fatalf("violation %q does not mention %q", vs[0].String(), tc.match)
			}
		})
	}
}

func TestLintRepositoryQueries(t *testing.T) {
	vs, err := Lint([]string{"../../sqlinline"})
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if len(vs) != 0 {
		t.Fatalf("sqlinline violations: %v", vs)
	}
}
