package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/wikity/internal/apperr"
	"github.com/starford/wikity/internal/parser"
)

func tempSite(t *testing.T, exclude ...string) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir, exclude...)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempSite(t)
	content := []byte("== Hello ==\nWorld\n")
	if err := s.Write("page.wiki", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("page.wiki")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempSite(t)
	if err := s.Write("a/b/c.html", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.html")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := tempSite(t)
	_, err := s.Read("nope.wiki")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempSite(t)
	_ = s.Write("del.wiki", []byte("bye"))
	if err := s.Delete("del.wiki"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.wiki"); err == nil {
		t.Error("expected error reading deleted file")
	}
	if err := s.Delete("del.wiki"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestCopy(t *testing.T) {
	s := tempSite(t)
	_ = s.Write("images/cat.png", []byte("png"))
	if err := s.Copy("images/cat.png", "out/images/cat.png"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if !s.Exists("out/images/cat.png") || s.Exists("out/images") || s.Exists("../x") {
		t.Error("Exists reports wrong state")
	}
	got, err := s.Read("out/images/cat.png")
	if err != nil {
		t.Fatalf("Read after copy: %v", err)
	}
	if string(got) != "png" {
		t.Errorf("content = %q", got)
	}
}

func TestList(t *testing.T) {
	s := tempSite(t, "templates", "out")
	_ = s.Write("a.wiki", []byte("a"))
	_ = s.Write("sub/b.wiki", []byte("b"))
	_ = s.Write("readme.txt", []byte("not wiki"))
	_ = s.Write("templates/T.wiki", []byte("t"))
	_ = s.Write("out/x.wiki", []byte("x"))
	_ = s.Write(".git/y.wiki", []byte("y"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2: %+v", len(items), items)
	}

	items, err = s.List("templates")
	if err != nil {
		t.Fatalf("List templates: %v", err)
	}
	if len(items) != 1 || items[0].Path != "templates/T.wiki" {
		t.Errorf("templates = %+v", items)
	}

	items, err = s.List("missing")
	if err != nil || len(items) != 0 {
		t.Errorf("missing dir: %v %+v", err, items)
	}
}

func TestFiles(t *testing.T) {
	s := tempSite(t)
	_ = s.Write("images/a.png", []byte("a"))
	_ = s.Write("images/nested/b.png", []byte("b"))

	files, err := s.Files("images")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 1 || files[0] != "images/a.png" {
		t.Errorf("files = %v", files)
	}
}

func TestDigestTracksContent(t *testing.T) {
	s := tempSite(t)
	empty, err := s.Digest("templates")
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	_ = s.Write("templates/T.wiki", []byte("one"))
	first, _ := s.Digest("templates")
	_ = s.Write("templates/T.wiki", []byte("two"))
	second, _ := s.Digest("templates")
	if empty == first || first == second {
		t.Errorf("digest did not change: %s %s %s", empty, first, second)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempSite(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.wiki",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); !errors.Is(err, apperr.ErrOutsideRoot) {
			t.Errorf("read %q: err = %v, want ErrOutsideRoot", p, err)
		}
		if err := s.Write(p, []byte("x")); !errors.Is(err, apperr.ErrOutsideRoot) {
			t.Errorf("write %q: err = %v, want ErrOutsideRoot", p, err)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempSite(t)
	_ = s.Write("atomic.html", []byte("original content"))
	if err := s.Write("atomic.html", []byte("updated content")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.html")
	if string(got) != "updated content" {
		t.Errorf("expected updated content, got %q", got)
	}
	entries, _ := os.ReadDir(s.root)
	if len(entries) != 1 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestSourceReadsTemplates(t *testing.T) {
	s := tempSite(t)
	_ = s.Write("templates/Hi.wiki", []byte("hello"))
	_ = s.Write("images/a.png", []byte("a"))

	src := s.Source(parser.NewConfig())
	body, err := src.ReadTemplate("Hi")
	if err != nil || body != "hello" {
		t.Errorf("ReadTemplate = %q, %v", body, err)
	}
	if !src.HasImage("a.png") {
		t.Error("HasImage(a.png) = false")
	}
}

func TestPageName(t *testing.T) {
	tests := map[string]string{
		"main page.wiki":        "Main_page",
		"guide/intro page.wiki": "Guide/Intro_page",
		"Already.wiki":          "Already",
		"élan.wiki":             "Élan",
	}
	for in, want := range tests {
		if got := PageName(in); got != want {
			t.Errorf("PageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "wikity-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
