package classpath

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestDirEntryFind(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "com", "example"), 0o755); err != nil {
		t.Fatal(err)
	}
	classPath := filepath.Join(dir, "com", "example", "Hello.class")
	if err := os.WriteFile(classPath, []byte("fake-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	entry := DirEntry{Root: dir}
	data, err := entry.Find("com/example/Hello")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if string(data) != "fake-bytes" {
		t.Errorf("Find returned %q, want fake-bytes", data)
	}
}

func TestDirEntryFindMissing(t *testing.T) {
	entry := DirEntry{Root: t.TempDir()}
	if _, err := entry.Find("Nope"); err == nil {
		t.Error("Find should fail for a missing class file")
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestJarEntryFind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.jar")
	writeZip(t, path, map[string]string{"pkg/Thing.class": "thing-bytes"})

	j, err := OpenJar(path)
	if err != nil {
		t.Fatalf("OpenJar: %v", err)
	}
	data, err := j.Find("pkg/Thing")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if string(data) != "thing-bytes" {
		t.Errorf("Find returned %q, want thing-bytes", data)
	}
	if _, err := j.Find("pkg/Missing"); err == nil {
		t.Error("Find should fail for an absent entry")
	}
}

func TestModuleEntryFindSkipsJmodHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "java.base.jmod")
	zipPath := path + ".tmp"
	writeZip(t, zipPath, map[string]string{"classes/java/lang/Object.class": "object-bytes"})

	zipData, err := os.ReadFile(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	jmodData := append([]byte("JM\x01\x00"), zipData...)
	if err := os.WriteFile(path, jmodData, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := OpenModule(path)
	if err != nil {
		t.Fatalf("OpenModule: %v", err)
	}
	data, err := m.Find("java/lang/Object")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if string(data) != "object-bytes" {
		t.Errorf("Find returned %q, want object-bytes", data)
	}
}

func TestOpenDispatchesBySuffix(t *testing.T) {
	dir := t.TempDir()
	jarPath := filepath.Join(dir, "a.jar")
	writeZip(t, jarPath, map[string]string{"X.class": "x"})

	e, err := Open(jarPath)
	if err != nil {
		t.Fatalf("Open(.jar): %v", err)
	}
	if _, ok := e.(*JarEntry); !ok {
		t.Errorf("Open(.jar) returned %T, want *JarEntry", e)
	}

	e, err = Open(dir)
	if err != nil {
		t.Fatalf("Open(dir): %v", err)
	}
	if _, ok := e.(DirEntry); !ok {
		t.Errorf("Open(dir) returned %T, want DirEntry", e)
	}
}

func TestOpenAllSplitsOnColonInOrder(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	entries, err := OpenAll(dir1 + ":" + dir2)
	if err != nil {
		t.Fatalf("OpenAll: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("OpenAll returned %d entries, want 2", len(entries))
	}
	if entries[0].String() != dir1 || entries[1].String() != dir2 {
		t.Errorf("OpenAll order = [%s, %s], want [%s, %s]", entries[0], entries[1], dir1, dir2)
	}
}

func TestOpenAllSkipsEmptySegments(t *testing.T) {
	dir := t.TempDir()
	entries, err := OpenAll(dir + "::" + dir)
	if err != nil {
		t.Fatalf("OpenAll: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("OpenAll should skip empty ':' segments, got %d entries", len(entries))
	}
}
