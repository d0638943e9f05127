package config

import "testing"

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.InitialHeapMB != 16 || o.MaxHeapMB != 256 {
		t.Errorf("default heap = %d/%d, want 16/256", o.InitialHeapMB, o.MaxHeapMB)
	}
	if !o.JITEnabled {
		t.Error("JITEnabled should default to true")
	}
	if o.SystemProps["java.version"] != "17" {
		t.Errorf("java.version = %q, want 17", o.SystemProps["java.version"])
	}
}

func TestParseProperty(t *testing.T) {
	key, value, ok := ParseProperty("-Dfoo=bar")
	if !ok || key != "foo" || value != "bar" {
		t.Errorf("ParseProperty(-Dfoo=bar) = %q, %q, %v; want foo, bar, true", key, value, ok)
	}

	if _, _, ok := ParseProperty("-Dfoo"); ok {
		t.Error("ParseProperty without '=' should report ok=false")
	}
}

func TestSetProperty(t *testing.T) {
	o := &Options{}
	if !o.SetProperty("-Duser.dir=/tmp") {
		t.Fatal("SetProperty should succeed")
	}
	if o.SystemProps["user.dir"] != "/tmp" {
		t.Errorf("user.dir = %q, want /tmp", o.SystemProps["user.dir"])
	}

	o2 := DefaultOptions()
	o2.SetProperty("-Djava.version=21")
	if o2.SystemProps["java.version"] != "21" {
		t.Errorf("SetProperty should overwrite a default: got %q, want 21", o2.SystemProps["java.version"])
	}
}

func TestJoinedClassPath(t *testing.T) {
	o := &Options{ClassPath: []string{"a", "b", "c"}}
	if got := o.JoinedClassPath(); got != "a:b:c" {
		t.Errorf("JoinedClassPath() = %q, want a:b:c", got)
	}
}
