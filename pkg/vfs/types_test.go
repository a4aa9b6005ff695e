package vfs

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/":                  "/",
		"":                   "/",
		"SIASUS":             "/SIASUS",
		"/SIASUS/":           "/SIASUS",
		"/dissemin/publicos": "/dissemin/publicos",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitPath(t *testing.T) {
	parent, name := SplitPath("/dissemin/publicos/SIASUS")
	if parent != "/dissemin/publicos" || name != "SIASUS" {
		t.Errorf("got (%q, %q)", parent, name)
	}

	parent, name = SplitPath("/SIASUS")
	if parent != "/" || name != "SIASUS" {
		t.Errorf("got (%q, %q)", parent, name)
	}

	parent, name = SplitPath("/")
	if parent != "/" || name != "/" {
		t.Errorf("root split = (%q, %q)", parent, name)
	}
}

func TestNewFile(t *testing.T) {
	f := NewFile("/SIM/CID10/DORES", "DORSP2022.dbc", FileInfo{Size: 10})
	if f.Name != "DORSP2022" {
		t.Errorf("name = %q", f.Name)
	}
	if f.Extension != ".dbc" {
		t.Errorf("extension = %q", f.Extension)
	}
	if f.Path != "/SIM/CID10/DORES/DORSP2022.dbc" {
		t.Errorf("path = %q", f.Path)
	}
	if f.ParentPath != "/SIM/CID10/DORES" {
		t.Errorf("parent = %q", f.ParentPath)
	}
}

func TestHasExtension(t *testing.T) {
	f := NewFile("/x", "DORSP2022.DBC", FileInfo{})
	for _, ext := range []string{".dbc", "dbc", "DBC", ".DBC"} {
		if !f.HasExtension(ext) {
			t.Errorf("HasExtension(%q) = false", ext)
		}
	}
	if f.HasExtension(".dbf") {
		t.Error("HasExtension(.dbf) = true")
	}
}

func TestListingEncodeDecode(t *testing.T) {
	f := NewFile("/x", "a.dbc", FileInfo{Size: 7})
	l := Listing{
		"a.dbc": {File: &f},
		"Dados": {Dir: &Directory{Path: "/x/Dados", Name: "Dados", Provider: "ftp"}},
	}

	payload, err := l.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeListing(payload)
	if err != nil {
		t.Fatalf("DecodeListing: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d entries, want 2", len(decoded))
	}
	if decoded["a.dbc"].File == nil || decoded["a.dbc"].File.Info.Size != 7 {
		t.Error("file entry lost in round trip")
	}
	if !decoded["Dados"].IsDir() {
		t.Error("dir entry lost in round trip")
	}
}
