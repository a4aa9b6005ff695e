// Package vfs unifies access to hierarchical directory trees on local
// disk and on the remote archive behind one provider interface, and
// builds a lazily-populated tree model on top of it.
package vfs

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"
)

// FileInfo carries the metadata the archive reports for a file. Size
// is authoritative only when the listing carried a numeric token;
// otherwise SizeText preserves the token verbatim and Size is zero.
// A size is never fabricated.
type FileInfo struct {
	Size     int64     `json:"size"`
	SizeText string    `json:"size_text,omitempty"`
	Modify   time.Time `json:"modify"`
}

// SizeKnown reports whether Size holds a real byte count.
func (i FileInfo) SizeKnown() bool {
	return i.SizeText == ""
}

// File describes one remote or local file.
type File struct {
	Name       string   `json:"name"`
	Extension  string   `json:"extension"`
	Basename   string   `json:"basename"`
	Path       string   `json:"path"`
	ParentPath string   `json:"parent_path"`
	Info       FileInfo `json:"info"`
}

// NewFile builds a File from its parent directory path and basename.
func NewFile(dirPath, basename string, info FileInfo) File {
	ext := path.Ext(basename)
	full := dirPath + "/" + basename
	if strings.HasSuffix(dirPath, "/") {
		full = dirPath + basename
	}
	return File{
		Name:       strings.TrimSuffix(basename, ext),
		Extension:  ext,
		Basename:   basename,
		Path:       full,
		ParentPath: path.Dir(full),
		Info:       info,
	}
}

// HasExtension reports whether the file carries ext, compared without
// case and with or without the leading dot.
func (f File) HasExtension(ext string) bool {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.EqualFold(f.Extension, ext)
}

// Directory describes one directory node without its contents.
type Directory struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// DirectoryEntry is a tagged union: exactly one of File or Dir is set.
type DirectoryEntry struct {
	File *File      `json:"file,omitempty"`
	Dir  *Directory `json:"dir,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e DirectoryEntry) IsDir() bool { return e.Dir != nil }

// Name returns the entry's basename.
func (e DirectoryEntry) Name() string {
	if e.Dir != nil {
		return e.Dir.Name
	}
	if e.File != nil {
		return e.File.Basename
	}
	return ""
}

// Listing maps basenames to entries for one directory at a point in
// time. Keys are unique; order is irrelevant.
type Listing map[string]DirectoryEntry

// Encode serializes the listing for the content cache.
func (l Listing) Encode() (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("encode listing: %w", err)
	}
	return string(data), nil
}

// DecodeListing reverses Encode.
func DecodeListing(payload string) (Listing, error) {
	var l Listing
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return l, nil
}

// NormalizePath prepends a leading slash and trims a trailing one,
// leaving the root untouched.
func NormalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// SplitPath splits a normalized path into parent path and basename.
// The root splits into itself.
func SplitPath(p string) (parent, name string) {
	if p == "/" {
		return "/", "/"
	}
	parent, name = path.Split(p)
	if len(parent) > 1 {
		parent = strings.TrimSuffix(parent, "/")
	}
	if parent == "" {
		parent = "/"
	}
	return parent, name
}

// JoinPath appends name to a directory path without doubling slashes.
func JoinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
