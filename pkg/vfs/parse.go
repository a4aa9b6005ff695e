package vfs

import (
	"strconv"
	"strings"
	"time"
)

// listingTimeLayout matches the archive's MS-DOS style timestamps,
// e.g. "12-01-23 02:30PM". Two-digit years, 12-hour clock.
const listingTimeLayout = "01-02-06 03:04PM"

// dirToken marks a directory line. The comparison is case sensitive;
// the archive emits it exactly like this.
const dirToken = "<DIR>"

// ParseLine parses one raw listing line against the archive grammar:
//
//	MM-DD-YY HH:MMAM/PM <DIR>   name     (directory)
//	MM-DD-YY HH:MMAM/PM size    name     (file)
//
// Unparseable lines (banners, blanks, status noise) return ok=false
// and are meant to be skipped, never treated as an error. A file line
// whose size token is not an unsigned integer is still accepted, with
// the token preserved as text.
func ParseLine(line, dirPath string) (name string, entry DirectoryEntry, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return "", DirectoryEntry{}, false
	}

	stamp := fields[0] + " " + fields[1]
	modify, err := time.Parse(listingTimeLayout, stamp)
	if err != nil {
		// Some servers drop the leading zero on the hour.
		modify, err = time.Parse("01-02-06 3:04PM", stamp)
		if err != nil {
			return "", DirectoryEntry{}, false
		}
	}

	// The name is the raw remainder of the line after the size or
	// <DIR> column; whitespace runs inside it belong to the name.
	rest := line
	for i := 0; i < 3; i++ {
		rest = strings.TrimLeft(rest, " \t")
		rest = rest[len(fields[i]):]
	}
	name = strings.TrimLeft(rest, " \t")

	if fields[2] == dirToken {
		dir := &Directory{
			Path: JoinPath(dirPath, name),
			Name: name,
		}
		return name, DirectoryEntry{Dir: dir}, true
	}

	info := FileInfo{Modify: modify}
	if size, err := strconv.ParseUint(fields[2], 10, 63); err == nil {
		info.Size = int64(size)
	} else {
		info.SizeText = fields[2]
	}

	file := NewFile(dirPath, name, info)
	return name, DirectoryEntry{File: &file}, true
}

// DedupRule suppresses the legacy variant of a file when the
// compressed variant of the same stem is present in a listing. The
// exact matching key is inferred from server behavior, so it stays
// configurable.
type DedupRule struct {
	Legacy     string // suffix of the variant to drop, e.g. ".dbf"
	Compressed string // suffix of the variant to keep, e.g. ".dbc"
}

// DefaultDedupRule prefers compressed .dbc files over their .dbf
// counterparts, matching what the archive serves.
var DefaultDedupRule = DedupRule{Legacy: ".dbf", Compressed: ".dbc"}

// Apply removes legacy-variant entries from l when the compressed
// variant of the same stem exists. Matching is case insensitive.
func (r DedupRule) Apply(l Listing) {
	if r.Legacy == "" || r.Compressed == "" {
		return
	}

	upper := make(map[string]bool, len(l))
	for name := range l {
		upper[strings.ToUpper(name)] = true
	}

	legacy := strings.ToUpper(r.Legacy)
	compressed := strings.ToUpper(r.Compressed)
	for name := range l {
		un := strings.ToUpper(name)
		if strings.HasSuffix(un, legacy) && upper[strings.TrimSuffix(un, legacy)+compressed] {
			delete(l, name)
		}
	}
}
