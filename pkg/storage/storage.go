package storage

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Key builds a unique object key under prefix, keeping a readable, ASCII-only
// form of the original name. ext, when set, replaces the original extension.
func Key(prefix, filename, ext string) string {
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	base := SanitizeFilename(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return path.Join(prefix, uuid.NewString()[:8]+"_"+base+ext)
}

// SanitizeFilename keeps ASCII letters, digits, '-' and '_', and turns spaces into '_'.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ReplaceAll(name, " ", "_") {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}
