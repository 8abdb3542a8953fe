// Package inputs turns command-line tokens into the ordered list of image
// files to process.
package inputs

import (
	"path/filepath"
	"strings"
)

// Extensions lists the supported image file extensions, lowercase.
var Extensions = []string{".png", ".jpg", ".jpeg", ".tiff", ".bmp", ".gif"}

// IsSupported reports whether name has a supported image extension,
// ignoring case. A bare extension such as ".png" is a hidden file with no
// extension, not an image.
func IsSupported(name string) bool {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if strings.TrimSuffix(base, ext) == "" {
		return false
	}
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// HasWildcard reports whether token should be expanded as a glob pattern.
// Only '*' and '?' trigger expansion; a token such as "scan[1].png" is
// taken literally.
func HasWildcard(token string) bool {
	return strings.ContainsAny(token, "*?")
}

// Expand expands glob tokens against the filesystem and passes other
// tokens through unchanged, even when they do not exist. Order and
// duplicates are preserved; a malformed pattern expands to nothing.
// Wildcards do not match hidden files unless the pattern's file name
// itself starts with a dot.
func Expand(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		if !HasWildcard(tok) {
			out = append(out, tok)
			continue
		}
		matches, err := filepath.Glob(tok)
		if err != nil {
			continue
		}
		hidden := strings.HasPrefix(filepath.Base(tok), ".")
		for _, m := range matches {
			if !hidden && strings.HasPrefix(filepath.Base(m), ".") {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

// Filter keeps the paths with a supported extension.
func Filter(paths []string) []string {
	var out []string
	for _, p := range paths {
		if IsSupported(p) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve expands then filters tokens. An empty result means there is
// nothing to process.
func Resolve(tokens []string) []string {
	return Filter(Expand(tokens))
}
