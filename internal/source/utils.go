package source

import (
	"os"
	"path/filepath"
	"strings"
)

// removeBOM срезает UTF-8 BOM в начале строки.
func removeBOM(s string) (string, bool) {
	if strings.HasPrefix(s, "\xEF\xBB\xBF") {
		return s[3:], true
	}
	return s, false
}

// trimEOL убирает \n или \r\n, не трогая одиночные \r в середине строки.
func trimEOL(s string) (string, bool) {
	s = strings.TrimSuffix(s, "\n")
	if strings.HasSuffix(s, "\r") {
		return s[:len(s)-1], true
	}
	return s, false
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}

// FormatPath форматирует путь в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto".
func FormatPath(path, mode string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(path); err == nil {
			return normalizePath(abs)
		}
		return path

	case "relative":
		wd, err := os.Getwd()
		if err != nil {
			return path
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		rel, err := filepath.Rel(wd, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			return normalizePath(abs)
		}
		return normalizePath(rel)

	case "basename":
		return filepath.Base(path)

	case "auto":
		// короткие и относительные пути как есть, иначе basename
		if len(path) < 40 || !filepath.IsAbs(path) {
			return path
		}
		return filepath.Base(path)

	default:
		return path
	}
}
