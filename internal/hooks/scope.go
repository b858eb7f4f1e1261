package hooks

import (
	"path/filepath"
	"strings"
)

// inScope resolves targetPath against workspaceRoot to an absolute path and
// tests it for prefix containment against each allowed pattern, stripping a
// trailing "/**" to obtain a directory prefix (spec §4.6 stage 3).
func inScope(workspaceRoot, targetPath string, allowedPaths []string) (bool, string) {
	abs := targetPath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(workspaceRoot, targetPath)
	}
	abs = filepath.Clean(abs)

	for _, pattern := range allowedPaths {
		prefix := strings.TrimSuffix(pattern, "/**")
		prefix = strings.TrimSuffix(prefix, "**")
		absPrefix := prefix
		if !filepath.IsAbs(absPrefix) {
			absPrefix = filepath.Join(workspaceRoot, prefix)
		}
		absPrefix = filepath.Clean(absPrefix)

		if abs == absPrefix || strings.HasPrefix(abs, absPrefix+string(filepath.Separator)) {
			return true, pattern
		}
	}
	return false, ""
}
