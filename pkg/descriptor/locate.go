package descriptor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var sourceExtensions = []string{".java", ".kt"}

// LocateEntryPoint looks for the source file of class under each source
// directory and returns the first match.
func LocateEntryPoint(srcDirs []string, class string) (string, error) {
	if err := ValidateEntryPoint(class); err != nil {
		return "", err
	}

	rel := filepath.FromSlash(strings.ReplaceAll(class, ".", "/"))
	for _, dir := range srcDirs {
		for _, ext := range sourceExtensions {
			candidate := filepath.Join(dir, rel+ext)
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("failed to stat %s: %w", candidate, err)
			}
		}
	}

	return "", fmt.Errorf("%w: %s in %s", ErrEntryPointNotFound, class, strings.Join(srcDirs, ", "))
}
