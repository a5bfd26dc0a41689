package codegen

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Cahu/krpc-mars-terraformer/errors"
)

// DefaultInputExtension is matched during directory discovery when no
// extension is configured
const DefaultInputExtension = ".json"

// Discover lists the service files at path. A file is returned as is; a
// directory yields its entries ending in ext, sorted by name. Subdirectories
// are not searched.
func Discover(path, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultInputExtension
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapIO(err, "input %s", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.WrapIO(err, "failed to read input directory %s", path)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ReadManifest reads a manifest listing service files, one path per line.
// Blank lines and lines starting with # are skipped; relative paths are
// taken relative to the manifest's directory. Order is preserved.
func ReadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO(err, "failed to open manifest %s", path)
	}
	defer f.Close()

	base := filepath.Dir(path)
	seen := make(map[string]bool)
	var files []string

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if seen[line] {
			return nil, errors.WithHint(
				errors.NewParseErrorf("manifest %s line %d: %s listed twice", path, lineNo, line),
				"each service file may appear only once",
			)
		}
		seen[line] = true
		files = append(files, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO(err, "failed to read manifest %s", path)
	}
	return files, nil
}

// Inputs resolves the service files to compile: the manifest when one is
// given, otherwise discovery at path
func Inputs(path, manifest, ext string) ([]string, error) {
	if manifest != "" {
		return ReadManifest(manifest)
	}
	return Discover(path, ext)
}
