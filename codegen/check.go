package codegen

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Cahu/krpc-mars-terraformer/errors"
	"github.com/Cahu/krpc-mars-terraformer/logger"
)

// generatedMarker starts the first line of every file krpcgen writes
const generatedMarker = "// Code generated by krpcgen"

// metadataPrefixes mark header lines that change between generator builds
// without the bindings changing
var metadataPrefixes = []string{
	"// Generator version:",
}

// FileStatus is the state of one output file compared with a fresh render
type FileStatus int

const (
	// StatusChanged means the file on disk differs from the fresh render
	StatusChanged FileStatus = iota
	// StatusMissing means the file would be generated but does not exist
	StatusMissing
	// StatusOrphaned means a generated file exists for no current service
	StatusOrphaned
)

func (s FileStatus) String() string {
	switch s {
	case StatusChanged:
		return "changed"
	case StatusMissing:
		return "missing"
	case StatusOrphaned:
		return "orphaned"
	}
	return "unknown"
}

// MarshalText renders the status by name in JSON and YAML dumps
func (s FileStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FileDiff is an output file that is not up to date
type FileDiff struct {
	Path   string     `json:"path" yaml:"path"`
	Status FileStatus `json:"status" yaml:"status"`
	// Diff is a unified diff from the file on disk to the fresh render,
	// set for changed files
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// CheckResult holds the result of comparing a fresh render with the
// output directory
type CheckResult struct {
	UpToDate bool       `json:"up_to_date" yaml:"up_to_date"`
	Files    []FileDiff `json:"files,omitempty" yaml:"files,omitempty"`
	Report   *Report    `json:"report" yaml:"report"`
}

// Check renders paths into a temporary directory and compares the result
// with the output directory, ignoring header metadata. Nothing in the
// output directory is modified. Generation failures fail the check.
func (g *Generator) Check(ctx context.Context, paths []string) (*CheckResult, error) {
	tmp, err := os.MkdirTemp("", "krpcgen-check-*")
	if err != nil {
		return nil, errors.WrapIO(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tmp)

	shadow := *g
	shadow.opts.OutputDir = tmp
	shadow.log = logger.ChildLogger(g.log, logger.FieldDir, tmp)

	report, err := shadow.Generate(ctx, paths)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Report: report}
	fresh := make(map[string]bool)

	for _, tmpPath := range report.Paths() {
		name := filepath.Base(tmpPath)
		fresh[name] = true
		existing := filepath.Join(g.opts.OutputDir, name)

		diff, err := compareFile(existing, tmpPath)
		switch {
		case os.IsNotExist(errors.UnwrapAll(err)):
			result.Files = append(result.Files, FileDiff{Path: existing, Status: StatusMissing})
		case err != nil:
			return nil, err
		case diff != "":
			result.Files = append(result.Files, FileDiff{Path: existing, Status: StatusChanged, Diff: diff})
		}
	}

	orphans, err := g.orphans(fresh)
	if err != nil {
		return nil, err
	}
	for _, path := range orphans {
		result.Files = append(result.Files, FileDiff{Path: path, Status: StatusOrphaned})
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })
	result.UpToDate = len(result.Files) == 0
	return result, nil
}

// compareFile returns a unified diff from existing to fresh, empty when
// they match outside metadata lines
func compareFile(existing, fresh string) (string, error) {
	want, err := os.ReadFile(fresh)
	if err != nil {
		return "", errors.WrapIO(err, "failed to read %s", fresh)
	}
	have, err := os.ReadFile(existing)
	if err != nil {
		return "", errors.WrapIO(err, "failed to read %s", existing)
	}

	a, b := filterMetadataLines(have), filterMetadataLines(want)
	if a == b {
		return "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: existing,
		ToFile:   "generated",
		Context:  3,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to diff %s", existing)
	}
	return diff, nil
}

// filterMetadataLines removes header lines listed in metadataPrefixes
func filterMetadataLines(content []byte) string {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)

	for scanner.Scan() {
		line := scanner.Text()
		if isMetadataLine(line) {
			continue
		}
		result.WriteString(line)
		result.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		// unreadable content never compares equal
		return "\x00" + string(content)
	}
	return result.String()
}

func isMetadataLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range metadataPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// orphans lists files in the output directory that carry the generated
// header but were not produced by this run
func (g *Generator) orphans(fresh map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(g.opts.OutputDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO(err, "failed to read output directory %s", g.opts.OutputDir)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || fresh[name] || !strings.HasSuffix(name, g.opts.Extension) {
			continue
		}
		path := filepath.Join(g.opts.OutputDir, name)
		generated, err := isGenerated(path)
		if err != nil {
			return nil, err
		}
		if generated {
			out = append(out, path)
		}
	}
	return out, nil
}

func isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.WrapIO(err, "failed to open %s", path)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return strings.HasPrefix(line, generatedMarker), nil
}
