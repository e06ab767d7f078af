package pipeline

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// ReadLines reads a target list. YAML files may hold a plain sequence or a
// mapping with a "targets" or "sources" key; any other file is read line by
// line, skipping blanks and "#" or "//" comments. Only the first field of a
// line is used.
func ReadLines(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(path)))
	if ext == ".yaml" || ext == ".yml" {
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var list []string
		if err := yaml.Unmarshal(bs, &list); err == nil && len(list) > 0 {
			return normalizeUniqueNonEmpty(list), nil
		}

		var wrapper struct {
			Targets []string `yaml:"targets"`
			Sources []string `yaml:"sources"`
		}
		if err := yaml.Unmarshal(bs, &wrapper); err == nil {
			if len(wrapper.Targets) > 0 {
				return normalizeUniqueNonEmpty(wrapper.Targets), nil
			}
			if len(wrapper.Sources) > 0 {
				return normalizeUniqueNonEmpty(wrapper.Sources), nil
			}
		}
		return nil, fmt.Errorf("%s: expected a list of paths or a targets/sources key", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lines := make([]string, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, strings.TrimSpace(fields[0]))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return normalizeUniqueNonEmpty(lines), nil
}

func normalizeUniqueNonEmpty(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		v := strings.TrimSpace(it)
		if v == "" || strings.HasPrefix(v, "#") || strings.HasPrefix(v, "//") {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func isListFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".list", ".yaml", ".yml":
		return true
	}
	return false
}

// ExpandInputs resolves command-line inputs to source files. Directories are
// walked and filtered by the include glob (matched against the slash path
// relative to the directory); list files are read with ReadLines and their
// entries resolved relative to the list. Duplicates are dropped, first
// occurrence wins.
func ExpandInputs(args []string, include string) ([]string, error) {
	if include == "" {
		include = "**.sol"
	}
	g, err := glob.Compile(include, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern %q: %w", include, err)
	}

	e := &expander{include: g, seen: map[string]bool{}, lists: map[string]bool{}}
	for _, arg := range args {
		if err := e.expand(arg); err != nil {
			return nil, err
		}
	}
	return e.files, nil
}

type expander struct {
	include glob.Glob
	files   []string
	seen    map[string]bool
	lists   map[string]bool
}

func (e *expander) add(path string) {
	clean := filepath.Clean(path)
	if e.seen[clean] {
		return
	}
	e.seen[clean] = true
	e.files = append(e.files, clean)
}

func (e *expander) expand(arg string) error {
	info, err := os.Stat(arg)
	if err != nil {
		return fmt.Errorf("input %s: %w", arg, err)
	}

	switch {
	case info.IsDir():
		return e.walk(arg)
	case isListFile(arg):
		abs, _ := filepath.Abs(arg)
		if e.lists[abs] {
			return nil
		}
		e.lists[abs] = true

		entries, err := ReadLines(arg)
		if err != nil {
			return fmt.Errorf("failed to read target list %s: %w", arg, err)
		}
		base := filepath.Dir(arg)
		for _, entry := range entries {
			if !filepath.IsAbs(entry) {
				entry = filepath.Join(base, entry)
			}
			if err := e.expand(entry); err != nil {
				return err
			}
		}
		return nil
	default:
		e.add(arg)
		return nil
	}
}

func (e *expander) walk(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if e.include.Match(filepath.ToSlash(rel)) {
			e.add(path)
		}
		return nil
	})
}
