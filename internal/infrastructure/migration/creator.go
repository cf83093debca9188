package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"

	// versionLayout keeps versions sortable and unique per second
	versionLayout = "20060102150405"
)

// ErrUnpaired is returned when a migration has an up file without a down
// file or the other way round
var ErrUnpaired = errors.New("migration files are not paired")

var (
	upTemplate = template.Must(template.New("up").Parse(`-- Migration: {{.Name}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))
	downTemplate = template.Must(template.New("down").Parse(`-- Migration: {{.Name}} (rollback)

`))
)

// File is a newly created up/down pair
type File struct {
	Version     string
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// Create writes an empty up/down pair into dir, named after the current
// time and name
func Create(dir, name, description string, now time.Time) (*File, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := now.UTC().Format(versionLayout)
	base := filepath.Join(dir, version+"_"+slug)
	f := &File{
		Version:     version,
		Name:        strings.ReplaceAll(slug, "_", " "),
		Description: strings.TrimSpace(description),
		UpPath:      base + upSuffix,
		DownPath:    base + downSuffix,
	}

	if err := render(f.UpPath, upTemplate, f); err != nil {
		return nil, err
	}
	if err := render(f.DownPath, downTemplate, f); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func render(path string, tmpl *template.Template, data *File) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	if err := tmpl.Execute(out, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases name and joins its alphanumeric runs with underscores
func slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// List returns the base names of every migration in files, oldest first
func List(files fs.FS) ([]string, error) {
	ups, downs, err := scan(files)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ups))
	for base := range ups {
		names = append(names, base)
	}
	for base := range downs {
		if !ups[base] {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Verify checks that every migration in files has both an up and a down file
func Verify(files fs.FS) error {
	ups, downs, err := scan(files)
	if err != nil {
		return err
	}
	var missing []string
	for base := range ups {
		if !downs[base] {
			missing = append(missing, base+downSuffix)
		}
	}
	for base := range downs {
		if !ups[base] {
			missing = append(missing, base+upSuffix)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", ErrUnpaired, strings.Join(missing, ", "))
	}
	return nil
}

func scan(files fs.FS) (ups, downs map[string]bool, err error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	ups, downs = map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch name := e.Name(); {
		case strings.HasSuffix(name, upSuffix):
			ups[strings.TrimSuffix(name, upSuffix)] = true
		case strings.HasSuffix(name, downSuffix):
			downs[strings.TrimSuffix(name, downSuffix)] = true
		}
	}
	return ups, downs, nil
}
