package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"orchestra/internal/logging"
	"orchestra/internal/orcherr"
)

// projectsDir returns <home>/projects, the root of the registry tree.
func projectsDir(home string) string {
	return filepath.Join(home, "projects")
}

// codebasePath returns the on-disk location of a codebase's registry file.
func codebasePath(home, project, codebase string) string {
	return filepath.Join(projectsDir(home), project, codebase+".yaml")
}

// projectPath returns the on-disk location of a project's optional
// project-wide registry file.
func projectPath(home, project string) string {
	return filepath.Join(projectsDir(home), project, "project.yaml")
}

// Load reads the full registry tree rooted at <home>/projects into memory.
// Malformed YAML surfaces immediately with the offending file's path and a
// best-effort line hint; it is never silently skipped.
func Load(home string) (*Registry, error) {
	timer := logging.StartTimer(logging.CategoryRegistry, "Load")
	defer timer.Stop()

	reg := newRegistry()
	root := projectsDir(home)

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, orcherr.WrapPath(orcherr.KindIO, root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		projectName := entry.Name()
		if err := loadProjectDir(home, projectName, reg); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func loadProjectDir(home, projectName string, reg *Registry) error {
	dir := filepath.Join(projectsDir(home), projectName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return orcherr.WrapPath(orcherr.KindIO, dir, err)
	}

	proj := &Project{Name: projectName}
	if data, err := os.ReadFile(projectPath(home, projectName)); err == nil {
		if perr := yaml.Unmarshal(data, proj); perr != nil {
			return parseError(projectPath(home, projectName), data, perr)
		}
		proj.Name = projectName
	} else if !os.IsNotExist(err) {
		return orcherr.WrapPath(orcherr.KindIO, projectPath(home, projectName), err)
	}
	reg.Projects[projectName] = proj

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == "project.yaml" {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		cb, err := readCodebase(path)
		if err != nil {
			return err
		}
		cb.path = path
		reg.Codebases[cb.Name] = cb
		if !containsString(proj.Codebases, cb.Name) {
			proj.Codebases = append(proj.Codebases, cb.Name)
		}
	}

	return nil
}

func readCodebase(path string) (*Codebase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, orcherr.WrapPath(orcherr.KindIO, path, err)
	}
	var cb Codebase
	if err := yaml.Unmarshal(data, &cb); err != nil {
		return nil, parseError(path, data, err)
	}
	return &cb, nil
}

// parseError annotates a YAML unmarshal failure with the file path and, on
// a best-effort basis, the line number yaml.v3 reports in its TypeError.
func parseError(path string, data []byte, err error) error {
	hint := ""
	if te, ok := err.(*yaml.TypeError); ok && len(te.Errors) > 0 {
		hint = te.Errors[0]
	}
	logging.Get(logging.CategoryRegistry).Error("failed to parse %s: %v", path, err)
	return orcherr.WrapHint(orcherr.KindRegistryParse, path, hint, err)
}

// ListCodebases returns every codebase in the registry tree, sorted by
// name for deterministic iteration.
func ListCodebases(home string) ([]*Codebase, error) {
	reg, err := Load(home)
	if err != nil {
		return nil, err
	}
	out := make([]*Codebase, 0, len(reg.Codebases))
	for _, cb := range reg.Codebases {
		out = append(out, cb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindCodebase loads the registry and returns the named codebase.
func FindCodebase(home, name string) (*Codebase, error) {
	reg, err := Load(home)
	if err != nil {
		return nil, err
	}
	cb, ok := reg.Codebases[name]
	if !ok {
		return nil, orcherr.Fmt(orcherr.KindRegistryIntegrity, "codebase %q not found", name)
	}
	return cb, nil
}

// SaveCodebase atomically persists a codebase's registry file under
// <home>/projects/<project>/<name>.yaml, creating the project directory
// (mode 0700) if needed. When the project has no project.yaml yet, one
// is written listing this codebase; an existing project.yaml is left
// untouched.
func SaveCodebase(home string, cb *Codebase) error {
	timer := logging.StartTimer(logging.CategoryRegistry, "SaveCodebase")
	defer timer.Stop()

	if cb.Project == "" {
		return orcherr.New(orcherr.KindRegistryIntegrity, "codebase has no project")
	}
	if cb.Name == "" {
		return orcherr.New(orcherr.KindRegistryIntegrity, "codebase has no name")
	}

	dir := filepath.Join(projectsDir(home), cb.Project)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return orcherr.WrapPath(orcherr.KindIO, dir, err)
	}

	path := codebasePath(home, cb.Project, cb.Name)
	data, err := yaml.Marshal(cb)
	if err != nil {
		return orcherr.Wrap(orcherr.KindRegistryParse, err)
	}
	if err := atomicWrite(path, data, 0600); err != nil {
		return err
	}
	cb.path = path

	pp := projectPath(home, cb.Project)
	if _, err := os.Stat(pp); os.IsNotExist(err) {
		proj := &Project{Name: cb.Project, Codebases: []string{cb.Name}}
		pdata, merr := yaml.Marshal(proj)
		if merr != nil {
			return orcherr.Wrap(orcherr.KindRegistryParse, merr)
		}
		if werr := atomicWrite(pp, pdata, 0600); werr != nil {
			return werr
		}
	}

	logging.Get(logging.CategoryRegistry).Info("saved codebase %s/%s", cb.Project, cb.Name)
	return nil
}

// atomicWrite writes data to a sibling temp file, fsyncs it, and
// renames it over path: the same write-temp/fsync/rename sequence used
// throughout Orchestra's persistence layer.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".orchestra.tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return orcherr.WrapPath(orcherr.KindIO, tmp, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return orcherr.WrapPath(orcherr.KindIO, tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return orcherr.WrapPath(orcherr.KindIO, tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return orcherr.WrapPath(orcherr.KindIO, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return orcherr.WrapPath(orcherr.KindIO, path, err)
	}
	return nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// ListProjects returns every project in the registry tree, sorted by name.
func ListProjects(home string) ([]*Project, error) {
	reg, err := Load(home)
	if err != nil {
		return nil, err
	}
	out := make([]*Project, 0, len(reg.Projects))
	for _, p := range reg.Projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SaveProject atomically persists a project-level registry file.
func SaveProject(home string, proj *Project) error {
	dir := filepath.Join(projectsDir(home), proj.Name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return orcherr.WrapPath(orcherr.KindIO, dir, err)
	}
	data, err := yaml.Marshal(proj)
	if err != nil {
		return orcherr.Wrap(orcherr.KindRegistryParse, err)
	}
	return atomicWrite(projectPath(home, proj.Name), data, 0600)
}
