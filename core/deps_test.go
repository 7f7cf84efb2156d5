package core

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const glfwImport = "github.com/go-gl/glfw/v3.3/glfw"

// Only the window package links GLFW; everything else, the snapshot tool
// included, builds without a display stack.
func TestOnlyWindowPackagesImportGLFW(t *testing.T) {
	root := ".."
	allowed := map[string]bool{"internal/window": true}
	fset := token.NewFileSet()
	var offenders []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, imp := range f.Imports {
			p, _ := strconv.Unquote(imp.Path.Value)
			if p == glfwImport && !allowed[rel] {
				offenders = append(offenders, path)
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, offenders)
}

func TestHeadlessCommandSkipsWindow(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), filepath.Join("..", "cmd", "ssao-snapshot", "main.go"), nil, parser.ImportsOnly)
	require.NoError(t, err)
	for _, imp := range f.Imports {
		p, _ := strconv.Unquote(imp.Path.Value)
		assert.NotEqual(t, "render-demos/internal/window", p)
		assert.NotEqual(t, "render-demos/internal/opengl", p)
	}
}
