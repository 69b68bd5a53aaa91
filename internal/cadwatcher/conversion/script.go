package conversion

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/jduncan-rva/cadwatcher/internal/cadwatcher/domain"
)

// TargetExtension is appended to every export path.
const TargetExtension = ".glb"

// MeshDetail is the STEPper tessellation quality used for every import.
const MeshDetail = 100

// DefaultBlenderTemplate drives Blender with the STEPper add-on. The scene is
// cleared once up front and again after every export so that geometry from one
// file never leaks into the next GLB.
const DefaultBlenderTemplate = `import bpy

def reset_scene():
    bpy.ops.object.select_all(action='SELECT')
    bpy.ops.object.delete(use_global=False)

reset_scene()
{{range .Items}}
# {{py .Name}}
bpy.context.preferences.addons['STEPper'].preferences.mesh_detail = {{$.MeshDetail}}
bpy.ops.import_scene.occ_import_step(filepath={{py .Input}}, override_file={{py .Name}}, hierarchy_types="EMPTIES")
bpy.ops.export_scene.gltf(filepath={{py .Output}}, export_format='GLB', export_colors=False, export_yup=True)
print("GLB file exported successfully:", {{py .Output}})
reset_scene()
{{end}}`

// ScriptItem is one import/export pair handed to the template.
type ScriptItem struct {
	Input  string
	Name   string
	Output string
}

type scriptData struct {
	Items      []ScriptItem
	MeshDetail int
}

// ScriptGenerator renders batch scripts from a template.
type ScriptGenerator struct {
	tmpl *template.Template
}

// NewScriptGenerator parses tmpl. An empty tmpl selects DefaultBlenderTemplate.
func NewScriptGenerator(tmpl string) (*ScriptGenerator, error) {
	if tmpl == "" {
		tmpl = DefaultBlenderTemplate
	}
	t, err := template.New("batch").Funcs(template.FuncMap{"py": pythonString}).Parse(tmpl)
	if err != nil {
		return nil, errors.Wrap(err, "parse script template")
	}
	return &ScriptGenerator{tmpl: t}, nil
}

// ExportPath derives the GLB path for input inside exportDir.
func ExportPath(input, exportDir string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(exportDir, base+TargetExtension)
}

// Render produces the script text and the export path of every input, in request order.
func (g *ScriptGenerator) Render(req domain.ConversionRequest) (string, []string, error) {
	data := scriptData{
		Items:      make([]ScriptItem, 0, len(req.Inputs)),
		MeshDetail: MeshDetail,
	}
	exports := make([]string, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		out := ExportPath(in, req.ExportDir)
		data.Items = append(data.Items, ScriptItem{Input: in, Name: filepath.Base(in), Output: out})
		exports = append(exports, out)
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", nil, errors.Wrap(err, "render script template")
	}
	return buf.String(), exports, nil
}

// Generate renders the script for req and writes it to cfg.ScriptPath,
// replacing whatever a previous run left there.
func (g *ScriptGenerator) Generate(req domain.ConversionRequest, cfg domain.ToolConfiguration) (domain.GeneratedScript, error) {
	content, exports, err := g.Render(req)
	if err != nil {
		return domain.GeneratedScript{}, newError(domain.KindScriptWriteFailure, "render script", err)
	}
	if cfg.ScriptPath == "" {
		return domain.GeneratedScript{}, newError(domain.KindScriptWriteFailure, "write script", errors.New("script path is not configured"))
	}
	if err := os.WriteFile(cfg.ScriptPath, []byte(content), 0644); err != nil {
		return domain.GeneratedScript{}, newError(domain.KindScriptWriteFailure, "write script", errors.Wrapf(err, "could not write %s", cfg.ScriptPath))
	}
	return domain.GeneratedScript{Path: cfg.ScriptPath, Content: content, ExportPaths: exports}, nil
}

// pythonString quotes s as a Python string literal. Go's escapes are a subset
// of what Python accepts inside double quotes. s must be valid UTF-8: Go
// writes a stray byte as \xNN, which Python reads as a code point.
func pythonString(s string) string {
	return strconv.Quote(s)
}
