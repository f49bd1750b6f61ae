// Package assets reads the precompiled SPIR-V shader blobs.
package assets

import (
	"fmt"
	"io/fs"

	"vktri/src/render"
)

const (
	VertexShaderName   = "vs.spv"
	FragmentShaderName = "ps.spv"
)

// Load reads the whole file name from fsys. A missing, unreadable or empty
// file is reported as render.ErrShaderLoad.
func Load(fsys fs.FS, name string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrShaderLoad, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", render.ErrShaderLoad, name)
	}
	return data, nil
}

// LoadShaders reads the vertex and fragment blobs. Empty names fall back to
// vs.spv and ps.spv.
func LoadShaders(fsys fs.FS, vertex, fragment string) (render.ShaderCode, error) {
	if vertex == "" {
		vertex = VertexShaderName
	}
	if fragment == "" {
		fragment = FragmentShaderName
	}
	vs, err := Load(fsys, vertex)
	if err != nil {
		return render.ShaderCode{}, fmt.Errorf("vertex shader: %w", err)
	}
	ps, err := Load(fsys, fragment)
	if err != nil {
		return render.ShaderCode{}, fmt.Errorf("fragment shader: %w", err)
	}
	return render.ShaderCode{Vertex: vs, Fragment: ps}, nil
}
