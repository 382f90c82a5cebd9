// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package scene

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devblok/vista/gfx"
	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
)

const shaderSuffix = ".spv"

// ShaderSource provides compiled SPIR-V shaders by file name.
type ShaderSource interface {
	List() ([]string, error)
	Shader(name string) ([]byte, error)
}

// DirSource reads shaders from a directory tree.
type DirSource string

// List returns the shader files below the directory, relative to it.
func (d DirSource) List() ([]string, error) {
	var names []string
	if err := filepath.Walk(string(d), func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() || !strings.HasSuffix(f.Name(), shaderSuffix) {
			return nil
		}
		rel, err := filepath.Rel(string(d), path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return nil, err
	}
	return names, nil
}

// Shader reads one shader file.
func (d DirSource) Shader(name string) ([]byte, error) {
	return ioutil.ReadFile(filepath.Join(string(d), filepath.FromSlash(name)))
}

// BoxSource reads shaders from a packr box, so they can be built into
// the binary.
type BoxSource struct {
	Box packr.Box
}

// List returns the shader files in the box.
func (b BoxSource) List() ([]string, error) {
	var names []string
	for _, name := range b.Box.List() {
		if strings.HasSuffix(name, shaderSuffix) {
			names = append(names, name)
		}
	}
	return names, nil
}

// Shader reads one shader file from the box.
func (b BoxSource) Shader(name string) ([]byte, error) {
	return b.Box.Find(name)
}

// ParseShaderName splits a file name of the form program.stage.spv.
func ParseShaderName(name string) (program string, stage gfx.ShaderStage, ok bool) {
	base := filepath.Base(filepath.FromSlash(name))
	if !strings.HasSuffix(base, shaderSuffix) {
		return "", 0, false
	}
	nodes := strings.Split(strings.TrimSuffix(base, shaderSuffix), ".")
	if len(nodes) != 2 {
		return "", 0, false
	}

	switch nodes[1] {
	case "vert":
		stage = gfx.ShaderStageVertex
	case "frag":
		stage = gfx.ShaderStageFragment
	default:
		return "", 0, false
	}
	return nodes[0], stage, true
}

// Program is the SPIR-V code of every stage of one program.
type Program map[gfx.ShaderStage][]byte

// LoadProgram reads the vertex and fragment stage of program from src.
func LoadProgram(src ShaderSource, program string) (Program, error) {
	names, err := src.List()
	if err != nil {
		return nil, errors.Wrap(err, "list shaders")
	}
	sort.Strings(names)

	prog := make(Program)
	for _, name := range names {
		p, stage, ok := ParseShaderName(name)
		if !ok || p != program {
			continue
		}
		if _, dup := prog[stage]; dup {
			return nil, errors.Errorf("shader %s: stage defined twice", name)
		}
		code, err := src.Shader(name)
		if err != nil {
			return nil, errors.Wrapf(err, "shader %s", name)
		}
		prog[stage] = code
	}

	for _, stage := range []gfx.ShaderStage{gfx.ShaderStageVertex, gfx.ShaderStageFragment} {
		if _, ok := prog[stage]; !ok {
			return nil, errors.Errorf("program %s: missing %s stage", program, stageName(stage))
		}
	}
	return prog, nil
}

func stageName(stage gfx.ShaderStage) string {
	switch stage {
	case gfx.ShaderStageVertex:
		return "vert"
	case gfx.ShaderStageFragment:
		return "frag"
	}
	return "unknown"
}
