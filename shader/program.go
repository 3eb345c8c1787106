// Package shader parses combined shader files and builds linked programs.
package shader

import (
	"errors"
	"fmt"

	"github.com/richinsley/goquad/gpu"
)

// ErrUniformNotFound is returned when a uniform is not active in a program.
var ErrUniformNotFound = errors.New("uniform not found")

// CompileError carries the driver's info log for a stage that failed to compile.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError carries the driver's info log for a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// Compile creates and compiles one shader object. On failure the object is
// deleted and a *CompileError is returned.
func Compile(dev *gpu.Device, stage Stage, source string) (uint32, error) {
	id, err := dev.CreateShader(stage.GLType())
	if err != nil {
		return 0, fmt.Errorf("failed to create %s shader: %w", stage, err)
	}
	_ = dev.ShaderSource(id, source)
	_ = dev.CompileShader(id)

	status, _ := dev.GetShaderi(id, gpu.CompileStatus)
	if status == gpu.False {
		logText, _ := dev.GetShaderInfoLog(id)
		_ = dev.DeleteShader(id)
		return 0, &CompileError{Stage: stage, Log: logText}
	}
	return id, nil
}

// Program is a linked shader program.
type Program struct {
	dev       *gpu.Device
	id        uint32
	names     map[string]string
	locations map[string]int32
}

// NewProgram compiles both stages of src and links them. Stage objects are
// deleted once linking has been attempted. A nil error always comes with a
// usable program.
func NewProgram(dev *gpu.Device, src Source) (*Program, error) {
	vs, err := Compile(dev, Vertex, src.Vertex)
	if err != nil {
		return nil, err
	}
	fs, err := Compile(dev, Fragment, src.Fragment)
	if err != nil {
		_ = dev.DeleteShader(vs)
		return nil, err
	}
	defer func() {
		_ = dev.DeleteShader(vs)
		_ = dev.DeleteShader(fs)
	}()

	id, err := dev.CreateProgram()
	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}
	_ = dev.AttachShader(id, vs)
	_ = dev.AttachShader(id, fs)
	_ = dev.LinkProgram(id)

	status, _ := dev.GetProgrami(id, gpu.LinkStatus)
	if status == gpu.False {
		logText, _ := dev.GetProgramInfoLog(id)
		_ = dev.DeleteProgram(id)
		return nil, &LinkError{Log: logText}
	}
	return &Program{
		dev:       dev,
		id:        id,
		names:     src.Names,
		locations: map[string]int32{},
	}, nil
}

// ID returns the program object name, or 0 after Destroy.
func (p *Program) ID() uint32 { return p.id }

// Use installs p as the current program.
func (p *Program) Use() error {
	return p.dev.UseProgram(p.id)
}

// UniformLocation looks up a uniform by the name used in the shader file.
// Results are cached. An inactive uniform yields ErrUniformNotFound.
func (p *Program) UniformLocation(name string) (int32, error) {
	if loc, ok := p.locations[name]; ok {
		return loc, nil
	}
	linked := name
	if mapped, ok := p.names[name]; ok {
		linked = mapped
	}
	loc, err := p.dev.GetUniformLocation(p.id, linked)
	if err != nil {
		return -1, fmt.Errorf("uniform %q: %w", name, err)
	}
	if loc == -1 {
		return -1, fmt.Errorf("%w: %q", ErrUniformNotFound, name)
	}
	p.locations[name] = loc
	return loc, nil
}

// SetUniform4f sets a vec4 uniform on the current program.
func (p *Program) SetUniform4f(location int32, v0, v1, v2, v3 float32) error {
	return p.dev.Uniform4f(location, v0, v1, v2, v3)
}

// Destroy deletes the program object.
func (p *Program) Destroy() {
	if p.id == 0 {
		return
	}
	_ = p.dev.DeleteProgram(p.id)
	p.id = 0
}
