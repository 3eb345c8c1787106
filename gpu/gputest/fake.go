// Package gputest provides an in-memory gpu.Functions that models the parts
// of OpenGL pipeline state the renderer touches, so wrappers can be tested
// without a window or a driver.
package gputest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/richinsley/goquad/gpu"
)

// MaxVertexAttribs mirrors GL_MAX_VERTEX_ATTRIBS on common desktop drivers.
const MaxVertexAttribs = 16

// Attrib is the configuration of one vertex attribute slot.
type Attrib struct {
	Enabled    bool
	Size       int32
	Type       gpu.Enum
	Normalized bool
	Stride     int32
	Offset     uintptr
	Buffer     uint32 // ARRAY_BUFFER bound when the pointer was set
}

// Buffer is a buffer object's storage.
type Buffer struct {
	Data  []byte
	Usage gpu.Enum
}

// VertexArray is a vertex array object's state.
type VertexArray struct {
	Attribs       map[uint32]*Attrib
	ElementBuffer uint32
}

// Shader is a shader object.
type Shader struct {
	Type     gpu.Enum
	Source   string
	Compiled bool
	Log      string
}

// Program is a program object.
type Program struct {
	Shaders  []uint32
	Linked   bool
	Log      string
	Uniforms map[string]int32
	Values   map[int32][4]float32
}

// Draw records one DrawElements call and the state it consumed.
type Draw struct {
	Mode          gpu.Enum
	Count         int32
	Type          gpu.Enum
	Offset        uintptr
	Program       uint32
	Array         uint32
	ElementBuffer uint32
}

// Fake is a single-context OpenGL model. The zero value is not usable; call New.
type Fake struct {
	// LinkLog, when non-empty, makes every link fail with this log.
	LinkLog string
	// Strings answers GetString queries.
	Strings map[gpu.Enum]string

	errs []gpu.Enum
	next uint32

	buffers  map[uint32]*Buffer
	arrays   map[uint32]*VertexArray
	shaders  map[uint32]*Shader
	programs map[uint32]*Program

	arrayBuffer    uint32
	globalElements uint32
	boundArray     uint32
	currentProgram uint32

	// Released counts delete calls per buffer/array name.
	Released map[uint32]int

	Draws      []Draw
	Clears     int
	ClearValue [4]float32
	View       [4]int32
}

var _ gpu.Functions = (*Fake)(nil)

// New returns an empty context.
func New() *Fake {
	return &Fake{
		Strings: map[gpu.Enum]string{
			gpu.Version:  "4.1 gputest",
			gpu.Renderer: "gputest",
			gpu.Vendor:   "goquad",
		},
		buffers:  map[uint32]*Buffer{},
		arrays:   map[uint32]*VertexArray{},
		shaders:  map[uint32]*Shader{},
		programs: map[uint32]*Program{},
		Released: map[uint32]int{},
	}
}

// Raise queues an error flag as if the driver had recorded it.
func (f *Fake) Raise(code gpu.Enum) {
	f.errs = append(f.errs, code)
}

// Pending returns the number of queued error flags.
func (f *Fake) Pending() int { return len(f.errs) }

func (f *Fake) id() uint32 {
	f.next++
	return f.next
}

func (f *Fake) GetError() gpu.Enum {
	if len(f.errs) == 0 {
		return gpu.NoError
	}
	code := f.errs[0]
	f.errs = f.errs[1:]
	return code
}

func (f *Fake) GetString(name gpu.Enum) string {
	s, ok := f.Strings[name]
	if !ok {
		f.Raise(gpu.InvalidEnum)
	}
	return s
}

// BufferObject returns the storage for a live buffer name, or nil.
func (f *Fake) BufferObject(id uint32) *Buffer { return f.buffers[id] }

// Array returns the state of a live vertex array name, or nil.
func (f *Fake) Array(id uint32) *VertexArray { return f.arrays[id] }

// Shader returns a live shader object, or nil.
func (f *Fake) Shader(id uint32) *Shader { return f.shaders[id] }

// Program returns a live program object, or nil.
func (f *Fake) Program(id uint32) *Program { return f.programs[id] }

// BoundArray returns the current vertex array binding.
func (f *Fake) BoundArray() uint32 { return f.boundArray }

// CurrentProgram returns the program installed by UseProgram.
func (f *Fake) CurrentProgram() uint32 { return f.currentProgram }

// BoundBuffer returns the buffer bound on target. ELEMENT_ARRAY_BUFFER is
// part of the bound vertex array's state, as in core profile.
func (f *Fake) BoundBuffer(target gpu.Enum) uint32 {
	switch target {
	case gpu.ArrayBuffer:
		return f.arrayBuffer
	case gpu.ElementArrayBuffer:
		if va := f.arrays[f.boundArray]; va != nil {
			return va.ElementBuffer
		}
		return f.globalElements
	}
	return 0
}

// Live returns the number of undeleted buffers, vertex arrays, shaders and programs.
func (f *Fake) Live() int {
	return len(f.buffers) + len(f.arrays) + len(f.shaders) + len(f.programs)
}

func (f *Fake) GenBuffer() uint32 {
	id := f.id()
	f.buffers[id] = &Buffer{}
	return id
}

func (f *Fake) DeleteBuffer(id uint32) {
	if id == 0 {
		return
	}
	f.Released[id]++
	if _, ok := f.buffers[id]; !ok {
		return
	}
	delete(f.buffers, id)
	if f.arrayBuffer == id {
		f.arrayBuffer = 0
	}
	if f.globalElements == id {
		f.globalElements = 0
	}
	for _, va := range f.arrays {
		if va.ElementBuffer == id {
			va.ElementBuffer = 0
		}
	}
}

func (f *Fake) BindBuffer(target gpu.Enum, id uint32) {
	if id != 0 && f.buffers[id] == nil {
		f.Raise(gpu.InvalidOperation)
		return
	}
	switch target {
	case gpu.ArrayBuffer:
		f.arrayBuffer = id
	case gpu.ElementArrayBuffer:
		if va := f.arrays[f.boundArray]; va != nil {
			va.ElementBuffer = id
		} else {
			f.globalElements = id
		}
	default:
		f.Raise(gpu.InvalidEnum)
	}
}

func (f *Fake) bound(target gpu.Enum) *Buffer {
	switch target {
	case gpu.ArrayBuffer, gpu.ElementArrayBuffer:
	default:
		f.Raise(gpu.InvalidEnum)
		return nil
	}
	b := f.buffers[f.BoundBuffer(target)]
	if b == nil {
		f.Raise(gpu.InvalidOperation)
	}
	return b
}

func (f *Fake) BufferData(target gpu.Enum, data []byte, usage gpu.Enum) {
	b := f.bound(target)
	if b == nil {
		return
	}
	b.Data = append([]byte(nil), data...)
	b.Usage = usage
}

func (f *Fake) GetBufferSubData(target gpu.Enum, offset int, data []byte) {
	b := f.bound(target)
	if b == nil {
		return
	}
	if offset < 0 || offset+len(data) > len(b.Data) {
		f.Raise(gpu.InvalidValue)
		return
	}
	copy(data, b.Data[offset:])
}

func (f *Fake) GenVertexArray() uint32 {
	id := f.id()
	f.arrays[id] = &VertexArray{Attribs: map[uint32]*Attrib{}}
	return id
}

func (f *Fake) DeleteVertexArray(id uint32) {
	if id == 0 {
		return
	}
	f.Released[id]++
	if _, ok := f.arrays[id]; !ok {
		return
	}
	delete(f.arrays, id)
	if f.boundArray == id {
		f.boundArray = 0
	}
}

func (f *Fake) BindVertexArray(id uint32) {
	if id != 0 && f.arrays[id] == nil {
		f.Raise(gpu.InvalidOperation)
		return
	}
	f.boundArray = id
}

func (f *Fake) attrib(index uint32) *Attrib {
	va := f.arrays[f.boundArray]
	if va == nil {
		f.Raise(gpu.InvalidOperation)
		return nil
	}
	if index >= MaxVertexAttribs {
		f.Raise(gpu.InvalidValue)
		return nil
	}
	a := va.Attribs[index]
	if a == nil {
		a = &Attrib{Size: 4, Type: gpu.Float}
		va.Attribs[index] = a
	}
	return a
}

func (f *Fake) EnableVertexAttribArray(index uint32) {
	if a := f.attrib(index); a != nil {
		a.Enabled = true
	}
}

func (f *Fake) VertexAttribPointer(index uint32, size int32, typ gpu.Enum, normalized bool, stride int32, offset uintptr) {
	if size < 1 || size > 4 || stride < 0 {
		f.Raise(gpu.InvalidValue)
		return
	}
	if f.arrayBuffer == 0 && offset != 0 {
		f.Raise(gpu.InvalidOperation)
		return
	}
	a := f.attrib(index)
	if a == nil {
		return
	}
	a.Size = size
	a.Type = typ
	a.Normalized = normalized
	a.Stride = stride
	a.Offset = offset
	a.Buffer = f.arrayBuffer
}

func (f *Fake) CreateShader(typ gpu.Enum) uint32 {
	if typ != gpu.VertexShader && typ != gpu.FragmentShader {
		f.Raise(gpu.InvalidEnum)
		return 0
	}
	id := f.id()
	f.shaders[id] = &Shader{Type: typ}
	return id
}

func (f *Fake) ShaderSource(id uint32, src string) {
	s := f.shaders[id]
	if s == nil {
		f.Raise(gpu.InvalidValue)
		return
	}
	s.Source = src
}

// CompileShader fails any source containing an #error directive, echoing the
// directive's text into the info log the way GLSL front ends do.
func (f *Fake) CompileShader(id uint32) {
	s := f.shaders[id]
	if s == nil {
		f.Raise(gpu.InvalidValue)
		return
	}
	s.Compiled, s.Log = true, ""
	for n, line := range strings.Split(s.Source, "\n") {
		if i := strings.Index(line, "#error"); i >= 0 {
			s.Compiled = false
			s.Log = "0:" + strconv.Itoa(n+1) + ": error: " + strings.TrimSpace(line[i+len("#error"):])
			return
		}
	}
}

func (f *Fake) GetShaderi(id uint32, pname gpu.Enum) int32 {
	s := f.shaders[id]
	if s == nil {
		f.Raise(gpu.InvalidValue)
		return 0
	}
	switch pname {
	case gpu.CompileStatus:
		if s.Compiled {
			return gpu.True
		}
		return gpu.False
	case gpu.InfoLogLength:
		if s.Log == "" {
			return 0
		}
		return int32(len(s.Log) + 1)
	}
	f.Raise(gpu.InvalidEnum)
	return 0
}

func (f *Fake) GetShaderInfoLog(id uint32) string {
	s := f.shaders[id]
	if s == nil {
		f.Raise(gpu.InvalidValue)
		return ""
	}
	return s.Log
}

func (f *Fake) DeleteShader(id uint32) {
	if id == 0 {
		return
	}
	if _, ok := f.shaders[id]; !ok {
		f.Raise(gpu.InvalidValue)
		return
	}
	delete(f.shaders, id)
}

func (f *Fake) CreateProgram() uint32 {
	id := f.id()
	f.programs[id] = &Program{Uniforms: map[string]int32{}, Values: map[int32][4]float32{}}
	return id
}

func (f *Fake) AttachShader(program, shader uint32) {
	p := f.programs[program]
	if p == nil || f.shaders[shader] == nil {
		f.Raise(gpu.InvalidValue)
		return
	}
	p.Shaders = append(p.Shaders, shader)
}

var uniformDecl = regexp.MustCompile(`^\s*uniform\s+\w+\s+(\w+)`)

// LinkProgram succeeds when every attached shader still exists and compiled.
// Uniform locations are assigned in declaration order.
func (f *Fake) LinkProgram(program uint32) {
	p := f.programs[program]
	if p == nil {
		f.Raise(gpu.InvalidValue)
		return
	}
	p.Linked, p.Log = false, ""
	p.Uniforms = map[string]int32{}
	if f.LinkLog != "" {
		p.Log = f.LinkLog
		return
	}
	stages := map[gpu.Enum]bool{}
	for _, id := range p.Shaders {
		s := f.shaders[id]
		if s == nil || !s.Compiled {
			p.Log = "error: attached shader is not compiled"
			return
		}
		stages[s.Type] = true
		for _, line := range strings.Split(s.Source, "\n") {
			if m := uniformDecl.FindStringSubmatch(line); m != nil {
				if _, ok := p.Uniforms[m[1]]; !ok {
					p.Uniforms[m[1]] = int32(len(p.Uniforms))
				}
			}
		}
	}
	if !stages[gpu.VertexShader] || !stages[gpu.FragmentShader] {
		p.Log = "error: program needs a vertex and a fragment shader"
		return
	}
	p.Linked = true
}

func (f *Fake) GetProgrami(program uint32, pname gpu.Enum) int32 {
	p := f.programs[program]
	if p == nil {
		f.Raise(gpu.InvalidValue)
		return 0
	}
	switch pname {
	case gpu.LinkStatus:
		if p.Linked {
			return gpu.True
		}
		return gpu.False
	case gpu.InfoLogLength:
		if p.Log == "" {
			return 0
		}
		return int32(len(p.Log) + 1)
	}
	f.Raise(gpu.InvalidEnum)
	return 0
}

func (f *Fake) GetProgramInfoLog(program uint32) string {
	p := f.programs[program]
	if p == nil {
		f.Raise(gpu.InvalidValue)
		return ""
	}
	return p.Log
}

func (f *Fake) DeleteProgram(program uint32) {
	if program == 0 {
		return
	}
	if _, ok := f.programs[program]; !ok {
		f.Raise(gpu.InvalidValue)
		return
	}
	delete(f.programs, program)
	if f.currentProgram == program {
		f.currentProgram = 0
	}
}

func (f *Fake) UseProgram(program uint32) {
	if program == 0 {
		f.currentProgram = 0
		return
	}
	p := f.programs[program]
	if p == nil {
		f.Raise(gpu.InvalidValue)
		return
	}
	if !p.Linked {
		f.Raise(gpu.InvalidOperation)
		return
	}
	f.currentProgram = program
}

func (f *Fake) GetUniformLocation(program uint32, name string) int32 {
	p := f.programs[program]
	if p == nil {
		f.Raise(gpu.InvalidValue)
		return -1
	}
	if !p.Linked {
		f.Raise(gpu.InvalidOperation)
		return -1
	}
	if loc, ok := p.Uniforms[name]; ok {
		return loc
	}
	return -1
}

func (f *Fake) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	p := f.programs[f.currentProgram]
	if p == nil {
		f.Raise(gpu.InvalidOperation)
		return
	}
	if location == -1 {
		return
	}
	if location < 0 || int(location) >= len(p.Uniforms) {
		f.Raise(gpu.InvalidOperation)
		return
	}
	p.Values[location] = [4]float32{v0, v1, v2, v3}
}

func (f *Fake) ClearColor(r, g, b, a float32) {
	f.ClearValue = [4]float32{r, g, b, a}
}

func (f *Fake) Clear(mask gpu.Enum) {
	f.Clears++
}

func (f *Fake) Viewport(x, y, width, height int32) {
	if width < 0 || height < 0 {
		f.Raise(gpu.InvalidValue)
		return
	}
	f.View = [4]int32{x, y, width, height}
}

func (f *Fake) DrawElements(mode gpu.Enum, count int32, typ gpu.Enum, offset uintptr) {
	if count < 0 {
		f.Raise(gpu.InvalidValue)
		return
	}
	if f.arrays[f.boundArray] == nil {
		f.Raise(gpu.InvalidOperation)
		return
	}
	f.Draws = append(f.Draws, Draw{
		Mode:          mode,
		Count:         count,
		Type:          typ,
		Offset:        offset,
		Program:       f.currentProgram,
		Array:         f.boundArray,
		ElementBuffer: f.BoundBuffer(gpu.ElementArrayBuffer),
	})
}
