package gpu

import (
	"fmt"
	"log"
	"runtime"
	"strings"
)

// maxDrain bounds the pre-call error drain. A lost context keeps reporting
// GL_CONTEXT_LOST, so an unbounded loop would never return.
const maxDrain = 32

// pkgPrefix is this package's qualified function-name prefix, used to skip
// our own frames when locating the call site of a failing GL call.
var pkgPrefix = func() string {
	pc, _, _, _ := runtime.Caller(0)
	name := runtime.FuncForPC(pc).Name()
	slash := strings.LastIndex(name, "/")
	dot := strings.Index(name[slash+1:], ".")
	return name[:slash+1+dot+1]
}()

// Error is a driver-reported error observed right after a GL call.
type Error struct {
	Code Enum
	Call string // GL entry point, e.g. "glBindBuffer"
	Func string // calling function outside this package
	File string
	Line int
}

func (e *Error) Error() string {
	name := ErrorName(e.Code)
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("%s failed with 0x%04x (%s) in %s at %s:%d", e.Call, uint32(e.Code), name, e.Func, e.File, e.Line)
}

// Device is the explicit handle every GPU wrapper operates through. It routes
// each driver call through Call, which performs the pre/post error polling.
type Device struct {
	fn     Functions
	logger *log.Logger
}

// NewDevice wraps fn. A nil logger reports to log.Default().
func NewDevice(fn Functions, logger *log.Logger) *Device {
	if logger == nil {
		logger = log.Default()
	}
	return &Device{fn: fn, logger: logger}
}

// Functions returns the unchecked call surface.
func (d *Device) Functions() Functions {
	return d.fn
}

// Call drains any pending error flags, runs f and polls once more. A new error
// is logged with its call site and returned; it is never retried.
func (d *Device) Call(name string, f func()) error {
	d.clearErrors()
	f()
	code := d.fn.GetError()
	if code == NoError {
		return nil
	}
	e := &Error{Code: code, Call: name}
	e.Func, e.File, e.Line = callSite()
	d.logger.Printf("[OpenGL Error] (%d)\n\tcall:     %s\n\tfunction: %s\n\tfile:     %s\n\tline:     %d",
		uint32(code), e.Call, e.Func, e.File, e.Line)
	return e
}

func (d *Device) clearErrors() {
	for i := 0; i < maxDrain; i++ {
		if d.fn.GetError() == NoError {
			return
		}
	}
}

func callSite() (fn, file string, line int) {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, pkgPrefix) {
			return frame.Function, frame.File, frame.Line
		}
		if !more {
			return frame.Function, frame.File, frame.Line
		}
	}
}

func (d *Device) GetString(name Enum) (s string, err error) {
	err = d.Call("glGetString", func() { s = d.fn.GetString(name) })
	return s, err
}

func (d *Device) GenBuffer() (id uint32, err error) {
	err = d.Call("glGenBuffers", func() { id = d.fn.GenBuffer() })
	return id, err
}

func (d *Device) DeleteBuffer(id uint32) error {
	return d.Call("glDeleteBuffers", func() { d.fn.DeleteBuffer(id) })
}

func (d *Device) BindBuffer(target Enum, id uint32) error {
	return d.Call("glBindBuffer", func() { d.fn.BindBuffer(target, id) })
}

func (d *Device) BufferData(target Enum, data []byte, usage Enum) error {
	return d.Call("glBufferData", func() { d.fn.BufferData(target, data, usage) })
}

func (d *Device) GetBufferSubData(target Enum, offset int, data []byte) error {
	return d.Call("glGetBufferSubData", func() { d.fn.GetBufferSubData(target, offset, data) })
}

func (d *Device) GenVertexArray() (id uint32, err error) {
	err = d.Call("glGenVertexArrays", func() { id = d.fn.GenVertexArray() })
	return id, err
}

func (d *Device) DeleteVertexArray(id uint32) error {
	return d.Call("glDeleteVertexArrays", func() { d.fn.DeleteVertexArray(id) })
}

func (d *Device) BindVertexArray(id uint32) error {
	return d.Call("glBindVertexArray", func() { d.fn.BindVertexArray(id) })
}

func (d *Device) EnableVertexAttribArray(index uint32) error {
	return d.Call("glEnableVertexAttribArray", func() { d.fn.EnableVertexAttribArray(index) })
}

func (d *Device) VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset uintptr) error {
	return d.Call("glVertexAttribPointer", func() {
		d.fn.VertexAttribPointer(index, size, typ, normalized, stride, offset)
	})
}

func (d *Device) CreateShader(typ Enum) (id uint32, err error) {
	err = d.Call("glCreateShader", func() { id = d.fn.CreateShader(typ) })
	return id, err
}

func (d *Device) ShaderSource(id uint32, src string) error {
	return d.Call("glShaderSource", func() { d.fn.ShaderSource(id, src) })
}

func (d *Device) CompileShader(id uint32) error {
	return d.Call("glCompileShader", func() { d.fn.CompileShader(id) })
}

func (d *Device) GetShaderi(id uint32, pname Enum) (v int32, err error) {
	err = d.Call("glGetShaderiv", func() { v = d.fn.GetShaderi(id, pname) })
	return v, err
}

func (d *Device) GetShaderInfoLog(id uint32) (s string, err error) {
	err = d.Call("glGetShaderInfoLog", func() { s = d.fn.GetShaderInfoLog(id) })
	return s, err
}

func (d *Device) DeleteShader(id uint32) error {
	return d.Call("glDeleteShader", func() { d.fn.DeleteShader(id) })
}

func (d *Device) CreateProgram() (id uint32, err error) {
	err = d.Call("glCreateProgram", func() { id = d.fn.CreateProgram() })
	return id, err
}

func (d *Device) AttachShader(program, shader uint32) error {
	return d.Call("glAttachShader", func() { d.fn.AttachShader(program, shader) })
}

func (d *Device) LinkProgram(program uint32) error {
	return d.Call("glLinkProgram", func() { d.fn.LinkProgram(program) })
}

func (d *Device) GetProgrami(program uint32, pname Enum) (v int32, err error) {
	err = d.Call("glGetProgramiv", func() { v = d.fn.GetProgrami(program, pname) })
	return v, err
}

func (d *Device) GetProgramInfoLog(program uint32) (s string, err error) {
	err = d.Call("glGetProgramInfoLog", func() { s = d.fn.GetProgramInfoLog(program) })
	return s, err
}

func (d *Device) DeleteProgram(program uint32) error {
	return d.Call("glDeleteProgram", func() { d.fn.DeleteProgram(program) })
}

func (d *Device) UseProgram(program uint32) error {
	return d.Call("glUseProgram", func() { d.fn.UseProgram(program) })
}

func (d *Device) GetUniformLocation(program uint32, name string) (loc int32, err error) {
	loc = -1
	err = d.Call("glGetUniformLocation", func() { loc = d.fn.GetUniformLocation(program, name) })
	return loc, err
}

func (d *Device) Uniform4f(location int32, v0, v1, v2, v3 float32) error {
	return d.Call("glUniform4f", func() { d.fn.Uniform4f(location, v0, v1, v2, v3) })
}

func (d *Device) ClearColor(r, g, b, a float32) error {
	return d.Call("glClearColor", func() { d.fn.ClearColor(r, g, b, a) })
}

func (d *Device) Clear(mask Enum) error {
	return d.Call("glClear", func() { d.fn.Clear(mask) })
}

func (d *Device) Viewport(x, y, width, height int32) error {
	return d.Call("glViewport", func() { d.fn.Viewport(x, y, width, height) })
}

func (d *Device) DrawElements(mode Enum, count int32, typ Enum, offset uintptr) error {
	return d.Call("glDrawElements", func() { d.fn.DrawElements(mode, count, typ, offset) })
}
