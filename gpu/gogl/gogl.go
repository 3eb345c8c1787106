// Package gogl implements gpu.Functions on top of the go-gl 4.1 core bindings.
package gogl

import (
	"strings"
	"sync"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goquad/gpu"
)

var (
	glInitOnce sync.Once
	glInitErr  error
)

// Init resolves the OpenGL function pointers. The context must already be
// current on the calling thread. Later calls return the first result.
func Init() error {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
	})
	return glInitErr
}

// Functions calls straight into the driver.
type Functions struct{}

var _ gpu.Functions = Functions{}

func (Functions) GetError() gpu.Enum { return gpu.Enum(gl.GetError()) }

func (Functions) GetString(name gpu.Enum) string {
	s := gl.GetString(uint32(name))
	if s == nil {
		return ""
	}
	return gl.GoStr(s)
}

func (Functions) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (Functions) DeleteBuffer(id uint32) { gl.DeleteBuffers(1, &id) }

func (Functions) BindBuffer(target gpu.Enum, id uint32) { gl.BindBuffer(uint32(target), id) }

func (Functions) BufferData(target gpu.Enum, data []byte, usage gpu.Enum) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(&data[0])
	}
	gl.BufferData(uint32(target), len(data), ptr, uint32(usage))
}

func (Functions) GetBufferSubData(target gpu.Enum, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.GetBufferSubData(uint32(target), offset, len(data), gl.Ptr(&data[0]))
}

func (Functions) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (Functions) DeleteVertexArray(id uint32) { gl.DeleteVertexArrays(1, &id) }

func (Functions) BindVertexArray(id uint32) { gl.BindVertexArray(id) }

func (Functions) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (Functions) VertexAttribPointer(index uint32, size int32, typ gpu.Enum, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, uint32(typ), normalized, stride, offset)
}

func (Functions) CreateShader(typ gpu.Enum) uint32 { return gl.CreateShader(uint32(typ)) }

func (Functions) ShaderSource(id uint32, src string) {
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(id, 1, csources, nil)
	free()
}

func (Functions) CompileShader(id uint32) { gl.CompileShader(id) }

func (Functions) GetShaderi(id uint32, pname gpu.Enum) int32 {
	var v int32
	gl.GetShaderiv(id, uint32(pname), &v)
	return v
}

func (Functions) GetShaderInfoLog(id uint32) string {
	var logLength int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(id, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (Functions) DeleteShader(id uint32) { gl.DeleteShader(id) }

func (Functions) CreateProgram() uint32 { return gl.CreateProgram() }

func (Functions) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (Functions) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (Functions) GetProgrami(program uint32, pname gpu.Enum) int32 {
	var v int32
	gl.GetProgramiv(program, uint32(pname), &v)
	return v
}

func (Functions) GetProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (Functions) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (Functions) UseProgram(program uint32) { gl.UseProgram(program) }

func (Functions) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Functions) Uniform4f(location int32, v0, v1, v2, v3 float32) {
	gl.Uniform4f(location, v0, v1, v2, v3)
}

func (Functions) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (Functions) Clear(mask gpu.Enum) { gl.Clear(uint32(mask)) }

func (Functions) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (Functions) DrawElements(mode gpu.Enum, count int32, typ gpu.Enum, offset uintptr) {
	gl.DrawElementsWithOffset(uint32(mode), count, uint32(typ), offset)
}
