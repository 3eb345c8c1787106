// Package gpu describes the slice of the OpenGL API the renderer drives and
// wraps it with per-call error checking.
//
// The pipeline's "currently bound" state is driver-global. Nothing in this
// package caches it: every wrapper binds immediately before use and the
// Functions implementation (the real driver or gputest.Fake) owns the state.
package gpu

// Enum is an OpenGL enumerant.
type Enum uint32

const (
	False = 0
	True  = 1

	NoError                     Enum = 0
	InvalidEnum                 Enum = 0x0500
	InvalidValue                Enum = 0x0501
	InvalidOperation            Enum = 0x0502
	StackOverflow               Enum = 0x0503
	StackUnderflow              Enum = 0x0504
	OutOfMemory                 Enum = 0x0505
	InvalidFramebufferOperation Enum = 0x0506
	ContextLost                 Enum = 0x0507

	ArrayBuffer        Enum = 0x8892
	ElementArrayBuffer Enum = 0x8893

	StaticDraw  Enum = 0x88E4
	DynamicDraw Enum = 0x88E8
	StreamDraw  Enum = 0x88E0

	Byte          Enum = 0x1400
	UnsignedByte  Enum = 0x1401
	Short         Enum = 0x1402
	UnsignedShort Enum = 0x1403
	Int           Enum = 0x1404
	UnsignedInt   Enum = 0x1405
	Float         Enum = 0x1406
	HalfFloat     Enum = 0x140B

	FragmentShader Enum = 0x8B30
	VertexShader   Enum = 0x8B31
	CompileStatus  Enum = 0x8B81
	LinkStatus     Enum = 0x8B82
	InfoLogLength  Enum = 0x8B84

	Triangles      Enum = 0x0004
	ColorBufferBit Enum = 0x4000

	Vendor   Enum = 0x1F00
	Renderer Enum = 0x1F01
	Version  Enum = 0x1F02
)

var errorNames = map[Enum]string{
	NoError:                     "GL_NO_ERROR",
	InvalidEnum:                 "GL_INVALID_ENUM",
	InvalidValue:                "GL_INVALID_VALUE",
	InvalidOperation:            "GL_INVALID_OPERATION",
	StackOverflow:               "GL_STACK_OVERFLOW",
	StackUnderflow:              "GL_STACK_UNDERFLOW",
	OutOfMemory:                 "GL_OUT_OF_MEMORY",
	InvalidFramebufferOperation: "GL_INVALID_FRAMEBUFFER_OPERATION",
	ContextLost:                 "GL_CONTEXT_LOST",
}

// ErrorName returns the symbolic name of a glGetError code, or "" if unknown.
func ErrorName(code Enum) string {
	return errorNames[code]
}

// Functions is the raw driver call surface. Implementations must be called
// from the goroutine that owns the current context.
type Functions interface {
	GetError() Enum
	GetString(name Enum) string

	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target Enum, id uint32)
	BufferData(target Enum, data []byte, usage Enum)
	GetBufferSubData(target Enum, offset int, data []byte)

	GenVertexArray() uint32
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset uintptr)

	CreateShader(typ Enum) uint32
	ShaderSource(id uint32, src string)
	CompileShader(id uint32)
	GetShaderi(id uint32, pname Enum) int32
	GetShaderInfoLog(id uint32) string
	DeleteShader(id uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgrami(program uint32, pname Enum) int32
	GetProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	GetUniformLocation(program uint32, name string) int32
	Uniform4f(location int32, v0, v1, v2, v3 float32)

	ClearColor(r, g, b, a float32)
	Clear(mask Enum)
	Viewport(x, y, width, height int32)
	DrawElements(mode Enum, count int32, typ Enum, offset uintptr)
}
