package renderer

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/richinsley/goquad/buffers"
	"github.com/richinsley/goquad/gpu"
	"github.com/richinsley/goquad/gpu/gputest"
	"github.com/richinsley/goquad/options"
	"github.com/richinsley/goquad/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadShader = `#shader vertex
#version 410 core
layout(location = 0) in vec4 position;
void main() { gl_Position = position; }
#shader fragment
#version 410 core
out vec4 color;
uniform vec4 u_Color;
void main() { color = u_Color; }
`

type fakeContext struct {
	closeAfter int
	ends       int
}

func (c *fakeContext) MakeCurrent() {}
func (c *fakeContext) Shutdown()    {}
func (c *fakeContext) ShouldClose() bool {
	return c.closeAfter > 0 && c.ends >= c.closeAfter
}
func (c *fakeContext) EndFrame()                      { c.ends++ }
func (c *fakeContext) GetFramebufferSize() (int, int) { return 800, 600 }
func (c *fakeContext) Time() float64                  { return 0 }

func testOptions(t *testing.T) *options.Options {
	t.Helper()
	o := options.Register(flag.NewFlagSet(t.Name(), flag.ContinueOnError))
	return o
}

func newDevice() (*gputest.Fake, *gpu.Device) {
	f := gputest.New()
	return f, gpu.NewDevice(f, log.New(io.Discard, "", 0))
}

func writeShader(t *testing.T, path, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func TestNewBuildsQuad(t *testing.T) {
	f, dev := newDevice()
	r, err := New(dev, &fakeContext{}, testOptions(t))
	require.NoError(t, err)

	vb := f.BufferObject(r.vbo.ID())
	require.NotNil(t, vb)
	assert.Equal(t, buffers.Bytes(quadPositions), vb.Data)
	assert.Len(t, vb.Data, 32)

	va := f.Array(r.vao.ID())
	require.NotNil(t, va)
	require.Contains(t, va.Attribs, uint32(0))
	a := va.Attribs[0]
	assert.True(t, a.Enabled)
	assert.Equal(t, int32(2), a.Size)
	assert.Equal(t, gpu.Float, a.Type)
	assert.False(t, a.Normalized)
	assert.Equal(t, int32(8), a.Stride)
	assert.Equal(t, uintptr(0), a.Offset)
	assert.Equal(t, r.ibo.ID(), va.ElementBuffer)

	ib := f.BufferObject(r.ibo.ID())
	require.NotNil(t, ib)
	assert.Equal(t, buffers.Bytes(quadIndices), ib.Data)

	p := f.Program(r.Program().ID())
	require.NotNil(t, p)
	assert.True(t, p.Linked)
	assert.Equal(t, p.Uniforms[ColorUniform], r.colorLoc)

	r.Shutdown()
	assert.Zero(t, f.Live())
	r.Shutdown()
	assert.Zero(t, f.Pending())
}

func TestRenderFrame(t *testing.T) {
	f, dev := newDevice()
	r, err := New(dev, &fakeContext{}, testOptions(t))
	require.NoError(t, err)
	defer r.Shutdown()

	require.NoError(t, r.RenderFrame())
	require.Len(t, f.Draws, 1)
	d := f.Draws[0]
	assert.Equal(t, gpu.Triangles, d.Mode)
	assert.Equal(t, int32(6), d.Count)
	assert.Equal(t, gpu.UnsignedInt, d.Type)
	assert.Equal(t, r.Program().ID(), d.Program)
	assert.Equal(t, r.vao.ID(), d.Array)
	assert.Equal(t, r.ibo.ID(), d.ElementBuffer)
	assert.Equal(t, 1, f.Clears)
	assert.Equal(t, [4]int32{0, 0, 800, 600}, f.View)

	values := f.Program(r.Program().ID()).Values
	assert.Equal(t, [4]float32{0, 0.3, 0.8, 1}, values[r.colorLoc])

	require.NoError(t, r.RenderFrame())
	assert.InDelta(t, 0.05, f.Program(r.Program().ID()).Values[r.colorLoc][0], 1e-6)
	assert.Equal(t, 2, r.Frames())
}

func TestRenderFrameReportsDriverErrors(t *testing.T) {
	f, dev := newDevice()
	r, err := New(dev, &fakeContext{}, testOptions(t))
	require.NoError(t, err)
	defer r.Shutdown()

	// A deleted program can no longer be installed.
	require.NoError(t, dev.DeleteProgram(r.Program().ID()))
	err = r.RenderFrame()
	var glErr *gpu.Error
	require.ErrorAs(t, err, &glErr)
	assert.Equal(t, "glUseProgram", glErr.Call)
	assert.Len(t, f.Draws, 1)
}

func TestNewWebGL2Dialect(t *testing.T) {
	f, dev := newDevice()
	opts := testOptions(t)
	*opts.Dialect = "webgl2"
	r, err := New(dev, &fakeContext{}, opts)
	require.NoError(t, err)
	defer r.Shutdown()

	require.NoError(t, r.RenderFrame())
	require.Len(t, f.Draws, 1)
	values := f.Program(r.Program().ID()).Values
	assert.Equal(t, [4]float32{0, 0.3, 0.8, 1}, values[r.colorLoc])
}

func TestRunStopsAtMaxFrames(t *testing.T) {
	f, dev := newDevice()
	opts := testOptions(t)
	*opts.MaxFrames = 3
	ctx := &fakeContext{}
	r, err := New(dev, ctx, opts)
	require.NoError(t, err)
	defer r.Shutdown()

	r.Run()
	assert.Equal(t, 3, ctx.ends)
	assert.Len(t, f.Draws, 3)
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	f, dev := newDevice()
	ctx := &fakeContext{closeAfter: 2}
	r, err := New(dev, ctx, testOptions(t))
	require.NoError(t, err)
	defer r.Shutdown()

	r.Run()
	assert.Equal(t, 2, ctx.ends)
	assert.Len(t, f.Draws, 2)
}

func TestNewInvalidDialect(t *testing.T) {
	f, dev := newDevice()
	opts := testOptions(t)
	*opts.Dialect = "hlsl"
	_, err := New(dev, &fakeContext{}, opts)
	assert.Error(t, err)
	assert.Zero(t, f.Live())
}

func TestNewMissingColorUniform(t *testing.T) {
	f, dev := newDevice()
	path := filepath.Join(t.TempDir(), "plain.shader")
	writeShader(t, path, "#shader vertex\nvoid main() {}\n#shader fragment\nvoid main() {}\n")
	opts := testOptions(t)
	*opts.ShaderFile = path

	_, err := New(dev, &fakeContext{}, opts)
	assert.ErrorIs(t, err, shader.ErrUniformNotFound)
	assert.Zero(t, f.Live())
}

func TestNewCompileError(t *testing.T) {
	f, dev := newDevice()
	path := filepath.Join(t.TempDir(), "broken.shader")
	writeShader(t, path, "#shader vertex\n#error bad vertex\n#shader fragment\nuniform vec4 u_Color;\n")
	opts := testOptions(t)
	*opts.ShaderFile = path

	_, err := New(dev, &fakeContext{}, opts)
	var ce *shader.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, shader.Vertex, ce.Stage)
	assert.Contains(t, ce.Log, "bad vertex")
	assert.Zero(t, f.Live())
}

func TestNewMissingShaderFile(t *testing.T) {
	_, dev := newDevice()
	opts := testOptions(t)
	*opts.ShaderFile = filepath.Join(t.TempDir(), "missing.shader")
	_, err := New(dev, &fakeContext{}, opts)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReloadKeepsProgramOnFailure(t *testing.T) {
	f, dev := newDevice()
	path := filepath.Join(t.TempDir(), "quad.shader")
	writeShader(t, path, quadShader)
	opts := testOptions(t)
	*opts.ShaderFile = path
	r, err := New(dev, &fakeContext{}, opts)
	require.NoError(t, err)
	defer r.Shutdown()
	first := r.Program().ID()

	writeShader(t, path, "#shader vertex\n#error oops\n#shader fragment\nuniform vec4 u_Color;\n")
	assert.Error(t, r.Reload())
	assert.Equal(t, first, r.Program().ID())
	require.NoError(t, r.RenderFrame())

	writeShader(t, path, quadShader)
	require.NoError(t, r.Reload())
	assert.NotEqual(t, first, r.Program().ID())
	assert.Nil(t, f.Program(first))
	require.NoError(t, r.RenderFrame())
}

func TestWatchRebuildsProgram(t *testing.T) {
	_, dev := newDevice()
	path := filepath.Join(t.TempDir(), "quad.shader")
	writeShader(t, path, quadShader)
	opts := testOptions(t)
	*opts.ShaderFile = path
	*opts.Watch = true
	r, err := New(dev, &fakeContext{}, opts)
	require.NoError(t, err)
	defer r.Shutdown()
	first := r.Program().ID()

	writeShader(t, path, quadShader+"\n")
	require.Eventually(t, func() bool {
		_ = r.RenderFrame()
		return r.Program().ID() != first
	}, 5*time.Second, 20*time.Millisecond)
}
