// Package renderer draws the pulsing quad and drives the frame loop.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goquad/buffers"
	"github.com/richinsley/goquad/gpu"
	"github.com/richinsley/goquad/graphics"
	"github.com/richinsley/goquad/options"
	"github.com/richinsley/goquad/shader"
	"github.com/richinsley/goquad/translator"
)

// ColorUniform is the uniform the fragment stage reads its colour from.
const ColorUniform = "u_Color"

var quadPositions = []float32{
	-0.5, -0.5,
	0.5, -0.5,
	0.5, 0.5,
	-0.5, 0.5,
}

var quadIndices = []uint32{
	0, 1, 2,
	2, 3, 0,
}

// BaseColor is the quad colour before the pulse moves the red channel.
var BaseColor = mgl32.Vec4{0, 0.3, 0.8, 1}

type Renderer struct {
	dev     *gpu.Device
	context graphics.Context
	opts    *options.Options
	dialect translator.Dialect

	vbo     *buffers.Buffer
	ibo     *buffers.IndexBuffer
	vao     *buffers.VertexArray
	program *shader.Program

	colorLoc int32
	pulse    *Pulse
	watcher  *fileWatcher
	frames   int
}

// New uploads the quad, builds the shader program and looks up its colour
// uniform. ctx must be current on the calling thread.
func New(dev *gpu.Device, ctx graphics.Context, opts *options.Options) (*Renderer, error) {
	dialect, err := translator.ParseDialect(*opts.Dialect)
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		dev:     dev,
		context: ctx,
		opts:    opts,
		dialect: dialect,
		pulse:   NewPulse(BaseColor, float32(*opts.Step)),
	}

	if version, err := dev.GetString(gpu.Version); err == nil {
		log.Printf("OpenGL version: %s", version)
	}

	if err := r.buildQuad(); err != nil {
		r.Shutdown()
		return nil, err
	}

	r.program, r.colorLoc, err = r.buildProgram()
	if err != nil {
		r.Shutdown()
		return nil, err
	}

	if *opts.Watch {
		r.watcher, err = watchFile(*opts.ShaderFile)
		if err != nil {
			r.Shutdown()
			return nil, fmt.Errorf("failed to watch %s: %w", *opts.ShaderFile, err)
		}
		log.Printf("Watching %s for changes", *opts.ShaderFile)
	}
	return r, nil
}

func (r *Renderer) buildQuad() error {
	var err error
	r.vbo, err = buffers.NewVertexBuffer(r.dev, buffers.Bytes(quadPositions))
	if err != nil {
		return err
	}

	var layout buffers.Layout
	layout.PushFloat32(2)

	r.vao, err = buffers.NewVertexArray(r.dev)
	if err != nil {
		return err
	}
	// Attribute errors are already reported by the device; the quad still draws
	// with whatever state the driver accepted.
	_ = r.vao.Attach(r.vbo, &layout)

	r.ibo, err = buffers.NewIndexBuffer(r.dev, quadIndices, len(quadIndices))
	if err != nil {
		return err
	}
	_ = r.vao.SetIndexBuffer(r.ibo)
	return nil
}

// loadSource reads the configured shader file, or the built-in shader for the
// dialect, and translates it to GLSL 4.10 when needed.
func (r *Renderer) loadSource() (shader.Source, error) {
	var src shader.Source
	switch {
	case *r.opts.ShaderFile != "":
		var err error
		src, err = shader.ParseFile(*r.opts.ShaderFile)
		if err != nil {
			return shader.Source{}, err
		}
	case r.dialect == translator.WebGL2:
		src = shader.DefaultWebGL2()
	default:
		src = shader.Default()
	}
	return translator.Translate(context.Background(), r.dialect, src)
}

func (r *Renderer) buildProgram() (*shader.Program, int32, error) {
	src, err := r.loadSource()
	if err != nil {
		return nil, -1, err
	}
	program, err := shader.NewProgram(r.dev, src)
	if err != nil {
		return nil, -1, err
	}
	loc, err := program.UniformLocation(ColorUniform)
	if err != nil {
		program.Destroy()
		return nil, -1, err
	}
	return program, loc, nil
}

// Reload rebuilds the program from the shader file. On failure the current
// program stays in use and the error is returned.
func (r *Renderer) Reload() error {
	program, loc, err := r.buildProgram()
	if err != nil {
		return err
	}
	r.program.Destroy()
	r.program, r.colorLoc = program, loc
	return nil
}

func (r *Renderer) pollReload() {
	if r.watcher == nil || !r.watcher.Changed() {
		return
	}
	if err := r.Reload(); err != nil {
		log.Printf("Shader reload failed, keeping previous program: %v", err)
		return
	}
	log.Printf("Reloaded %s", *r.opts.ShaderFile)
}

// Program returns the program currently in use.
func (r *Renderer) Program() *shader.Program { return r.program }

// Color returns the colour the next frame will be drawn with.
func (r *Renderer) Color() mgl32.Vec4 { return r.pulse.Color() }

// Frames returns the number of frames rendered so far.
func (r *Renderer) Frames() int { return r.frames }

// RenderFrame draws one frame into the back buffer and advances the pulse.
// Driver errors are logged by the device and joined into the result.
func (r *Renderer) RenderFrame() error {
	r.pollReload()

	var errs []error
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	width, height := r.context.GetFramebufferSize()
	check(r.dev.Viewport(0, 0, int32(width), int32(height)))
	check(r.dev.Clear(gpu.ColorBufferBit))

	check(r.program.Use())
	c := r.pulse.Color()
	check(r.program.SetUniform4f(r.colorLoc, c.X(), c.Y(), c.Z(), c.W()))

	check(r.vao.Bind())
	check(r.ibo.Bind())
	check(r.dev.DrawElements(gpu.Triangles, int32(r.ibo.Count()), r.ibo.Type(), 0))

	r.pulse.Advance()
	r.frames++
	return errors.Join(errs...)
}

// Run renders until the window is asked to close or MaxFrames frames have
// been presented.
func (r *Renderer) Run() {
	limit := *r.opts.MaxFrames
	for !r.context.ShouldClose() {
		_ = r.RenderFrame()
		r.context.EndFrame()
		if limit > 0 && r.frames >= limit {
			break
		}
	}
}

// Shutdown releases every GPU object and stops the watcher. It is safe to
// call more than once.
func (r *Renderer) Shutdown() {
	if r.watcher != nil {
		if err := r.watcher.Close(); err != nil {
			log.Printf("Failed to close shader watcher: %v", err)
		}
		r.watcher = nil
	}
	if r.program != nil {
		r.program.Destroy()
	}
	if r.vao != nil {
		r.vao.Destroy()
	}
	if r.ibo != nil {
		r.ibo.Destroy()
	}
	if r.vbo != nil {
		r.vbo.Destroy()
	}
}
