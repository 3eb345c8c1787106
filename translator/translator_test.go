package translator

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goquad/gpu"
	"github.com/richinsley/goquad/gpu/gputest"
	"github.com/richinsley/goquad/shader"
)

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, GLSL, d)

	d, err = ParseDialect("webgl2")
	require.NoError(t, err)
	assert.Equal(t, WebGL2, d)

	_, err = ParseDialect("hlsl")
	assert.Error(t, err)
}

func TestTranslateGLSLPassThrough(t *testing.T) {
	src := shader.Default()
	out, err := Translate(context.Background(), GLSL, src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestTranslateWebGL2(t *testing.T) {
	out, err := Translate(context.Background(), WebGL2, shader.DefaultWebGL2())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.Vertex, "#version 410"), out.Vertex)
	assert.True(t, strings.HasPrefix(out.Fragment, "#version 410"), out.Fragment)
	mapped := out.Names["u_Color"]
	require.NotEmpty(t, mapped)
	assert.Contains(t, out.Fragment, mapped)

	// The translated pair links, and the source-level uniform name still
	// resolves through the recorded mapping.
	dev := gpu.NewDevice(gputest.New(), log.New(io.Discard, "", 0))
	p, err := shader.NewProgram(dev, out)
	require.NoError(t, err)
	defer p.Destroy()
	loc, err := p.UniformLocation("u_Color")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, loc, int32(0))
}
