// Package translator converts WebGL2 (ESSL 3.00) shader sources to desktop
// GLSL 4.10 so they can be compiled by a core profile context.
package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/richinsley/goquad/shader"
	gst "github.com/richinsley/goshadertranslator"
)

// Dialect names the language a shader file is written in.
type Dialect string

const (
	GLSL   Dialect = "glsl"
	WebGL2 Dialect = "webgl2"
)

// ParseDialect validates a dialect name. The empty string means GLSL.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case "", GLSL:
		return GLSL, nil
	case WebGL2:
		return WebGL2, nil
	}
	return "", fmt.Errorf("unknown shader dialect %q (want %q or %q)", s, GLSL, WebGL2)
}

var (
	translator *gst.ShaderTranslator
	initOnce   sync.Once
	initErr    error
)

// GetTranslator returns the process-wide translator, starting it on first use.
func GetTranslator(ctx context.Context) (*gst.ShaderTranslator, error) {
	initOnce.Do(func() {
		translator, initErr = gst.NewShaderTranslator(ctx)
	})
	return translator, initErr
}

// Translate returns src unchanged for GLSL. For WebGL2 it translates both
// stages and records the uniform renames in the result's Names.
func Translate(ctx context.Context, d Dialect, src shader.Source) (shader.Source, error) {
	if d != WebGL2 {
		return src, nil
	}
	t, err := GetTranslator(ctx)
	if err != nil {
		return shader.Source{}, fmt.Errorf("failed to start shader translator: %w", err)
	}

	out := shader.Source{Names: map[string]string{}}
	for _, stage := range []shader.Stage{shader.Vertex, shader.Fragment} {
		res, err := t.TranslateShader(src.Stage(stage), stage.String(), gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
		if err != nil {
			return shader.Source{}, fmt.Errorf("%s shader translation failed: %w", stage, err)
		}
		if stage == shader.Vertex {
			out.Vertex = res.Code
		} else {
			out.Fragment = res.Code
		}
		for name, v := range res.Variables {
			out.Names[name] = v.MappedName
		}
	}
	return out, nil
}
