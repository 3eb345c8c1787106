package shader

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richinsley/goquad/gpu"
)

//go:embed res/basic.shader
var basicShader string

//go:embed res/basic_webgl2.shader
var basicWebGL2Shader string

// Stage identifies a pipeline stage.
type Stage int

const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// GLType returns the shader object type for s.
func (s Stage) GLType() gpu.Enum {
	if s == Fragment {
		return gpu.FragmentShader
	}
	return gpu.VertexShader
}

// Source holds the text of both stages.
type Source struct {
	Vertex   string
	Fragment string
	// Names maps uniform names as written in the shader file to the names in
	// Vertex/Fragment, when a translator rewrote them. Nil means identity.
	Names map[string]string
}

// Stage returns the text for s.
func (src Source) Stage(s Stage) string {
	if s == Fragment {
		return src.Fragment
	}
	return src.Vertex
}

// Parse splits a combined shader file into its stages. A line containing
// "#shader" switches the current section to vertex or fragment when it also
// contains that word. Every other line is appended to the current section
// followed by a newline; lines before the first marker are dropped.
func Parse(r io.Reader) (Source, error) {
	var sections [2]strings.Builder
	current := -1
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			if strings.Contains(line, "#shader") {
				if strings.Contains(line, "vertex") {
					current = int(Vertex)
				} else if strings.Contains(line, "fragment") {
					current = int(Fragment)
				}
			} else if current >= 0 {
				sections[current].WriteString(line)
				sections[current].WriteByte('\n')
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Source{}, fmt.Errorf("failed to read shader source: %w", err)
		}
	}
	return Source{Vertex: sections[Vertex].String(), Fragment: sections[Fragment].String()}, nil
}

// ParseFile parses the shader file at path.
func ParseFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return Source{}, err
	}
	defer f.Close()
	src, err := Parse(f)
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// Default returns the built-in GLSL 4.10 solid colour shader.
func Default() Source {
	src, _ := Parse(strings.NewReader(basicShader))
	return src
}

// DefaultWebGL2 returns the built-in solid colour shader written in ESSL 3.00,
// for use with the translator.
func DefaultWebGL2() Source {
	src, _ := Parse(strings.NewReader(basicWebGL2Shader))
	return src
}
