// Package options collects the command line flags and the optional TOML
// config file into one set of settings.
package options

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"
)

type Options struct {
	Width        *int
	Height       *int
	Title        *string
	ShaderFile   *string  // empty uses the built-in shader
	Dialect      *string  // "glsl" or "webgl2"
	SwapInterval *int     // 1 syncs with the monitor refresh rate
	MaxFrames    *int     // 0 runs until the window closes
	Step         *float64 // colour pulse increment per frame
	Watch        *bool    // rebuild the program when ShaderFile changes
	Headless     *bool    // render into an EGL pbuffer instead of a window
	ConfigFile   *string
	Help         *bool
}

// config mirrors Options for the TOML file. Absent keys stay nil.
type config struct {
	Width        *int     `toml:"width"`
	Height       *int     `toml:"height"`
	Title        *string  `toml:"title"`
	ShaderFile   *string  `toml:"shader"`
	Dialect      *string  `toml:"dialect"`
	SwapInterval *int     `toml:"swap_interval"`
	MaxFrames    *int     `toml:"max_frames"`
	Step         *float64 `toml:"step"`
	Watch        *bool    `toml:"watch"`
	Headless     *bool    `toml:"headless"`
}

// Register defines the flags on fs and returns the options they fill.
func Register(fs *flag.FlagSet) *Options {
	return &Options{
		Width:        fs.Int("width", 640, "Window width"),
		Height:       fs.Int("height", 480, "Window height"),
		Title:        fs.String("title", "Hello World", "Window title"),
		ShaderFile:   fs.String("shader", "", "Combined shader file (#shader vertex / #shader fragment); built-in shader if empty"),
		Dialect:      fs.String("dialect", "glsl", "Shader language: glsl or webgl2"),
		SwapInterval: fs.Int("swap", 1, "Swap interval (1 = vsync)"),
		MaxFrames:    fs.Int("frames", 0, "Stop after this many frames (0 = until closed)"),
		Step:         fs.Float64("step", 0.05, "Colour pulse increment per frame"),
		Watch:        fs.Bool("watch", false, "Rebuild the shader program when the shader file changes"),
		Headless:     fs.Bool("headless", false, "Render offscreen through EGL without a window (needs -frames)"),
		ConfigFile:   fs.String("config", "", "TOML config file; flags given on the command line take precedence"),
		Help:         fs.Bool("help", false, "Show help message"),
	}
}

// Parse registers the flags on fs, parses args and applies the config file
// named by -config to every option not set on the command line.
func Parse(fs *flag.FlagSet, args []string) (*Options, error) {
	o := Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if *o.ConfigFile != "" {
		if err := o.LoadConfig(*o.ConfigFile, set); err != nil {
			return nil, err
		}
	}
	return o, o.Validate()
}

// LoadConfig overlays the TOML file at path. Keys whose flag name is in skip
// are ignored.
func (o *Options) LoadConfig(path string, skip map[string]bool) error {
	var c config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	overlayInt(o.Width, c.Width, skip["width"])
	overlayInt(o.Height, c.Height, skip["height"])
	overlayString(o.Title, c.Title, skip["title"])
	overlayString(o.ShaderFile, c.ShaderFile, skip["shader"])
	overlayString(o.Dialect, c.Dialect, skip["dialect"])
	overlayInt(o.SwapInterval, c.SwapInterval, skip["swap"])
	overlayInt(o.MaxFrames, c.MaxFrames, skip["frames"])
	if c.Step != nil && !skip["step"] {
		*o.Step = *c.Step
	}
	if c.Watch != nil && !skip["watch"] {
		*o.Watch = *c.Watch
	}
	if c.Headless != nil && !skip["headless"] {
		*o.Headless = *c.Headless
	}
	return nil
}

// Validate rejects settings the renderer cannot start with.
func (o *Options) Validate() error {
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", *o.Width, *o.Height)
	}
	if *o.MaxFrames < 0 {
		return fmt.Errorf("frames must not be negative")
	}
	if *o.Step <= 0 || *o.Step > 1 {
		return fmt.Errorf("step must be in (0, 1], got %v", *o.Step)
	}
	if *o.Watch && *o.ShaderFile == "" {
		return fmt.Errorf("-watch needs -shader")
	}
	if *o.Headless && *o.MaxFrames == 0 {
		return fmt.Errorf("-headless needs -frames")
	}
	return nil
}

func overlayInt(dst, src *int, skip bool) {
	if src != nil && !skip {
		*dst = *src
	}
}

func overlayString(dst, src *string, skip bool) {
	if src != nil && !skip {
		*dst = *src
	}
}
