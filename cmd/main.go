package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goquad/glfwcontext"
	"github.com/richinsley/goquad/gpu"
	"github.com/richinsley/goquad/gpu/gogl"
	"github.com/richinsley/goquad/graphics"
	"github.com/richinsley/goquad/headless"
	"github.com/richinsley/goquad/options"
	"github.com/richinsley/goquad/renderer"
	"github.com/richinsley/goquad/shader"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts, err := options.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	if *opts.Help {
		fmt.Println("Pulsing quad renderer")
		flag.PrintDefaults()
		return
	}

	var ctx graphics.Context
	var window *glfwcontext.Context
	if *opts.Headless {
		h, err := headless.New(*opts.Width, *opts.Height)
		if err != nil {
			log.Fatalf("Failed to create headless context: %v", err)
		}
		defer h.Shutdown()
		ctx = h
	} else {
		if err := glfwcontext.InitGraphics(); err != nil {
			log.Fatalf("Failed to initialize graphics: %v", err)
		}
		defer glfwcontext.TerminateGraphics()

		window, err = glfwcontext.New(opts)
		if err != nil {
			log.Fatalf("Failed to create window: %v", err)
		}
		defer window.Shutdown()
		ctx = window
	}

	if err := gogl.Init(); err != nil {
		log.Fatalf("Failed to initialize OpenGL: %v", err)
	}

	dev := gpu.NewDevice(gogl.Functions{}, nil)
	r, err := renderer.New(dev, ctx, opts)
	if err != nil {
		var ce *shader.CompileError
		if errors.As(err, &ce) {
			log.Fatalf("Failed to compile %s shader:\n%s", ce.Stage, ce.Log)
		}
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Shutdown()

	if window != nil && *opts.ShaderFile != "" {
		window.RegisterKeyCallback(glfw.KeyR, func() {
			if err := r.Reload(); err != nil {
				log.Printf("Shader reload failed: %v", err)
				return
			}
			log.Println("Shader reloaded")
		})
	}

	log.Println("Starting render loop...")
	r.Run()
	log.Printf("Rendered %d frames", r.Frames())
}
