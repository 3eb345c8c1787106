package graphics

// Context defines the interface for a window with an OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame swaps the front and back buffers and processes pending events.
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
}
