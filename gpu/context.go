// Package gpu owns the OpenGL compute pipeline that relaxes the
// heightfield: buffer allocation, batched dispatch and readback.
package gpu

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// Context is a hidden-window OpenGL 4.3 context for offline compute.
type Context struct {
	window *glfw.Window
}

// NewContext initializes GLFW with an invisible window and makes a 4.3
// core context current on the calling goroutine.
func NewContext() (*Context, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(64, 64, "terrainbaker", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create offscreen window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	return &Context{window: window}, nil
}

// Terminate destroys the window and shuts GLFW down.
func (c *Context) Terminate() {
	if c.window != nil {
		c.window.Destroy()
		c.window = nil
	}
	glfw.Terminate()
}
