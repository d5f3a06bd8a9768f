package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"terrainbaker/control"
	"terrainbaker/core"
)

var (
	// ErrNotReady is returned when simulate/readback is called outside
	// the Ready state.
	ErrNotReady = errors.New("solver not initialized")
	// ErrReadbackSize is returned when the GPU-side height buffer does
	// not match the grid the solver was initialized with.
	ErrReadbackSize = errors.New("readback byte count does not match grid size")
)

type solverState int

const (
	stateUninitialized solverState = iota
	stateReady
	stateDisposed
)

const (
	tileSize    = 8
	numBindings = 9
)

// Solver owns the GPU-resident erosion state: height, water, velocity,
// ping/pong sediment and flux buffers, the two control buffers, the
// compute program and the parameter block. All handles are created
// together in Init and released together in Dispose; the instance
// assumes exclusive single-owner use with a current GL context.
type Solver struct {
	st     solverState
	w, h   int
	params Params

	program uint32
	ubo     uint32

	height   uint32
	water    uint32
	velocity uint32
	sediment [2]uint32
	flux     [2]uint32
	ctlA     uint32
	ctlB     uint32

	// bindSets[0] is the ping set, bindSets[1] the pong set. They
	// differ only in which sediment/flux buffer is read vs written.
	bindSets [2][numBindings]uint32
	ping     int

	groupsX, groupsY uint32
}

func NewSolver() *Solver {
	return &Solver{}
}

// Init allocates every buffer sized to the input grid, compiles the
// kernel and uploads the initial state: the heightfield converted to
// meters, zeroed water/velocity/sediment/flux, and the control grids.
// On any failure all partial allocations are released and the solver
// stays non-ready.
func (s *Solver) Init(height *core.ScalarGrid, ctl *control.State, p Params) error {
	if s.st == stateReady {
		s.Dispose()
	}
	if height.Empty() {
		return core.ErrEmptyGrid
	}
	if ctl == nil || ctl.W != height.W || ctl.H != height.H {
		return core.ErrGridMismatch
	}
	s.w, s.h = height.W, height.H
	s.params = p

	program, err := compileComputeShader(erosionKernel)
	if err != nil {
		return fmt.Errorf("erosion kernel: %w", err)
	}
	s.program = program

	cells := s.w * s.h
	zero1 := make([]float32, cells)
	zero2 := make([]float32, cells*2)
	zero4 := make([]float32, cells*4)

	s.height = newStorageBuffer(heightToMeters(height.Data, p.HeightScale))
	s.water = newStorageBuffer(zero1)
	s.velocity = newStorageBuffer(zero2)
	s.sediment[0] = newStorageBuffer(zero1)
	s.sediment[1] = newStorageBuffer(zero1)
	s.flux[0] = newStorageBuffer(zero4)
	s.flux[1] = newStorageBuffer(zero4)
	s.ctlA = newVec4Buffer(ctl.A)
	s.ctlB = newVec4Buffer(ctl.B)

	gl.GenBuffers(1, &s.ubo)
	gl.BindBuffer(gl.UNIFORM_BUFFER, s.ubo)
	kp := packParams(p, s.w, s.h)
	gl.BufferData(gl.UNIFORM_BUFFER, int(unsafe.Sizeof(kp)), unsafe.Pointer(&kp), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		s.Dispose()
		return fmt.Errorf("buffer allocation failed: gl error 0x%x", glErr)
	}

	s.bindSets = buildBindingSets(s.height, s.water, s.velocity, s.sediment, s.flux, s.ctlA, s.ctlB)
	s.ping = 0
	s.groupsX = uint32((s.w + tileSize - 1) / tileSize)
	s.groupsY = uint32((s.h + tileSize - 1) / tileSize)
	s.st = stateReady
	return nil
}

// buildBindingSets lays the buffers out per the kernel binding contract:
// 0=height 1=water 2=sediment-read 3=sediment-write 4=flux-read
// 5=flux-write 6=velocity 7=controlA 8=controlB. The pong set swaps only
// 2/3 and 4/5.
func buildBindingSets(height, water, velocity uint32, sediment, flux [2]uint32, ctlA, ctlB uint32) [2][numBindings]uint32 {
	return [2][numBindings]uint32{
		{height, water, sediment[0], sediment[1], flux[0], flux[1], velocity, ctlA, ctlB},
		{height, water, sediment[1], sediment[0], flux[1], flux[0], velocity, ctlA, ctlB},
	}
}

func newStorageBuffer(data []float32) uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_COPY)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	return buf
}

func newVec4Buffer(data []mgl32.Vec4) uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buf)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, len(data)*16, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	return buf
}

// Simulate advances the erosion state by the given iteration count in
// batches of BatchIterations dispatches. Each batch binds the program
// and parameter block once, alternates the ping/pong binding set per
// iteration, and ends with a blocking fence wait so batches stay
// ordered and command memory stays bounded.
func (s *Solver) Simulate(iterations int) error {
	if s.st != stateReady {
		return ErrNotReady
	}
	if iterations <= 0 {
		return nil
	}
	batch := s.params.BatchIterations
	if batch <= 0 {
		batch = 1
	}

	for done := 0; done < iterations; {
		n := min(batch, iterations-done)

		gl.UseProgram(s.program)
		gl.BindBuffer(gl.UNIFORM_BUFFER, s.ubo)
		kp := packParams(s.params, s.w, s.h)
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, int(unsafe.Sizeof(kp)), unsafe.Pointer(&kp))
		gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
		gl.BindBufferBase(gl.UNIFORM_BUFFER, 0, s.ubo)

		for it := 0; it < n; it++ {
			set := s.bindSets[s.ping]
			for slot, buf := range set {
				gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, uint32(slot), buf)
			}
			gl.DispatchCompute(s.groupsX, s.groupsY, 1)
			gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
			s.ping = 1 - s.ping
		}

		sync := gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
		gl.ClientWaitSync(sync, gl.SYNC_FLUSH_COMMANDS_BIT, ^uint64(0))
		gl.DeleteSync(sync)

		done += n
	}
	return nil
}

// ReadHeight copies the relaxed height buffer back and decodes it into
// a normalized [0,1] grid using the scale recorded at Init.
func (s *Solver) ReadHeight() (*core.ScalarGrid, error) {
	if s.st != stateReady {
		return nil, ErrNotReady
	}
	cells := s.w * s.h
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, s.height)
	var size int32
	gl.GetBufferParameteriv(gl.SHADER_STORAGE_BUFFER, gl.BUFFER_SIZE, &size)
	if int(size) != cells*4 {
		gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrReadbackSize, size, cells*4)
	}
	meters := make([]float32, cells)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, cells*4, gl.Ptr(meters))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	out := core.NewScalarGrid(s.w, s.h)
	out.Data = metersToHeight(meters, s.params.HeightScale)
	return out, nil
}

// Dispose releases every owned GPU handle unconditionally and resets the
// solver to the disposed state. Safe to call repeatedly and after a
// failed Init.
func (s *Solver) Dispose() {
	deleteBuffer(&s.height)
	deleteBuffer(&s.water)
	deleteBuffer(&s.velocity)
	deleteBuffer(&s.sediment[0])
	deleteBuffer(&s.sediment[1])
	deleteBuffer(&s.flux[0])
	deleteBuffer(&s.flux[1])
	deleteBuffer(&s.ctlA)
	deleteBuffer(&s.ctlB)
	deleteBuffer(&s.ubo)
	if s.program != 0 {
		gl.DeleteProgram(s.program)
		s.program = 0
	}
	s.bindSets = [2][numBindings]uint32{}
	s.ping = 0
	s.st = stateDisposed
}

func deleteBuffer(buf *uint32) {
	if *buf != 0 {
		gl.DeleteBuffers(1, buf)
		*buf = 0
	}
}
