package gpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// erosionKernel is the pipe-model shallow-water step. One invocation per
// cell, 8x8 tiles. Bindings 2/3 and 4/5 swap between the ping and pong
// sets; everything else is bound identically each iteration.
const erosionKernel = `
#version 430 core

layout(local_size_x = 8, local_size_y = 8) in;

layout(std140, binding = 0) uniform SimParams {
    uint width;
    uint height;
    uint pad0;
    uint pad1;
    float dt;
    float dx;
    float dy;
    float gravity;
    float pipeArea;
    float Ks;
    float Kd;
    float Kc;
    float Ke;
    float minSlopeSine;
    float rainIntensity;
};

layout(std430, binding = 0) buffer HeightBuf   { float b[]; };
layout(std430, binding = 1) buffer WaterBuf    { float d[]; };
layout(std430, binding = 2) readonly  buffer SedimentIn  { float sedIn[]; };
layout(std430, binding = 3) writeonly buffer SedimentOut { float sedOut[]; };
layout(std430, binding = 4) readonly  buffer FluxIn      { vec4 fluxIn[]; };
layout(std430, binding = 5) writeonly buffer FluxOut     { vec4 fluxOut[]; };
layout(std430, binding = 6) buffer VelocityBuf { vec2 vel[]; };
layout(std430, binding = 7) readonly  buffer ControlA    { vec4 ctlA[]; };
layout(std430, binding = 8) readonly  buffer ControlB    { vec4 ctlB[]; };

// Flux components: x=left, y=right, z=up, w=down.

uint idxOf(ivec2 p) {
    return uint(p.y) * width + uint(p.x);
}

bool inGrid(ivec2 p) {
    return p.x >= 0 && p.y >= 0 && p.x < int(width) && p.y < int(height);
}

float sampleSediment(vec2 p) {
    p = clamp(p, vec2(0.0), vec2(float(width) - 1.0, float(height) - 1.0));
    ivec2 p0 = ivec2(floor(p));
    ivec2 p1 = min(p0 + ivec2(1), ivec2(int(width) - 1, int(height) - 1));
    vec2 t = p - vec2(p0);
    float s00 = sedIn[idxOf(p0)];
    float s10 = sedIn[idxOf(ivec2(p1.x, p0.y))];
    float s01 = sedIn[idxOf(ivec2(p0.x, p1.y))];
    float s11 = sedIn[idxOf(p1)];
    return mix(mix(s00, s10, t.x), mix(s01, s11, t.x), t.y);
}

void main() {
    ivec2 cell = ivec2(gl_GlobalInvocationID.xy);
    if (!inGrid(cell)) {
        return;
    }
    uint i = idxOf(cell);

    // Per-texel multipliers, gated toward neutral by the mask weight.
    float maskW = ctlB[i].w;
    float rainMult = mix(1.0, ctlA[i].x, maskW);
    float eroMult  = mix(1.0, ctlA[i].y, maskW);
    float depMult  = mix(1.0, ctlA[i].z, maskW);
    float capMult  = mix(1.0, ctlA[i].w, maskW);
    float evapMult = mix(1.0, ctlB[i].x, maskW);
    float pipeMult = mix(1.0, ctlB[i].y, maskW);
    float slopeBias = ctlB[i].z * maskW;

    // 1. Rainfall.
    float water = d[i] + dt * rainIntensity * rainMult;

    ivec2 nL = cell + ivec2(-1, 0);
    ivec2 nR = cell + ivec2( 1, 0);
    ivec2 nU = cell + ivec2( 0,-1);
    ivec2 nD = cell + ivec2( 0, 1);

    // 2. Apply the previous iteration's flux field.
    vec4 fOut = fluxIn[i];
    float inL = inGrid(nL) ? fluxIn[idxOf(nL)].y : 0.0;
    float inR = inGrid(nR) ? fluxIn[idxOf(nR)].x : 0.0;
    float inU = inGrid(nU) ? fluxIn[idxOf(nU)].w : 0.0;
    float inD = inGrid(nD) ? fluxIn[idxOf(nD)].z : 0.0;
    float inflow = inL + inR + inU + inD;
    float outflow = fOut.x + fOut.y + fOut.z + fOut.w;
    float waterNew = max(0.0, water + dt * (inflow - outflow) / (dx * dy));

    // 3. Velocity from the net flux through the cell.
    float dMean = max(0.5 * (water + waterNew), 1e-3);
    vec2 v;
    v.x = 0.5 * (inL - fOut.x + fOut.y - inR) / (dy * dMean);
    v.y = 0.5 * (inU - fOut.z + fOut.w - inD) / (dx * dMean);

    // 4. New outflow flux from the updated water surface.
    // Height and water are updated in place, so neighbor reads of b[]
    // and d[] below may see this pass's values or the previous pass's
    // depending on work-group scheduling. Only sediment and flux are
    // ping-ponged; per-cell results can vary across runs within one
    // dispatch, and the batch fence only orders whole dispatches.
    float surf = b[i] + waterNew;
    float area = pipeArea * pipeMult;
    vec4 f;
    f.x = inGrid(nL) ? max(0.0, fOut.x + dt * area * gravity * (surf - b[idxOf(nL)] - d[idxOf(nL)]) / dx) : 0.0;
    f.y = inGrid(nR) ? max(0.0, fOut.y + dt * area * gravity * (surf - b[idxOf(nR)] - d[idxOf(nR)]) / dx) : 0.0;
    f.z = inGrid(nU) ? max(0.0, fOut.z + dt * area * gravity * (surf - b[idxOf(nU)] - d[idxOf(nU)]) / dy) : 0.0;
    f.w = inGrid(nD) ? max(0.0, fOut.w + dt * area * gravity * (surf - b[idxOf(nD)] - d[idxOf(nD)]) / dy) : 0.0;
    float fSum = f.x + f.y + f.z + f.w;
    if (fSum > 0.0) {
        f *= min(1.0, waterNew * dx * dy / (fSum * dt));
    }

    // 5. Sediment capacity from tilt and flow speed.
    float hL = inGrid(nL) ? b[idxOf(nL)] : b[i];
    float hR = inGrid(nR) ? b[idxOf(nR)] : b[i];
    float hU = inGrid(nU) ? b[idxOf(nU)] : b[i];
    float hD = inGrid(nD) ? b[idxOf(nD)] : b[i];
    float sx = (hR - hL) / (2.0 * dx);
    float sy = (hD - hU) / (2.0 * dy);
    float sinTilt = sqrt(sx * sx + sy * sy) / sqrt(1.0 + sx * sx + sy * sy);
    float slope = max(minSlopeSine, sinTilt + slopeBias);
    float capacity = Kc * capMult * slope * length(v);

    // 6. Suspended sediment advected back along the velocity field.
    vec2 back = vec2(cell) - v * dt * vec2(1.0 / dx, 1.0 / dy);
    float sed = sampleSediment(back);

    // 7. Exchange material between the bed and suspension.
    if (capacity > sed) {
        float amount = dt * Ks * eroMult * (capacity - sed);
        b[i] -= amount;
        sed += amount;
    } else {
        float amount = dt * Kd * depMult * (sed - capacity);
        b[i] += amount;
        sed -= amount;
    }

    // 8. Evaporation.
    waterNew *= max(0.0, 1.0 - Ke * evapMult * dt);

    d[i] = waterNew;
    vel[i] = v;
    sedOut[i] = sed;
    fluxOut[i] = f;
}
`

// compileComputeShader compiles and links a compute shader program.
func compileComputeShader(source string) (uint32, error) {
	shader := gl.CreateShader(gl.COMPUTE_SHADER)

	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compute shader compilation failed: %s", infoLog)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("compute program link failed: %s", infoLog)
	}

	gl.DeleteShader(shader)

	return program, nil
}
