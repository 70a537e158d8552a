package gpu

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlefield/shaders"
)

// uniformLocations caches shader uniform locations.
type uniformLocations struct {
	time           int32
	mouse          int32
	ringRadius     int32
	ringWidth      int32
	displacement   int32
	pixelRatio     int32
	pointSize      int32
	heartbeatScale int32
	swimSpeed      int32
	resolution     int32
	tanHalfFOV     int32
	color1         int32
	color2         int32
	color3         int32
}

func lookupLocations(shader rl.Shader) uniformLocations {
	return uniformLocations{
		time:           rl.GetShaderLocation(shader, shaders.UniformTime),
		mouse:          rl.GetShaderLocation(shader, shaders.UniformMouse),
		ringRadius:     rl.GetShaderLocation(shader, shaders.UniformRingRadius),
		ringWidth:      rl.GetShaderLocation(shader, shaders.UniformRingWidth),
		displacement:   rl.GetShaderLocation(shader, shaders.UniformDisplacement),
		pixelRatio:     rl.GetShaderLocation(shader, shaders.UniformPixelRatio),
		pointSize:      rl.GetShaderLocation(shader, shaders.UniformPointSize),
		heartbeatScale: rl.GetShaderLocation(shader, shaders.UniformHeartbeatScale),
		swimSpeed:      rl.GetShaderLocation(shader, shaders.UniformSwimSpeed),
		resolution:     rl.GetShaderLocation(shader, shaders.UniformResolution),
		tanHalfFOV:     rl.GetShaderLocation(shader, shaders.UniformTanHalfFOV),
		color1:         rl.GetShaderLocation(shader, shaders.UniformColor1),
		color2:         rl.GetShaderLocation(shader, shaders.UniformColor2),
		color3:         rl.GetShaderLocation(shader, shaders.UniformColor3),
	}
}

// Program is the compiled particle shader wrapped in a material.
// The material owns the shader.
type Program struct {
	material rl.Material
	locs     uniformLocations
	released bool
}

// apply uploads every uniform. The set is small enough that tracking changes
// would cost more than it saves.
func (p *Program) apply(u *shaders.Uniforms) {
	sh := p.material.Shader
	float := func(loc int32, v float32) {
		rl.SetShaderValue(sh, loc, []float32{v}, rl.ShaderUniformFloat)
	}
	vec3 := func(loc int32, v [3]float32) {
		rl.SetShaderValue(sh, loc, v[:], rl.ShaderUniformVec3)
	}

	float(p.locs.time, u.Time)
	vec3(p.locs.mouse, u.Mouse)
	float(p.locs.ringRadius, u.RingRadius)
	float(p.locs.ringWidth, u.RingWidth)
	float(p.locs.displacement, u.Displacement)
	float(p.locs.pixelRatio, u.PixelRatio)
	float(p.locs.pointSize, u.PointSize)
	float(p.locs.heartbeatScale, u.HeartbeatScale)
	float(p.locs.swimSpeed, u.SwimSpeed)
	rl.SetShaderValue(sh, p.locs.resolution, u.Resolution[:], rl.ShaderUniformVec2)
	float(p.locs.tanHalfFOV, u.TanHalfFOV)
	vec3(p.locs.color1, u.Color1)
	vec3(p.locs.color2, u.Color2)
	vec3(p.locs.color3, u.Color3)
}

// Release unloads the material and its shader. Safe to call more than once.
func (p *Program) Release() {
	if p.released {
		return
	}
	rl.UnloadMaterial(p.material)
	p.released = true
}
