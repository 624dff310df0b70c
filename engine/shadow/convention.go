package shadow

// GraphicsConvention captures the platform facts that change shadow matrices.
// It is resolved once at startup and passed into every frame.
type GraphicsConvention struct {
	// UsesReversedZ is true when depth is stored as 1 at the near plane.
	UsesReversedZ bool `yaml:"uses_reversed_z"`

	// CubemapYFlip is true when cube face rendering flips the vertical axis, which
	// requires flipping each face view matrix to keep triangle winding.
	CubemapYFlip bool `yaml:"cubemap_y_flip"`
}

// Common conventions.
var (
	// ConventionWebGPU matches WebGPU with a standard depth buffer.
	ConventionWebGPU = GraphicsConvention{UsesReversedZ: false, CubemapYFlip: true}

	// ConventionReversedZ matches D3D, Vulkan and Metal style renderers with reversed depth.
	ConventionReversedZ = GraphicsConvention{UsesReversedZ: true, CubemapYFlip: true}

	// ConventionOpenGL matches OpenGL, which neither reverses depth nor flips cube faces.
	ConventionOpenGL = GraphicsConvention{UsesReversedZ: false, CubemapYFlip: false}
)
