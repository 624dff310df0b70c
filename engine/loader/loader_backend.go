package loader

import (
	"io"
)

// loaderBackend defines the generic interface for loading scenes from files or streams.
// Concrete implementations (e.g., gltfLoaderBackendImpl) handle format-specific details.
type loaderBackend interface {
	// Load performs a scene import from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *SceneData: the imported lights and casters
	//   - error: error if loading fails
	Load(path string) (*SceneData, error)

	// LoadReader imports a scene from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing scene data
	//
	// Returns:
	//   - *SceneData: the imported lights and casters
	//   - error: error if loading fails
	LoadReader(r io.Reader) (*SceneData, error)
}
