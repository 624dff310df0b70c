package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraController owns a camera's positional state. The camera reads position and
// target from it on Update and computes its matrices from them.
//
// The single implementation orbits a pivot using spherical coordinates (radius,
// azimuth, elevation) and pans the pivot along the camera's local axes.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget moves the pivot and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Orbit rotates the camera around the target. Elevation is clamped to the
	// controller's bounds.
	//
	// Parameters:
	//   - steps: horizontal steps, positive turns right
	//   - tilt: vertical steps, positive tilts up
	Orbit(steps, tilt float32)

	// Zoom changes the orbit radius, clamped to the controller's bounds.
	// Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Pan translates both position and target along the camera's local right and up
	// axes, preserving the orbit.
	//
	// Parameters:
	//   - right: distance along the right axis, scaled by the pan speed
	//   - up: distance along the up axis, scaled by the pan speed
	Pan(right, up float32)

	Radius() float32
	Azimuth() float32
	Elevation() float32
}
