// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import "cogentcore.org/core/math32"

// StencilMode specifies how one draw call interacts with the stencil
// buffer.
type StencilMode int32

const (
	// StencilNone ignores the stencil buffer entirely.
	StencilNone StencilMode = iota

	// StencilWrite passes unconditionally and replaces the stencil value
	// with the reference value wherever fragments land.
	StencilWrite

	// StencilIncrement passes where the stencil value equals the
	// reference value, and increments it there. Portal masks use this to
	// stamp depth+1 only inside the region already stamped with depth, so
	// nested masks stay inside their parent region.
	StencilIncrement

	// StencilEqual passes only where the stencil value equals the
	// reference.
	StencilEqual

	// StencilNotEqual passes only where the stencil value differs from
	// the reference.
	StencilNotEqual
)

// DrawParams are the parameters for one draw pass over a scene. Stencil
// state is an explicit per-draw argument rather than mutable fields on a
// shared material, so appearances stay immutable across passes.
type DrawParams struct {
	// Stencil is the stencil test / write mode for this draw.
	Stencil StencilMode

	// Ref is the stencil reference value compared or written per Stencil.
	Ref uint32

	// ColorWrite enables writing to the color buffer.
	ColorWrite bool

	// DepthWrite enables writing to the depth buffer.
	DepthWrite bool
}

// StandardDraw returns plain draw parameters: color and depth writes on,
// stencil ignored.
func StandardDraw() DrawParams {
	return DrawParams{Stencil: StencilNone, ColorWrite: true, DepthWrite: true}
}

// Scene is a drawable collection belonging to one [World]. Draw submits
// every contained drawable with the given camera and per-draw parameters.
type Scene interface {
	Draw(cm *Camera, dp DrawParams)
}

// Drawer is the frame-level rendering target the [Renderer] drives.
type Drawer interface {
	// Clear immediately clears the selected buffers.
	Clear(color, depth, stencil bool)

	// SetAutoClear sets whether buffers are cleared automatically when a
	// frame starts. The renderer suspends this during its multi-pass
	// sequence and restores it afterward.
	SetAutoClear(on bool)

	// AutoClear reports the current automatic-clear setting.
	AutoClear() bool
}

// Mask is the stencil mask rectangle owned by one [Portal].
type Mask interface {
	// SetTransform positions the unit rectangle at the given pose with
	// the given opening size.
	SetTransform(pos math32.Vector3, quat math32.Quat, width, height float32)

	// Draw renders the rectangle only, with the given parameters.
	Draw(cm *Camera, dp DrawParams)

	// Release frees held geometry and shading state.
	Release()
}

// Appearance is an opaque surface appearance owned by the backend.
type Appearance interface {
	// Release frees any GPU-side state held by this appearance.
	Release()
}

// ClipShaper produces clip-plane variants of a base appearance: fragments
// on the negative side of the plane are discarded when drawing.
type ClipShaper interface {
	Clipped(base Appearance, normal, point math32.Vector3) Appearance
}

// Object is the contract for a drawable whose appearance and visibility a
// [CrossingMaterial] manages while the object straddles a portal plane.
type Object interface {
	// Pose returns the object's current world position and orientation.
	Pose() (math32.Vector3, math32.Quat)

	// SetPose sets the object's world position and orientation.
	SetPose(pos math32.Vector3, quat math32.Quat)

	// SetAppearance swaps the surface appearance used to draw the object.
	SetAppearance(ap Appearance)

	// SetVisible shows or hides the object.
	SetVisible(vis bool)
}
