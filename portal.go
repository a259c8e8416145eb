// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import "cogentcore.org/core/math32"

// Portal is one opening of a linked pair. The opening is a rectangle
// anchored at its bottom mid edge, extending Height upward and Width/2 to
// each side, in the plane given by the pose. The outward normal is the
// orientation applied to the local +Z axis.
//
// Pose fields may be mutated directly; call [Portal.Update] afterward so
// the derived normal and the mask transform never diverge from the pose.
type Portal struct {

	// Name is the stable identifier of this opening.
	Name string

	// Width of the opening; must be positive.
	Width float32

	// Height of the opening; must be positive.
	Height float32

	// Pos is the world position of the bottom mid edge.
	Pos math32.Vector3

	// Quat is the orientation of the opening.
	Quat math32.Quat

	// Norm is the outward normal, derived from Quat by [Portal.Update].
	Norm math32.Vector3 `set:"-"`

	// Linked is the destination opening, or nil. Managed by [Portal.Link]
	// and [Portal.Unlink] so the reference is always mutual.
	Linked *Portal `set:"-"`

	// Mask is the stencil mask rectangle for this opening. Optional: nil
	// for headless or math-only use.
	Mask Mask

	// StencilRef is the stencil marker value this portal's mask writes,
	// set per frame by the renderer to disambiguate recursion depths.
	StencilRef uint32
}

// NewPortal returns a new portal with the given opening size and pose,
// with derived state updated.
func NewPortal(name string, width, height float32, pos math32.Vector3, quat math32.Quat) *Portal {
	pt := &Portal{Name: name, Width: width, Height: height, Pos: pos, Quat: quat}
	pt.Update()
	return pt
}

// Update recomputes the outward normal from the current pose and
// repositions the mask geometry. Call after any pose mutation.
func (pt *Portal) Update() {
	if pt.Quat.IsNil() {
		pt.Quat.SetIdentity()
	}
	pt.Norm = math32.Vec3(0, 0, 1).MulQuat(pt.Quat)
	if pt.Mask != nil {
		pt.Mask.SetTransform(pt.Pos, pt.Quat, pt.Width, pt.Height)
	}
}

// Link establishes the mutual link between this portal and other.
// Calling it on either side yields the same state, and calling it again
// is a no-op. If either side was previously linked elsewhere, the old
// partner's back-link is cleared first, so no portal is ever left with a
// dangling one-sided reference.
func (pt *Portal) Link(other *Portal) {
	if other == nil || other == pt {
		return
	}
	if pt.Linked == other && other.Linked == pt {
		return
	}
	if pt.Linked != nil && pt.Linked != other {
		pt.Linked.Linked = nil
	}
	if other.Linked != nil && other.Linked != pt {
		other.Linked.Linked = nil
	}
	pt.Linked = other
	other.Linked = pt
}

// Unlink breaks the mutual link, clearing both sides.
func (pt *Portal) Unlink() {
	if pt.Linked != nil {
		pt.Linked.Linked = nil
		pt.Linked = nil
	}
}

// Plane returns the half-space plane through the portal position with the
// current outward normal.
func (pt *Portal) Plane() math32.Plane {
	return math32.Plane{Norm: pt.Norm, Off: -pt.Norm.Dot(pt.Pos)}
}

// Center returns the center of the opening: position offset by half the
// height along the local up axis.
func (pt *Portal) Center() math32.Vector3 {
	up := math32.Vec3(0, 1, 0).MulQuat(pt.Quat)
	return pt.Pos.Add(up.MulScalar(pt.Height / 2))
}

// SignedDistance returns the signed distance from the given point to the
// portal plane, positive in front of the outward normal.
func (pt *Portal) SignedDistance(p math32.Vector3) float32 {
	return p.Sub(pt.Pos).Dot(pt.Norm)
}

// IsPointInFront reports whether the point is strictly in front of the
// portal plane. Portals are never rendered through from behind.
func (pt *Portal) IsPointInFront(p math32.Vector3) bool {
	return pt.SignedDistance(p) > 0
}

// IsPointInBounds reports whether the point, taken into the portal's
// local frame, falls within the opening rectangle expanded by margin on
// every side. This distinguishes a traveler actually passing through the
// opening from one merely near the supporting plane.
func (pt *Portal) IsPointInBounds(p math32.Vector3, margin float32) bool {
	iq := pt.Quat.Inverse()
	lp := p.Sub(pt.Pos).MulQuat(iq)
	if math32.Abs(lp.X) > pt.Width/2+margin {
		return false
	}
	return lp.Y >= -margin && lp.Y <= pt.Height+margin
}

// SetStencilRef sets the stencil marker value this portal's mask writes.
func (pt *Portal) SetStencilRef(v uint32) {
	pt.StencilRef = v
}

// DestinationCameraPose re-expresses a viewer pose relative to the
// destination portal, as if the viewer had walked straight through this
// opening. Returns the input pose unchanged when there is no link.
func (pt *Portal) DestinationCameraPose(pos math32.Vector3, quat math32.Quat) (math32.Vector3, math32.Quat) {
	if pt.Linked == nil {
		return pos, quat
	}
	return TransformPointThroughPortal(pos, pt, pt.Linked),
		TransformQuatThroughPortal(quat, pt, pt.Linked)
}

// Release breaks the link first, then releases the mask resources.
func (pt *Portal) Release() {
	pt.Unlink()
	if pt.Mask != nil {
		pt.Mask.Release()
		pt.Mask = nil
	}
}
