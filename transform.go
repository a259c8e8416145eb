// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import "cogentcore.org/core/math32"

// yFlip is the 180 degree turn about the vertical axis picked up when
// stepping through an opening: facing reverses.
func yFlip() math32.Quat {
	return math32.NewQuatAxisAngle(math32.Vec3(0, 1, 0), math32.Pi)
}

// TransformPointThroughPortal maps a world-space point from the frame of
// the source portal to the frame of the destination portal: into the
// source's local frame, turned 180 degrees about the local vertical axis,
// then out through the destination's pose. Swapping source and
// destination inverts the mapping.
func TransformPointThroughPortal(p math32.Vector3, src, dst *Portal) math32.Vector3 {
	iq := src.Quat.Inverse()
	rel := p.Sub(src.Pos).MulQuat(iq)
	rel.X = -rel.X
	rel.Z = -rel.Z
	return rel.MulQuat(dst.Quat).Add(dst.Pos)
}

// TransformDirectionThroughPortal maps a world-space direction through
// the portal pair: the same mapping as points, without the translation.
func TransformDirectionThroughPortal(d math32.Vector3, src, dst *Portal) math32.Vector3 {
	iq := src.Quat.Inverse()
	rel := d.MulQuat(iq)
	rel.X = -rel.X
	rel.Z = -rel.Z
	return rel.MulQuat(dst.Quat)
}

// TransformQuatThroughPortal maps a world-space orientation through the
// portal pair: the destination orientation, composed with the vertical
// flip, the inverse source orientation, and the input orientation.
func TransformQuatThroughPortal(q math32.Quat, src, dst *Portal) math32.Quat {
	iq := src.Quat.Inverse()
	r := dst.Quat
	r.SetMul(yFlip())
	r.SetMul(iq)
	r.SetMul(q)
	return r
}

// ObliqueProjection returns the camera's projection matrix modified so
// its near clipping plane coincides with the given plane, expressed in
// camera view space with the camera on its negative side (Lengyel's
// method). Everything on the camera's side of the plane is clipped, so
// geometry between a secondary camera and its portal opening never bleeds
// in front of the window. When the plane equals the camera's natural near
// plane, the result equals the unmodified projection.
func ObliqueProjection(cm *Camera, clip math32.Plane) math32.Matrix4 {
	m := cm.ProjectionMatrix
	cx, cy, cz, cw := clip.Norm.X, clip.Norm.Y, clip.Norm.Z, clip.Off
	// clip-space corner opposite the plane, taken back through the
	// projection; column-major layout: m[8], m[9] are the x/y skews,
	// m[10], m[14] the depth terms.
	qx := (sgn(cx) + m[8]) / m[0]
	qy := (sgn(cy) + m[9]) / m[5]
	qz := float32(-1)
	qw := (1 + m[10]) / m[14]
	s := 2 / (cx*qx + cy*qy + cz*qz + cw*qw)
	m[2] = cx * s
	m[6] = cy * s
	m[10] = cz*s + 1
	m[14] = cw * s
	return m
}

func sgn(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// CameraSpacePlane expresses the world-space plane given by a normal and
// a coplanar point in the camera's view space, as [ObliqueProjection]
// consumes it.
func CameraSpacePlane(cm *Camera, normal, point math32.Vector3) math32.Plane {
	iq := cm.Quat.Inverse()
	n := normal.MulQuat(iq)
	p := point.Sub(cm.Pos).MulQuat(iq)
	return math32.Plane{Norm: n, Off: -n.Dot(p)}
}

// CrossState describes how an object's bounding sphere relates to a
// portal plane.
type CrossState struct {

	// Crossing is true when the sphere intersects the plane and the
	// object needs dual clipped rendering.
	Crossing bool

	// SignedDistance is the distance from the center to the plane,
	// positive on the normal side.
	SignedDistance float32

	// InFront is the extent of the sphere on the normal side of the
	// plane, zero when fully behind.
	InFront float32

	// Behind is the extent of the sphere behind the plane, zero when
	// fully in front.
	Behind float32
}

// PlaneCrossing returns the [CrossState] of a bounding sphere with the
// given center and radius against the plane.
func PlaneCrossing(pos math32.Vector3, radius float32, plane math32.Plane) CrossState {
	d := plane.Norm.Dot(pos) + plane.Off
	return CrossState{
		Crossing:       math32.Abs(d) < radius,
		SignedDistance: d,
		InFront:        math32.Max(0, d+radius),
		Behind:         math32.Max(0, -d+radius),
	}
}

// PortalCorners returns the four world-space corners of a portal
// rectangle with the given pose and opening size, counterclockwise from
// bottom left as seen from the front.
func PortalCorners(pos math32.Vector3, quat math32.Quat, width, height float32) [4]math32.Vector3 {
	hw := width / 2
	local := [4]math32.Vector3{
		math32.Vec3(-hw, 0, 0),
		math32.Vec3(hw, 0, 0),
		math32.Vec3(hw, height, 0),
		math32.Vec3(-hw, height, 0),
	}
	var cs [4]math32.Vector3
	for i, lc := range local {
		cs[i] = lc.MulQuat(quat).Add(pos)
	}
	return cs
}

// ScreenBounds projects the given world points through the camera and
// returns their bounding box in pixel coordinates, clamped to the
// screen. Returns false when every point projects behind the camera, in
// which case there are no usable bounds. This feeds an optional scissor
// optimization; skipping it never affects correctness.
func ScreenBounds(pts []math32.Vector3, cm *Camera, width, height float32) (math32.Box2, bool) {
	var vp math32.Matrix4
	vp.MulMatrices(&cm.ProjectionMatrix, &cm.ViewMatrix)
	bb := math32.B2Empty()
	any := false
	for _, p := range pts {
		v := math32.Vec4(p.X, p.Y, p.Z, 1).MulMatrix4(&vp)
		if v.W <= 0 {
			continue
		}
		any = true
		x := (v.X/v.W + 1) / 2 * width
		y := (1 - v.Y/v.W) / 2 * height
		bb.ExpandByPoint(math32.Vec2(x, y))
	}
	if !any {
		return math32.Box2{}, false
	}
	return bb.Intersect(math32.B2(0, 0, width, height)), true
}
