// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import (
	"sync"

	"cogentcore.org/core/math32"
)

// CrossingMaterial manages the appearance of one object whose bounding
// sphere may straddle a portal plane. While crossing, the primary object
// draws with a variant clipped to the source side, and a paired instance
// already present in the destination world becomes visible with the
// destination-side variant; otherwise the primary draws its natural
// appearance and the pair stays hidden.
type CrossingMaterial struct {

	// Object is the primary instance, living in the source world.
	Object Object

	// OtherSide is the paired instance in the destination world, hidden
	// while not crossing. May be nil when cross-world cloning is not
	// needed.
	OtherSide Object

	// Base is the natural, unclipped appearance of the object.
	Base Appearance

	// Shaper builds the clipped appearance variants.
	Shaper ClipShaper

	// Radius is the bounding sphere radius of the object.
	Radius float32

	// PlaneTol is the tolerance below which plane parameter changes do
	// not trigger a variant rebuild, so sub-epsilon positional noise
	// cannot churn GPU resources or flicker.
	PlaneTol float32 `default:"1e-4"`

	crossing   bool
	built      bool
	planeNorm  math32.Vector3
	planePoint math32.Vector3
	sourceClip Appearance
	destClip   Appearance

	// rebuild disposes and replaces shared state, which is not safe from
	// multiple goroutines without this lock.
	mu sync.Mutex
}

// NewCrossingMaterial returns a new crossing material for the given
// primary object and its destination-world pair. The pair starts hidden.
func NewCrossingMaterial(obj, other Object, base Appearance, shaper ClipShaper, radius float32) *CrossingMaterial {
	cr := &CrossingMaterial{Object: obj, OtherSide: other, Base: base, Shaper: shaper, Radius: radius, PlaneTol: 1.0e-4}
	if other != nil {
		other.SetVisible(false)
	}
	return cr
}

// UpdateCrossing recomputes the crossing state against the given portal
// plane and reports whether the object currently straddles it. The
// normal faces the side kept by the source world. Clipped variants are
// (re)built only on a first crossing or when the plane parameters moved
// beyond PlaneTol since they were built; stale variants are released.
func (cr *CrossingMaterial) UpdateCrossing(planeNormal, planePoint math32.Vector3) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	pos, _ := cr.Object.Pose()
	d := pos.Sub(planePoint).Dot(planeNormal)
	crossing := math32.Abs(d) < cr.Radius

	switch {
	case crossing:
		rebuilt := false
		if !cr.built || cr.planeChanged(planeNormal, planePoint) {
			cr.rebuild(planeNormal, planePoint)
			rebuilt = true
		}
		if !cr.crossing || rebuilt {
			cr.Object.SetAppearance(cr.sourceClip)
			if cr.OtherSide != nil {
				cr.OtherSide.SetAppearance(cr.destClip)
				cr.OtherSide.SetVisible(true)
			}
		}
	case cr.crossing:
		cr.Object.SetAppearance(cr.Base)
		if cr.OtherSide != nil {
			cr.OtherSide.SetVisible(false)
		}
	}
	cr.crossing = crossing
	return crossing
}

// SyncOtherSide keeps the destination-world instance aligned by mapping
// the primary instance's current pose through the portal pair. Call once
// per frame while crossing.
func (cr *CrossingMaterial) SyncOtherSide(src, dst *Portal) {
	if cr.OtherSide == nil {
		return
	}
	pos, quat := cr.Object.Pose()
	cr.OtherSide.SetPose(
		TransformPointThroughPortal(pos, src, dst),
		TransformQuatThroughPortal(quat, src, dst))
}

// Crossing reports whether the object straddled the plane at the last
// [CrossingMaterial.UpdateCrossing].
func (cr *CrossingMaterial) Crossing() bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.crossing
}

// Release restores the base appearance, hides the other-side instance,
// and releases both clipped variants. The base appearance itself belongs
// to the caller.
func (cr *CrossingMaterial) Release() {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if cr.crossing {
		cr.Object.SetAppearance(cr.Base)
		if cr.OtherSide != nil {
			cr.OtherSide.SetVisible(false)
		}
		cr.crossing = false
	}
	cr.releaseVariants()
	cr.built = false
}

func (cr *CrossingMaterial) planeChanged(n, p math32.Vector3) bool {
	return n.Sub(cr.planeNorm).Length() > cr.PlaneTol ||
		p.Sub(cr.planePoint).Length() > cr.PlaneTol
}

// rebuild replaces both clipped variants for the given plane, releasing
// the previous ones so GPU resources do not accumulate.
func (cr *CrossingMaterial) rebuild(n, p math32.Vector3) {
	cr.releaseVariants()
	cr.sourceClip = cr.Shaper.Clipped(cr.Base, n, p)
	cr.destClip = cr.Shaper.Clipped(cr.Base, n.Negate(), p)
	cr.planeNorm = n
	cr.planePoint = p
	cr.built = true
}

func (cr *CrossingMaterial) releaseVariants() {
	if cr.sourceClip != nil {
		cr.sourceClip.Release()
		cr.sourceClip = nil
	}
	if cr.destClip != nil {
		cr.destClip.Release()
		cr.destClip = nil
	}
}
