// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import (
	"log/slog"

	"cogentcore.org/core/math32"
)

// Renderer drives the stencil-masked multi-pass portal draw sequence for
// one frame. It owns the stencil and depth buffers for the duration of a
// [Renderer.Render] call: every pass depends on the buffer state left by
// the previous one, so passes execute strictly in program order.
type Renderer struct {

	// Drawer is the frame-level rendering target.
	Drawer Drawer

	// MaxRecursion bounds how many nested portal-in-portal levels are
	// rendered. 0 disables portal rendering entirely. Cycles between
	// linked portals terminate on this bound alone, not on any traversal
	// history.
	MaxRecursion int `default:"2"`

	// Debug enables per-pass debug logging.
	Debug bool
}

// NewRenderer returns a new renderer on the given drawer with the given
// recursion bound.
func NewRenderer(dr Drawer, maxRecursion int) *Renderer {
	return &Renderer{Drawer: dr, MaxRecursion: maxRecursion}
}

// Render draws one frame: every visible linked portal of the current
// world, recursively up to MaxRecursion, then the current world itself.
// The drawer's automatic-clear flag is suspended for the duration and
// restored on every path out. A portal whose destination world cannot be
// located is skipped for this frame only.
func (rd *Renderer) Render(cm *Camera, current *World, worlds *Worlds) {
	ac := rd.Drawer.AutoClear()
	rd.Drawer.SetAutoClear(false)
	defer rd.Drawer.SetAutoClear(ac)

	rd.Drawer.Clear(true, true, true)
	rd.renderPortals(cm, current, worlds, 0)
	// regions stamped by a portal mask keep their portal image;
	// everything else is the current world.
	current.Scene.Draw(cm, DrawParams{Stencil: StencilNotEqual, Ref: 1, ColorWrite: true, DepthWrite: true})
}

// RenderSimple renders the common single-pair case: one portal between a
// current scene and a destination scene. It is the depth-1 slice of
// [Renderer.Render] with no destination-world search.
func (rd *Renderer) RenderSimple(cm *Camera, current, dest Scene, pt *Portal) {
	ac := rd.Drawer.AutoClear()
	rd.Drawer.SetAutoClear(false)
	defer rd.Drawer.SetAutoClear(ac)

	rd.Drawer.Clear(true, true, true)
	if rd.MaxRecursion > 0 && pt.Linked != nil && pt.IsPointInFront(cm.Pos) {
		pt.SetStencilRef(1)
		if pt.Mask != nil {
			pt.Mask.Draw(cm, DrawParams{Stencil: StencilIncrement, Ref: 0})
		}
		sec := rd.secondaryCamera(cm, pt)
		rd.Drawer.Clear(false, true, false)
		dest.Draw(sec, DrawParams{Stencil: StencilEqual, Ref: 1, ColorWrite: true, DepthWrite: true})
	}
	current.Draw(cm, DrawParams{Stencil: StencilNotEqual, Ref: 1, ColorWrite: true, DepthWrite: true})
}

// renderPortals runs the portal passes for one world at one recursion
// depth.
func (rd *Renderer) renderPortals(cm *Camera, wd *World, worlds *Worlds, depth int) {
	if depth >= rd.MaxRecursion {
		return
	}
	for _, pt := range wd.Portals {
		if pt.Linked == nil || !pt.IsPointInFront(cm.Pos) {
			continue
		}
		dest := worlds.WorldOwning(pt.Linked)
		if dest == nil {
			if rd.Debug {
				slog.Debug("euclid: portal destination world not found", "portal", pt.Name)
			}
			continue
		}
		rd.renderThrough(cm, pt, dest, worlds, depth)
	}
}

// renderThrough renders one portal at one recursion depth: stencil mask,
// secondary camera, recursion into the destination world, then the
// destination pass masked to this depth's marker value.
func (rd *Renderer) renderThrough(cm *Camera, pt *Portal, dest *World, worlds *Worlds, depth int) {
	ref := uint32(depth + 1)
	pt.SetStencilRef(ref)
	if rd.Debug {
		slog.Debug("euclid: portal pass", "portal", pt.Name, "depth", depth, "ref", ref)
	}
	if pt.Mask != nil {
		// color and depth writes stay off: the mask only stamps the
		// stencil region, incrementing depth to depth+1 so nested masks
		// cannot escape their parent region.
		pt.Mask.Draw(cm, DrawParams{Stencil: StencilIncrement, Ref: uint32(depth)})
	}
	sec := rd.secondaryCamera(cm, pt)
	if depth+1 < rd.MaxRecursion {
		rd.renderPortals(sec, dest, worlds, depth+1)
	}
	// depth only: destination geometry computes its own occlusion from
	// scratch, while the stencil region and painted portal pixels remain.
	rd.Drawer.Clear(false, true, false)
	dest.Scene.Draw(sec, DrawParams{Stencil: StencilEqual, Ref: ref, ColorWrite: true, DepthWrite: true})
}

// secondaryCamera places the through-portal camera for the given portal:
// the viewer pose mapped to the destination side, with an oblique
// projection clipping everything between the camera and the destination
// opening.
func (rd *Renderer) secondaryCamera(cm *Camera, pt *Portal) *Camera {
	sec := cm.Clone()
	pos, quat := pt.DestinationCameraPose(cm.Pos, cm.Quat)
	sec.SetPose(pos, quat)
	proj := ObliqueProjection(sec, rd.destClipPlane(pt.Linked, sec))
	sec.SetProjection(&proj)
	return sec
}

// destClipPlane returns the destination portal's plane in the secondary
// camera's view space, oriented so the camera sits on its negative side:
// the oblique projection then clips the camera's side of the opening.
func (rd *Renderer) destClipPlane(dst *Portal, sec *Camera) math32.Plane {
	n := dst.Norm
	if dst.SignedDistance(sec.Pos) > 0 {
		n = n.Negate()
	}
	return CameraSpacePlane(sec, n, dst.Pos)
}

// Release drops the drawer reference. The drawer itself is owned by the
// caller.
func (rd *Renderer) Release() {
	rd.Drawer = nil
}
