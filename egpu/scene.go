// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package egpu

import (
	"image/color"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sweriko/euclid"
)

// Scene is a flat list of solids drawn together in one pass. It
// implements [euclid.Scene].
type Scene struct {
	sys    *System
	Solids []*Solid
}

// NewScene returns a new empty scene on the given system.
func NewScene(sy *System) *Scene {
	return &Scene{sys: sy}
}

// NewSolid creates a solid on the given mesh and appearance and adds it
// to the scene.
func (sc *Scene) NewSolid(ms *Mesh, ap *Appearance) *Solid {
	sl := NewSolid(sc.sys, ms, ap)
	sc.Solids = append(sc.Solids, sl)
	return sl
}

// Draw renders every visible solid in one immediately submitted pass
// with the given camera and parameters.
func (sc *Scene) Draw(cm *euclid.Camera, dp euclid.DrawParams) {
	pass := sc.sys.beginPass(cm, dp)
	if pass == nil {
		return
	}
	for _, sl := range sc.Solids {
		sl.draw(pass)
	}
	sc.sys.endPass()
}

// Release releases all solids. Meshes and appearances are shared and
// stay with their creators.
func (sc *Scene) Release() {
	for _, sl := range sc.Solids {
		sl.Release()
	}
	sc.Solids = nil
}

// Solid is one drawable: a mesh, an appearance, and a world pose. It
// implements [euclid.Object], so a crossing material can manage its
// appearance and visibility.
type Solid struct {

	// Mesh is the shared geometry.
	Mesh *Mesh

	// Appear is the current surface appearance.
	Appear *Appearance

	// Pos is the world position.
	Pos math32.Vector3

	// Quat is the world orientation.
	Quat math32.Quat

	// Scale is the per-axis scale.
	Scale math32.Vector3

	// Visible gates drawing.
	Visible bool

	sys    *System
	buffer *wgpu.Buffer
	group  *wgpu.BindGroup
}

// NewSolid returns a new solid on the given mesh and appearance, at the
// origin with identity orientation and unit scale.
func NewSolid(sy *System, ms *Mesh, ap *Appearance) *Solid {
	sl := &Solid{Mesh: ms, Appear: ap, Scale: math32.Vec3(1, 1, 1), Visible: true, sys: sy}
	sl.Quat.SetIdentity()

	buf, err := sy.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "model",
		Size:  modelUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if errors.Log(err) != nil {
		return nil
	}
	sl.buffer = buf
	grp, err := sy.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "model",
		Layout: sy.modelLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Size:    wgpu.WholeSize,
		}},
	})
	if errors.Log(err) != nil {
		buf.Release()
		return nil
	}
	sl.group = grp
	sl.writeModel()
	return sl
}

// Pose returns the current world position and orientation.
func (sl *Solid) Pose() (math32.Vector3, math32.Quat) {
	return sl.Pos, sl.Quat
}

// SetPose sets the world position and orientation and updates the model
// uniform.
func (sl *Solid) SetPose(pos math32.Vector3, quat math32.Quat) {
	sl.Pos = pos
	sl.Quat = quat
	sl.writeModel()
}

// SetScale sets the per-axis scale and updates the model uniform.
func (sl *Solid) SetScale(scale math32.Vector3) {
	sl.Scale = scale
	sl.writeModel()
}

// SetAppearance swaps the surface appearance. The appearance must come
// from this backend.
func (sl *Solid) SetAppearance(ap euclid.Appearance) {
	sl.Appear = ap.(*Appearance)
}

// SetVisible shows or hides the solid.
func (sl *Solid) SetVisible(vis bool) {
	sl.Visible = vis
}

// Release frees the model uniform. The mesh and appearance are shared
// and stay with their creators.
func (sl *Solid) Release() {
	if sl.group != nil {
		sl.group.Release()
		sl.group = nil
	}
	if sl.buffer != nil {
		sl.buffer.Release()
		sl.buffer = nil
	}
}

func (sl *Solid) writeModel() {
	if sl.buffer == nil {
		return
	}
	var m math32.Matrix4
	m.SetTransform(sl.Pos, sl.Quat, sl.Scale)
	sl.sys.Queue.WriteBuffer(sl.buffer, 0, wgpu.ToBytes(m[:]))
}

func (sl *Solid) draw(pass *wgpu.RenderPassEncoder) {
	if !sl.Visible || sl.Appear == nil || sl.Mesh == nil {
		return
	}
	pass.SetBindGroup(1, sl.Appear.group, nil)
	pass.SetBindGroup(2, sl.group, nil)
	sl.Mesh.draw(pass)
}

// Mask is the stencil mask rectangle for one portal opening: the unit
// rectangle mesh scaled to the opening size. It implements [euclid.Mask].
// Masks are drawn with color and depth writes off, so only the stencil
// region is stamped.
type Mask struct {
	sl   *Solid
	mesh *Mesh
	ap   *Appearance
}

// NewMask returns a new portal mask on the given system.
func NewMask(sy *System) *Mask {
	mesh := NewRectMesh(sy)
	ap := NewAppearance(sy, color.Black)
	return &Mask{sl: NewSolid(sy, mesh, ap), mesh: mesh, ap: ap}
}

// SetTransform positions the unit rectangle at the given pose, scaled to
// the opening size.
func (mk *Mask) SetTransform(pos math32.Vector3, quat math32.Quat, width, height float32) {
	mk.sl.Pos = pos
	mk.sl.Quat = quat
	mk.sl.Scale = math32.Vec3(width, height, 1)
	mk.sl.writeModel()
}

// Draw renders the mask rectangle alone in one pass.
func (mk *Mask) Draw(cm *euclid.Camera, dp euclid.DrawParams) {
	pass := mk.sl.sys.beginPass(cm, dp)
	if pass == nil {
		return
	}
	mk.sl.draw(pass)
	mk.sl.sys.endPass()
}

// Release frees the mask geometry and shading state.
func (mk *Mask) Release() {
	mk.sl.Release()
	mk.mesh.Release()
	mk.ap.Release()
}
