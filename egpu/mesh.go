// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package egpu

import (
	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// vertexStride is position (3) plus normal (3) float32s, interleaved.
const vertexStride = 6 * 4

// vertexLayout returns the interleaved position+normal vertex layout the
// solid shader consumes.
func vertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: vertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 3 * 4, ShaderLocation: 1},
		},
	}
}

// Mesh is indexed triangle geometry uploaded to the GPU. Meshes are
// shared: multiple solids may draw the same mesh, and releasing is the
// creator's job.
type Mesh struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
}

// NewMesh uploads the given interleaved position+normal vertex data and
// triangle indices.
func NewMesh(sy *System, verts []float32, index []uint32) *Mesh {
	ms := &Mesh{indexCount: uint32(len(index))}
	vb, err := sy.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "mesh vertex",
		Size:  uint64(len(verts) * 4),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if errors.Log(err) != nil {
		return nil
	}
	sy.Queue.WriteBuffer(vb, 0, wgpu.ToBytes(verts))
	ms.vertexBuffer = vb

	ib, err := sy.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "mesh index",
		Size:  uint64(len(index) * 4),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if errors.Log(err) != nil {
		vb.Release()
		return nil
	}
	sy.Queue.WriteBuffer(ib, 0, wgpu.ToBytes(index))
	ms.indexBuffer = ib
	return ms
}

// NewRectMesh returns a unit rectangle in the XY plane, anchored at the
// bottom mid edge and facing +Z: the portal opening shape at unit scale.
func NewRectMesh(sy *System) *Mesh {
	verts, index := RectVertices()
	return NewMesh(sy, verts, index)
}

// NewBoxMesh returns an axis-aligned box with the given size, centered
// at the origin.
func NewBoxMesh(sy *System, size math32.Vector3) *Mesh {
	verts, index := BoxVertices(size)
	return NewMesh(sy, verts, index)
}

// Release frees the GPU buffers.
func (ms *Mesh) Release() {
	if ms.vertexBuffer != nil {
		ms.vertexBuffer.Release()
		ms.vertexBuffer = nil
	}
	if ms.indexBuffer != nil {
		ms.indexBuffer.Release()
		ms.indexBuffer = nil
	}
	ms.indexCount = 0
}

// draw encodes this mesh's buffers and indexed draw on the given pass.
func (ms *Mesh) draw(pass *wgpu.RenderPassEncoder) {
	if ms.vertexBuffer == nil {
		return
	}
	pass.SetVertexBuffer(0, ms.vertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(ms.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(ms.indexCount, 1, 0, 0, 0)
}

// RectVertices returns the vertex and index data for the unit
// bottom-anchored rectangle: width 1 centered on X, height 1 up from the
// origin, normal +Z.
func RectVertices() ([]float32, []uint32) {
	verts := []float32{
		// x, y, z, nx, ny, nz
		-0.5, 0, 0, 0, 0, 1,
		0.5, 0, 0, 0, 0, 1,
		0.5, 1, 0, 0, 0, 1,
		-0.5, 1, 0, 0, 0, 1,
	}
	index := []uint32{0, 1, 2, 0, 2, 3}
	return verts, index
}

// BoxVertices returns the vertex and index data for an origin-centered
// box of the given size, four vertices per face so normals stay flat.
func BoxVertices(size math32.Vector3) ([]float32, []uint32) {
	hx, hy, hz := size.X/2, size.Y/2, size.Z/2
	faces := []struct {
		normal  math32.Vector3
		corners [4]math32.Vector3
	}{
		{math32.Vec3(0, 0, 1), [4]math32.Vector3{
			{X: -hx, Y: -hy, Z: hz}, {X: hx, Y: -hy, Z: hz}, {X: hx, Y: hy, Z: hz}, {X: -hx, Y: hy, Z: hz}}},
		{math32.Vec3(0, 0, -1), [4]math32.Vector3{
			{X: hx, Y: -hy, Z: -hz}, {X: -hx, Y: -hy, Z: -hz}, {X: -hx, Y: hy, Z: -hz}, {X: hx, Y: hy, Z: -hz}}},
		{math32.Vec3(1, 0, 0), [4]math32.Vector3{
			{X: hx, Y: -hy, Z: hz}, {X: hx, Y: -hy, Z: -hz}, {X: hx, Y: hy, Z: -hz}, {X: hx, Y: hy, Z: hz}}},
		{math32.Vec3(-1, 0, 0), [4]math32.Vector3{
			{X: -hx, Y: -hy, Z: -hz}, {X: -hx, Y: -hy, Z: hz}, {X: -hx, Y: hy, Z: hz}, {X: -hx, Y: hy, Z: -hz}}},
		{math32.Vec3(0, 1, 0), [4]math32.Vector3{
			{X: -hx, Y: hy, Z: hz}, {X: hx, Y: hy, Z: hz}, {X: hx, Y: hy, Z: -hz}, {X: -hx, Y: hy, Z: -hz}}},
		{math32.Vec3(0, -1, 0), [4]math32.Vector3{
			{X: -hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: -hz}, {X: hx, Y: -hy, Z: hz}, {X: -hx, Y: -hy, Z: hz}}},
	}
	verts := make([]float32, 0, 6*4*6)
	index := make([]uint32, 0, 6*6)
	for fi, fc := range faces {
		for _, c := range fc.corners {
			verts = append(verts, c.X, c.Y, c.Z, fc.normal.X, fc.normal.Y, fc.normal.Z)
		}
		base := uint32(fi * 4)
		index = append(index, base, base+1, base+2, base, base+2, base+3)
	}
	return verts, index
}
