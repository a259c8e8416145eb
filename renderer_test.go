// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clearRec struct {
	color, depth, stencil bool
}

type fakeDrawer struct {
	autoClear bool
	clears    []clearRec
	setCalls  []bool
}

func (fd *fakeDrawer) Clear(color, depth, stencil bool) {
	fd.clears = append(fd.clears, clearRec{color, depth, stencil})
}

func (fd *fakeDrawer) SetAutoClear(on bool) {
	fd.setCalls = append(fd.setCalls, on)
	fd.autoClear = on
}

func (fd *fakeDrawer) AutoClear() bool {
	return fd.autoClear
}

type drawRec struct {
	scene string
	cm    *Camera
	dp    DrawParams
}

// fakeScene appends each draw to a log shared across scenes, preserving
// the cross-scene pass order.
type fakeScene struct {
	name string
	log  *[]drawRec
}

func (fs *fakeScene) Draw(cm *Camera, dp DrawParams) {
	*fs.log = append(*fs.log, drawRec{fs.name, cm, dp})
}

type fakeMask struct {
	transforms    int
	pos           math32.Vector3
	quat          math32.Quat
	width, height float32
	draws         []DrawParams
	released      bool
}

func (fm *fakeMask) SetTransform(pos math32.Vector3, quat math32.Quat, width, height float32) {
	fm.transforms++
	fm.pos, fm.quat, fm.width, fm.height = pos, quat, width, height
}

func (fm *fakeMask) Draw(cm *Camera, dp DrawParams) {
	fm.draws = append(fm.draws, dp)
}

func (fm *fakeMask) Release() {
	fm.released = true
}

// corridor builds an infinite-hall setup: portals a and b face each
// other in one world and are mutually linked, and the camera position is
// chosen so a stays in front of every secondary camera while b never
// does. Recursion through a therefore only terminates on the bound.
func corridor(log *[]drawRec) (*World, *Worlds, *Camera, *Portal) {
	a := NewPortal("a", 2, 3, math32.Vec3(0, 0, -5), identityQuat())
	b := NewPortal("b", 2, 3, math32.Vec3(0, 0, 5), yRot(math32.Pi))
	a.Mask = &fakeMask{}
	b.Mask = &fakeMask{}
	a.Link(b)

	hall := NewWorld("hall", &fakeScene{name: "hall", log: log})
	hall.AddPortal(a)
	hall.AddPortal(b)
	worlds := &Worlds{}
	worlds.Add(hall)

	cm := NewCamera(1.5)
	cm.SetPose(math32.Vec3(0, 0, 6), identityQuat())
	return hall, worlds, cm, a
}

func TestRenderRecursionTerminates(t *testing.T) {
	var log []drawRec
	hall, worlds, cm, a := corridor(&log)
	fd := &fakeDrawer{autoClear: true}
	rd := NewRenderer(fd, 3)

	rd.Render(cm, hall, worlds)

	// one destination pass per depth, innermost first, then the current
	// world pass
	require.Len(t, log, 4)
	for i, ref := range []uint32{3, 2, 1} {
		assert.Equal(t, StencilEqual, log[i].dp.Stencil)
		assert.Equal(t, ref, log[i].dp.Ref)
		assert.True(t, log[i].dp.ColorWrite)
		assert.True(t, log[i].dp.DepthWrite)
	}
	assert.Equal(t, StencilNotEqual, log[3].dp.Stencil)
	assert.Equal(t, uint32(1), log[3].dp.Ref)

	// one mask stamp per depth, gated on the parent region's value
	mask := a.Mask.(*fakeMask)
	require.Len(t, mask.draws, 3)
	for i, ref := range []uint32{0, 1, 2} {
		assert.Equal(t, StencilIncrement, mask.draws[i].Stencil)
		assert.Equal(t, ref, mask.draws[i].Ref)
	}

	// a full clear up front, then a depth-only clear per destination pass
	require.Len(t, fd.clears, 4)
	assert.Equal(t, clearRec{true, true, true}, fd.clears[0])
	for _, cl := range fd.clears[1:] {
		assert.Equal(t, clearRec{false, true, false}, cl)
	}
}

func TestRenderSecondaryCamera(t *testing.T) {
	var log []drawRec
	hall, worlds, cm, _ := corridor(&log)
	rd := NewRenderer(&fakeDrawer{}, 1)

	rd.Render(cm, hall, worlds)

	require.Len(t, log, 2)
	sec := log[0].cm
	require.NotSame(t, cm, sec)
	assertVector3(t, math32.Vec3(0, 0, 16), sec.Pos, testTol)
	assertSameRotation(t, identityQuat(), sec.Quat, testTol)

	// the oblique projection puts the destination opening plane exactly
	// on the near plane and clips everything between camera and opening
	onPlane := math32.Vec3(0, 1, 5).Sub(sec.Pos).MulQuat(sec.Quat.Inverse())
	assert.InDelta(t, -1, float64(ndcZ(&sec.ProjectionMatrix, onPlane)), 1.0e-3)
	between := math32.Vec3(0, 0, 11).Sub(sec.Pos).MulQuat(sec.Quat.Inverse())
	assert.Less(t, ndcZ(&sec.ProjectionMatrix, between), float32(-1))

	// the primary camera is untouched
	assertVector3(t, math32.Vec3(0, 0, 6), cm.Pos, testTol)
}

func TestRenderMaxRecursionZero(t *testing.T) {
	var log []drawRec
	hall, worlds, cm, a := corridor(&log)
	rd := NewRenderer(&fakeDrawer{}, 0)

	rd.Render(cm, hall, worlds)

	require.Len(t, log, 1)
	assert.Equal(t, StencilNotEqual, log[0].dp.Stencil)
	assert.Empty(t, a.Mask.(*fakeMask).draws)
}

func TestRenderAutoClearRestored(t *testing.T) {
	var log []drawRec
	hall, worlds, cm, _ := corridor(&log)
	fd := &fakeDrawer{autoClear: true}
	rd := NewRenderer(fd, 2)

	rd.Render(cm, hall, worlds)

	assert.True(t, fd.AutoClear())
	require.GreaterOrEqual(t, len(fd.setCalls), 2)
	assert.False(t, fd.setCalls[0])
	assert.True(t, fd.setCalls[len(fd.setCalls)-1])
}

func TestRenderSkipsPortalBehindCamera(t *testing.T) {
	var log []drawRec
	hall, worlds, _, _ := corridor(&log)
	cm := NewCamera(1.5)
	cm.SetPose(math32.Vec3(0, 0, -6), identityQuat())
	rd := NewRenderer(&fakeDrawer{}, 2)

	rd.Render(cm, hall, worlds)

	require.Len(t, log, 1)
	assert.Equal(t, StencilNotEqual, log[0].dp.Stencil)
}

func TestRenderSkipsUnlinkedPortal(t *testing.T) {
	var log []drawRec
	hall, worlds, cm, a := corridor(&log)
	a.Unlink()
	rd := NewRenderer(&fakeDrawer{}, 2)

	rd.Render(cm, hall, worlds)

	require.Len(t, log, 1)
	assert.Equal(t, StencilNotEqual, log[0].dp.Stencil)
}

func TestRenderSkipsUnregisteredDestination(t *testing.T) {
	var log []drawRec
	a := NewPortal("a", 2, 3, math32.Vec3(0, 0, -5), identityQuat())
	b := NewPortal("b", 2, 3, math32.Vec3(0, 0, 5), yRot(math32.Pi))
	a.Link(b)

	hall := NewWorld("hall", &fakeScene{name: "hall", log: &log})
	hall.AddPortal(a)
	// b's world is never registered
	worlds := &Worlds{}
	worlds.Add(hall)

	cm := NewCamera(1.5)
	cm.SetPose(math32.Vec3(0, 0, 6), identityQuat())
	rd := NewRenderer(&fakeDrawer{}, 2)

	rd.Render(cm, hall, worlds)

	require.Len(t, log, 1)
	assert.Equal(t, StencilNotEqual, log[0].dp.Stencil)
}

func TestRenderTwoWorlds(t *testing.T) {
	var log []drawRec
	a := NewPortal("a", 2, 3, math32.Vec3(0, 0, 0), identityQuat())
	b := NewPortal("b", 2, 3, math32.Vec3(0, 0, 10), yRot(math32.Pi))
	a.Link(b)

	room1 := NewWorld("room1", &fakeScene{name: "room1", log: &log})
	room1.AddPortal(a)
	room2 := NewWorld("room2", &fakeScene{name: "room2", log: &log})
	room2.AddPortal(b)
	worlds := &Worlds{}
	worlds.Add(room1)
	worlds.Add(room2)

	cm := NewCamera(1.5)
	cm.SetPose(math32.Vec3(0, 1, 1), identityQuat())
	rd := NewRenderer(&fakeDrawer{}, 2)

	rd.Render(cm, room1, worlds)

	// the mapped camera lands behind b, so b is culled at depth 1 and
	// room2 draws exactly once
	require.Len(t, log, 2)
	assert.Equal(t, "room2", log[0].scene)
	assert.Equal(t, StencilEqual, log[0].dp.Stencil)
	assert.Equal(t, uint32(1), log[0].dp.Ref)
	assert.Equal(t, "room1", log[1].scene)
	assert.Equal(t, StencilNotEqual, log[1].dp.Stencil)
}

func TestRenderSimple(t *testing.T) {
	var log []drawRec
	current := &fakeScene{name: "current", log: &log}
	dest := &fakeScene{name: "dest", log: &log}

	a := NewPortal("a", 2, 3, math32.Vec3(0, 0, 0), identityQuat())
	b := NewPortal("b", 2, 3, math32.Vec3(0, 0, 10), yRot(math32.Pi))
	a.Mask = &fakeMask{}
	a.Link(b)

	cm := NewCamera(1.5)
	cm.SetPose(math32.Vec3(0, 1, 1), identityQuat())
	fd := &fakeDrawer{autoClear: true}
	rd := NewRenderer(fd, 2)

	rd.RenderSimple(cm, current, dest, a)

	require.Len(t, log, 2)
	assert.Equal(t, "dest", log[0].scene)
	assert.Equal(t, StencilEqual, log[0].dp.Stencil)
	assert.Equal(t, uint32(1), log[0].dp.Ref)
	assert.Equal(t, "current", log[1].scene)
	assert.Equal(t, StencilNotEqual, log[1].dp.Stencil)
	assert.Equal(t, uint32(1), a.StencilRef)
	assert.True(t, fd.AutoClear())

	mask := a.Mask.(*fakeMask)
	require.Len(t, mask.draws, 1)
	assert.Equal(t, StencilIncrement, mask.draws[0].Stencil)
	assert.Equal(t, uint32(0), mask.draws[0].Ref)
}

func TestRenderSimpleBehind(t *testing.T) {
	var log []drawRec
	current := &fakeScene{name: "current", log: &log}
	dest := &fakeScene{name: "dest", log: &log}

	a := NewPortal("a", 2, 3, math32.Vec3(0, 0, 0), identityQuat())
	b := NewPortal("b", 2, 3, math32.Vec3(0, 0, 10), yRot(math32.Pi))
	a.Link(b)

	cm := NewCamera(1.5)
	cm.SetPose(math32.Vec3(0, 1, -1), identityQuat())
	rd := NewRenderer(&fakeDrawer{}, 2)

	rd.RenderSimple(cm, current, dest, a)

	require.Len(t, log, 1)
	assert.Equal(t, "current", log[0].scene)
}

func TestDestClipPlaneSide(t *testing.T) {
	rd := NewRenderer(&fakeDrawer{}, 2)
	dst := NewPortal("dst", 2, 3, math32.Vec3(0, 0, 5), identityQuat())

	// camera behind the destination: the outward normal is kept
	sec := NewCamera(1.5)
	sec.SetPose(math32.Vec3(0, 0, 0), identityQuat())
	pl := rd.destClipPlane(dst, sec)
	assertVector3(t, math32.Vec3(0, 0, 1), pl.Norm, testTol)
	assert.InDelta(t, -5, float64(pl.Off), testTol)

	// camera in front: the normal is flipped so the camera is on the
	// negative side either way
	sec.SetPose(math32.Vec3(0, 0, 10), identityQuat())
	pl = rd.destClipPlane(dst, sec)
	assertVector3(t, math32.Vec3(0, 0, -1), pl.Norm, testTol)
	assert.InDelta(t, -5, float64(pl.Off), testTol)
}
