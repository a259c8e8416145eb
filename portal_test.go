// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
)

const testTol = 1.0e-5

func assertVector3(t *testing.T, want, got math32.Vector3, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol)
	assert.InDelta(t, want.Y, got.Y, tol)
	assert.InDelta(t, want.Z, got.Z, tol)
}

// assertSameRotation compares two quaternions by their action on the
// basis vectors, which ignores the sign ambiguity of the representation.
func assertSameRotation(t *testing.T, want, got math32.Quat, tol float64) {
	t.Helper()
	for _, v := range []math32.Vector3{math32.Vec3(1, 0, 0), math32.Vec3(0, 1, 0), math32.Vec3(0, 0, 1)} {
		assertVector3(t, v.MulQuat(want), v.MulQuat(got), tol)
	}
}

func identityQuat() math32.Quat {
	var q math32.Quat
	q.SetIdentity()
	return q
}

func yRot(angle float32) math32.Quat {
	return math32.NewQuatAxisAngle(math32.Vec3(0, 1, 0), angle)
}

func TestLinkSymmetry(t *testing.T) {
	a := NewPortal("a", 1, 2, math32.Vec3(0, 0, 0), identityQuat())
	b := NewPortal("b", 1, 2, math32.Vec3(0, 0, 10), yRot(math32.Pi))

	a.Link(b)
	assert.Equal(t, b, a.Linked)
	assert.Equal(t, a, b.Linked)

	// same state regardless of which side links
	a.Unlink()
	assert.Nil(t, a.Linked)
	assert.Nil(t, b.Linked)
	b.Link(a)
	assert.Equal(t, b, a.Linked)
	assert.Equal(t, a, b.Linked)

	// linking twice is a no-op
	a.Link(b)
	assert.Equal(t, b, a.Linked)
	assert.Equal(t, a, b.Linked)
}

func TestRelinkClearsOldPartner(t *testing.T) {
	a := NewPortal("a", 1, 2, math32.Vec3(0, 0, 0), identityQuat())
	b := NewPortal("b", 1, 2, math32.Vec3(0, 0, 10), identityQuat())
	c := NewPortal("c", 1, 2, math32.Vec3(5, 0, 0), identityQuat())

	a.Link(b)
	a.Link(c)
	assert.Equal(t, c, a.Linked)
	assert.Equal(t, a, c.Linked)
	assert.Nil(t, b.Linked)
}

func TestLinkSelfAndNil(t *testing.T) {
	a := NewPortal("a", 1, 2, math32.Vec3(0, 0, 0), identityQuat())
	a.Link(nil)
	assert.Nil(t, a.Linked)
	a.Link(a)
	assert.Nil(t, a.Linked)
}

func TestUpdateRecomputesNormal(t *testing.T) {
	pt := NewPortal("p", 1, 2, math32.Vec3(0, 0, 0), identityQuat())
	assertVector3(t, math32.Vec3(0, 0, 1), pt.Norm, testTol)

	pt.Quat = yRot(math32.Pi / 2)
	pt.Update()
	assertVector3(t, math32.Vec3(1, 0, 0), pt.Norm, testTol)
}

func TestPlaneAndSignedDistance(t *testing.T) {
	pt := NewPortal("p", 2, 3, math32.Vec3(0, 0, 5), identityQuat())
	pl := pt.Plane()
	assertVector3(t, math32.Vec3(0, 0, 1), pl.Norm, testTol)
	assert.InDelta(t, -5, float64(pl.Off), testTol)

	assert.InDelta(t, 2, float64(pt.SignedDistance(math32.Vec3(0, 1, 7))), testTol)
	assert.InDelta(t, -5, float64(pt.SignedDistance(math32.Vec3(3, 0, 0))), testTol)
	assert.True(t, pt.IsPointInFront(math32.Vec3(0, 0, 6)))
	assert.False(t, pt.IsPointInFront(math32.Vec3(0, 0, 4)))
	assert.False(t, pt.IsPointInFront(math32.Vec3(0, 0, 5)))
}

func TestCenter(t *testing.T) {
	pt := NewPortal("p", 2, 3, math32.Vec3(1, 0, 0), identityQuat())
	assertVector3(t, math32.Vec3(1, 1.5, 0), pt.Center(), testTol)

	// center follows the local up axis when rotated
	pt.Quat = math32.NewQuatAxisAngle(math32.Vec3(0, 0, 1), math32.Pi/2)
	pt.Update()
	assertVector3(t, math32.Vec3(-0.5, 0, 0), pt.Center(), testTol)
}

func TestIsPointInBounds(t *testing.T) {
	pt := NewPortal("p", 2, 3, math32.Vec3(0, 0, 0), identityQuat())

	assert.True(t, pt.IsPointInBounds(math32.Vec3(1.0, 1.5, 0), 0))
	assert.False(t, pt.IsPointInBounds(math32.Vec3(1.01, 1.5, 0), 0))
	assert.True(t, pt.IsPointInBounds(math32.Vec3(0, 3.01, 0), 0.1))
	assert.False(t, pt.IsPointInBounds(math32.Vec3(0, 3.01, 0), 0))
	assert.False(t, pt.IsPointInBounds(math32.Vec3(0, -0.01, 0), 0))
	assert.True(t, pt.IsPointInBounds(math32.Vec3(0, -0.01, 0), 0.1))
}

func TestIsPointInBoundsRotated(t *testing.T) {
	pt := NewPortal("p", 2, 3, math32.Vec3(0, 0, 10), yRot(math32.Pi/2))

	// local +X maps to world -Z
	assert.True(t, pt.IsPointInBounds(math32.Vec3(0, 1, 9.1), 0))
	assert.False(t, pt.IsPointInBounds(math32.Vec3(0, 1, 8.9), 0))
}

func TestDestinationCameraPoseScenario(t *testing.T) {
	a := NewPortal("a", 1, 2, math32.Vec3(0, 0, 0), identityQuat())
	b := NewPortal("b", 1, 2, math32.Vec3(0, 0, 10), yRot(math32.Pi))
	a.Link(b)

	pos, quat := a.DestinationCameraPose(math32.Vec3(0, 1, -0.5), identityQuat())
	assertVector3(t, math32.Vec3(0, 1, 9.5), pos, testTol)
	// the portal-to-portal flip and the destination's own 180 degree
	// placement cancel: facing is unchanged in world terms.
	assertSameRotation(t, identityQuat(), quat, testTol)
}

func TestDestinationCameraPoseUnlinked(t *testing.T) {
	a := NewPortal("a", 1, 2, math32.Vec3(3, 0, 0), yRot(0.5))
	pos := math32.Vec3(1, 2, 3)
	quat := yRot(1.1)

	gp, gq := a.DestinationCameraPose(pos, quat)
	assert.Equal(t, pos, gp)
	assert.Equal(t, quat, gq)
}

func TestSetStencilRef(t *testing.T) {
	pt := NewPortal("p", 1, 2, math32.Vec3(0, 0, 0), identityQuat())
	pt.SetStencilRef(3)
	assert.Equal(t, uint32(3), pt.StencilRef)
}

func TestReleaseBreaksLink(t *testing.T) {
	a := NewPortal("a", 1, 2, math32.Vec3(0, 0, 0), identityQuat())
	b := NewPortal("b", 1, 2, math32.Vec3(0, 0, 10), identityQuat())
	a.Link(b)
	mask := &fakeMask{}
	a.Mask = mask

	a.Release()
	assert.Nil(t, a.Linked)
	assert.Nil(t, b.Linked)
	assert.Nil(t, a.Mask)
	assert.True(t, mask.released)
}

func TestUpdateMovesMask(t *testing.T) {
	pt := NewPortal("p", 2, 3, math32.Vec3(0, 0, 0), identityQuat())
	mask := &fakeMask{}
	pt.Mask = mask

	pt.Pos = math32.Vec3(0, 0, 4)
	pt.Update()
	assert.Equal(t, 1, mask.transforms)
	assertVector3(t, math32.Vec3(0, 0, 4), mask.pos, testTol)
	assert.Equal(t, float32(2), mask.width)
	assert.Equal(t, float32(3), mask.height)
}
