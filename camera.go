// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import "cogentcore.org/core/math32"

// Camera defines the pose and perspective projection of one viewpoint.
// Identity orientation looks down the negative Z axis with positive Y up.
// The secondary cameras the [Renderer] places behind destination portals
// share the observer camera's perspective parameters and override the
// projection with an oblique near plane.
type Camera struct {

	// position of the camera in world coordinates.
	Pos math32.Vector3

	// rotation of the camera.
	Quat math32.Quat

	// field of view in degrees.
	FOV float32 `default:"60"`

	// aspect ratio (width / height).
	Aspect float32 `default:"1.5"`

	// near plane z coordinate.
	Near float32 `default:"0.1"`

	// far plane z coordinate.
	Far float32 `default:"1000"`

	// view matrix: inverse of the camera pose transform.
	ViewMatrix math32.Matrix4 `display:"-"`

	// projection matrix.
	ProjectionMatrix math32.Matrix4 `display:"-"`

	// inverse of the projection matrix.
	InvProjectionMatrix math32.Matrix4 `display:"-"`
}

// NewCamera returns a new camera with default parameters, the given
// aspect ratio, and matrices updated.
func NewCamera(aspect float32) *Camera {
	cm := &Camera{}
	cm.Defaults()
	cm.Aspect = aspect
	cm.UpdateMatrix()
	return cm
}

func (cm *Camera) Defaults() {
	cm.FOV = 60
	cm.Aspect = 1.5
	cm.Near = 0.1
	cm.Far = 1000
	cm.Quat.SetIdentity()
}

// UpdateMatrix updates the view and projection matrices from the current
// pose and perspective parameters. Must be called after mutating them,
// before the camera is used for rendering or portal math.
func (cm *Camera) UpdateMatrix() {
	if cm.Quat.IsNil() {
		cm.Quat.SetIdentity()
	}
	var pose math32.Matrix4
	pose.SetTransform(cm.Pos, cm.Quat, math32.Vec3(1, 1, 1))
	view, _ := pose.Inverse()
	cm.ViewMatrix = *view
	cm.ProjectionMatrix.SetPerspective(cm.FOV, cm.Aspect, cm.Near, cm.Far)
	inv, _ := cm.ProjectionMatrix.Inverse()
	cm.InvProjectionMatrix = *inv
}

// SetPose sets the camera position and orientation and updates matrices.
func (cm *Camera) SetPose(pos math32.Vector3, quat math32.Quat) {
	cm.Pos = pos
	cm.Quat = quat
	cm.UpdateMatrix()
}

// SetProjection overwrites the projection matrix and its inverse, leaving
// the view matrix untouched. The renderer uses this to install the
// oblique projection on a secondary camera; [Camera.UpdateMatrix] resets
// it to the standard perspective.
func (cm *Camera) SetProjection(proj *math32.Matrix4) {
	cm.ProjectionMatrix = *proj
	inv, _ := cm.ProjectionMatrix.Inverse()
	cm.InvProjectionMatrix = *inv
}

// LookAt orients the camera from its current position toward the given
// target with the given up direction, and updates matrices.
func (cm *Camera) LookAt(target, up math32.Vector3) {
	cm.Quat.SetFromRotationMatrix(math32.NewLookAt(cm.Pos, target, up))
	cm.UpdateMatrix()
}

// NearPlane returns the camera's natural near clipping plane in view
// space: normal along the view direction, camera on the negative side.
func (cm *Camera) NearPlane() math32.Plane {
	return math32.Plane{Norm: math32.Vec3(0, 0, -1), Off: -cm.Near}
}

// Clone returns a copy of the camera, sharing no state.
func (cm *Camera) Clone() *Camera {
	nc := *cm
	return &nc
}
