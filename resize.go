// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package euclid

import "image"

// Resizer tracks the last applied render-surface size for one camera and
// surface pairing. Each surface's render loop owns its own Resizer, so
// independent surfaces never share resize memory.
type Resizer struct {

	// Size is the last applied surface size.
	Size image.Point
}

// Update applies a new surface size when it differs from the last applied
// one, updating the camera aspect ratio and matrices, and reports whether
// anything changed. Zero or negative sizes are ignored.
func (rz *Resizer) Update(cm *Camera, size image.Point) bool {
	if size == rz.Size || size.X <= 0 || size.Y <= 0 {
		return false
	}
	rz.Size = size
	cm.Aspect = float32(size.X) / float32(size.Y)
	cm.UpdateMatrix()
	return true
}
