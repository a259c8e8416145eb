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

// Appearance is a solid color surface, optionally clipped against a
// world-space plane: fragments on the negative side of the plane are
// discarded. It implements [euclid.Appearance]. Appearances are
// immutable once created; the crossing material swaps whole appearances
// between passes instead of mutating one.
type Appearance struct {
	buffer *wgpu.Buffer
	group  *wgpu.BindGroup
}

// NewAppearance returns an unclipped solid color appearance.
func NewAppearance(sy *System, clr color.Color) *Appearance {
	return newAppearance(sy, clr, false, math32.Vector3{}, math32.Vector3{})
}

func newAppearance(sy *System, clr color.Color, clip bool, normal, point math32.Vector3) *Appearance {
	var data [12]float32
	r, g, b, a := clr.RGBA()
	data[0] = float32(r) / 0xffff
	data[1] = float32(g) / 0xffff
	data[2] = float32(b) / 0xffff
	data[3] = float32(a) / 0xffff
	if clip {
		data[4] = normal.X
		data[5] = normal.Y
		data[6] = normal.Z
		data[7] = -normal.Dot(point)
		data[8] = 1
	}

	buf, err := sy.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "appearance",
		Size:  appearanceUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if errors.Log(err) != nil {
		return nil
	}
	sy.Queue.WriteBuffer(buf, 0, wgpu.ToBytes(data[:]))

	grp, err := sy.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "appearance",
		Layout: sy.appearLayout,
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
	return &Appearance{buffer: buf, group: grp}
}

// Release frees the uniform buffer and bind group.
func (ap *Appearance) Release() {
	if ap.group != nil {
		ap.group.Release()
		ap.group = nil
	}
	if ap.buffer != nil {
		ap.buffer.Release()
		ap.buffer = nil
	}
}

// Shaper builds clipped appearance variants for crossing materials. It
// implements [euclid.ClipShaper].
type Shaper struct {
	Sys *System

	// Colors records the base color of every appearance the shaper made,
	// so clipped variants can reproduce it.
	colors map[*Appearance]color.Color
}

// NewShaper returns a shaper on the given system.
func NewShaper(sy *System) *Shaper {
	return &Shaper{Sys: sy, colors: make(map[*Appearance]color.Color)}
}

// New returns a new unclipped appearance with the given color,
// registered so clipped variants of it can be derived later.
func (sh *Shaper) New(clr color.Color) *Appearance {
	ap := NewAppearance(sh.Sys, clr)
	if ap != nil {
		sh.colors[ap] = clr
	}
	return ap
}

// Clipped returns a variant of base clipped against the given
// world-space plane. The base must have been created by this shaper.
func (sh *Shaper) Clipped(base euclid.Appearance, normal, point math32.Vector3) euclid.Appearance {
	clr, ok := sh.colors[base.(*Appearance)]
	if !ok {
		clr = color.Gray{Y: 0x80}
	}
	return newAppearance(sh.Sys, clr, true, normal, point)
}

// Forget drops the color registration of an appearance the caller has
// released.
func (sh *Shaper) Forget(ap *Appearance) {
	delete(sh.colors, ap)
}
