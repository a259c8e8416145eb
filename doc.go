// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package euclid implements seamless portal rendering: linked pairs of
// rectangular openings that show a live, correctly projected view into
// another region of space, and through which a moving observer can pass
// and be repositioned consistently on the other side.
//
// The package is the portal core only: the [Portal] entity and its rigid
// through-portal transform math, the [Renderer] driving the stencil-masked
// multi-pass draw sequence with bounded recursion, oblique near-plane
// clipping for the secondary camera ([ObliqueProjection]), and
// [CrossingMaterial] for objects physically straddling an opening.
// Drawing itself happens behind the narrow [Scene], [Drawer] and [Mask]
// contracts; the egpu subpackage provides a WebGPU implementation.
//
// Rendering is single threaded and strictly sequential within a frame:
// every pass depends on the stencil and depth state left by the previous
// one, and the renderer owns both buffers for the duration of one Render
// call.
package euclid
