// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package egpu is the WebGPU rendering backend for the euclid portal
// system. It implements the euclid rendering contracts (Drawer, Scene,
// Mask, Appearance) on github.com/cogentcore/webgpu, with a
// depth+stencil target and a pipeline variant per stencil draw mode.
//
// Every pass is encoded and submitted immediately, so queued buffer
// writes land in pass order and one shared camera uniform serves all
// passes of a frame.
package egpu
