// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package egpu

import (
	_ "embed"

	"cogentcore.org/core/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sweriko/euclid"
)

//go:embed solid.wgsl
var solidShader string

const (
	cameraUniformSize     = 2 * 16 * 4 // view + projection
	modelUniformSize      = 16 * 4
	appearanceUniformSize = 3 * 16 // color + clip plane + params
)

// pipeKey identifies one pipeline variant. The stencil reference value
// is dynamic pass state, not part of the key, so the portal renderer's
// per-depth references all share one variant per mode.
type pipeKey struct {
	stencil    euclid.StencilMode
	colorWrite bool
	depthWrite bool
}

// pipeline returns the cached pipeline variant for the given draw
// parameters, building it on first use.
func (sy *System) pipeline(dp euclid.DrawParams) *wgpu.RenderPipeline {
	key := pipeKey{stencil: dp.Stencil, colorWrite: dp.ColorWrite, depthWrite: dp.DepthWrite}
	if pl, ok := sy.pipelines[key]; ok {
		return pl
	}
	pl, err := sy.buildPipeline(key)
	if errors.Log(err) != nil {
		return nil
	}
	sy.pipelines[key] = pl
	return pl
}

// stencilState maps a [euclid.StencilMode] onto the face state and write
// mask. Increment gates on equality with the reference and bumps the
// value on pass, so a nested portal mask can only stamp inside its
// parent's region.
func stencilState(mode euclid.StencilMode) (face wgpu.StencilFaceState, writeMask uint32) {
	face = wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	switch mode {
	case euclid.StencilWrite:
		face.PassOp = wgpu.StencilOperationReplace
		writeMask = 0xff
	case euclid.StencilIncrement:
		face.Compare = wgpu.CompareFunctionEqual
		face.PassOp = wgpu.StencilOperationIncrementClamp
		writeMask = 0xff
	case euclid.StencilEqual:
		face.Compare = wgpu.CompareFunctionEqual
	case euclid.StencilNotEqual:
		face.Compare = wgpu.CompareFunctionNotEqual
	}
	return face, writeMask
}

func (sy *System) buildPipeline(key pipeKey) (*wgpu.RenderPipeline, error) {
	face, writeMask := stencilState(key.stencil)

	colorMask := wgpu.ColorWriteMaskAll
	if !key.colorWrite {
		colorMask = wgpu.ColorWriteMask(0)
	}

	return sy.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "euclid solid",
		Layout: sy.pipeLayout,
		Vertex: wgpu.VertexState{
			Module:     sy.shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     sy.shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    sy.Format,
				WriteMask: colorMask,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
			// rooms are viewed from the inside, so back faces stay
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xffffffff,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: key.depthWrite,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   0xff,
			StencilWriteMask:  writeMask,
		},
	})
}
