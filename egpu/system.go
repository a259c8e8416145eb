// Copyright (c) 2025, The Euclid Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package egpu

import (
	"fmt"
	"image"

	"cogentcore.org/core/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sweriko/euclid"
)

// System owns the WebGPU device, the render surface, and the shared
// per-frame state: the depth+stencil target, the camera uniform, and the
// pipeline variants. It implements [euclid.Drawer].
//
// All rendering happens between [System.BeginFrame] and
// [System.EndFrame], on a single goroutine.
type System struct {

	// Instance is the WebGPU instance.
	Instance *wgpu.Instance

	// Adapter is the physical device adapter.
	Adapter *wgpu.Adapter

	// Device is the logical device.
	Device *wgpu.Device

	// Queue is the device's command queue.
	Queue *wgpu.Queue

	// Surface is the window surface rendered to.
	Surface *wgpu.Surface

	// Format is the surface color format, from the surface capabilities.
	Format wgpu.TextureFormat

	// ClearColor is the color buffer clear value.
	ClearColor wgpu.Color

	size      image.Point
	autoClear bool

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	frameTexture *wgpu.Texture
	frameView    *wgpu.TextureView

	shader       *wgpu.ShaderModule
	cameraLayout *wgpu.BindGroupLayout
	appearLayout *wgpu.BindGroupLayout
	modelLayout  *wgpu.BindGroupLayout
	pipeLayout   *wgpu.PipelineLayout
	pipelines    map[pipeKey]*wgpu.RenderPipeline

	cameraBuffer *wgpu.Buffer
	cameraGroup  *wgpu.BindGroup

	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
}

// DepthFormat is the depth+stencil format for the shared target. The
// stencil component carries the portal recursion markers.
const DepthFormat = wgpu.TextureFormatDepth24PlusStencil8

// NewSystem creates the device and configures the surface at the given
// size.
func NewSystem(sd *wgpu.SurfaceDescriptor, size image.Point) (*System, error) {
	sy := &System{
		Instance:   wgpu.CreateInstance(nil),
		ClearColor: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		autoClear:  true,
		pipelines:  make(map[pipeKey]*wgpu.RenderPipeline),
	}
	sy.Surface = sy.Instance.CreateSurface(sd)

	ad, err := sy.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: sy.Surface,
	})
	if err != nil {
		return nil, fmt.Errorf("egpu: adapter: %w", err)
	}
	sy.Adapter = ad

	dev, err := ad.RequestDevice(&wgpu.DeviceDescriptor{Label: "euclid device"})
	if err != nil {
		return nil, fmt.Errorf("egpu: device: %w", err)
	}
	sy.Device = dev
	sy.Queue = dev.GetQueue()

	caps := sy.Surface.GetCapabilities(ad)
	sy.Format = caps.Formats[0]

	if err := sy.initShading(); err != nil {
		return nil, err
	}
	sy.SetSize(size)
	return sy, nil
}

// SetSize reconfigures the surface and rebuilds the depth+stencil target
// for the given size. Must not be called between BeginFrame and EndFrame.
func (sy *System) SetSize(size image.Point) {
	if size.X <= 0 || size.Y <= 0 || size == sy.size {
		return
	}
	sy.size = size

	caps := sy.Surface.GetCapabilities(sy.Adapter)
	sy.Surface.Configure(sy.Adapter, sy.Device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      sy.Format,
		Width:       uint32(size.X),
		Height:      uint32(size.Y),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	})

	sy.releaseDepth()
	tex, err := sy.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "depth stencil",
		Size: wgpu.Extent3D{
			Width:              uint32(size.X),
			Height:             uint32(size.Y),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if errors.Log(err) != nil {
		return
	}
	sy.depthTexture = tex
	view, err := tex.CreateView(nil)
	if errors.Log(err) != nil {
		return
	}
	sy.depthView = view
}

// Size returns the current surface size.
func (sy *System) Size() image.Point {
	return sy.size
}

// BeginFrame acquires the surface texture for this frame. When automatic
// clearing is on, all buffers are cleared before the first draw.
func (sy *System) BeginFrame() error {
	if sy.frameTexture != nil {
		return fmt.Errorf("egpu: previous frame not ended")
	}
	tex, err := sy.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("egpu: surface texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("egpu: surface view: %w", err)
	}
	sy.frameTexture = tex
	sy.frameView = view
	if sy.autoClear {
		sy.Clear(true, true, true)
	}
	return nil
}

// EndFrame presents the frame and releases the surface texture.
func (sy *System) EndFrame() {
	if sy.frameTexture == nil {
		return
	}
	sy.Surface.Present()
	sy.frameView.Release()
	sy.frameTexture.Release()
	sy.frameView = nil
	sy.frameTexture = nil
}

// Clear immediately clears the selected buffers, using a draw-free pass
// whose load operations do the clearing. Only valid between BeginFrame
// and EndFrame.
func (sy *System) Clear(color, depth, stencil bool) {
	if sy.frameView == nil {
		return
	}
	load := func(on bool) wgpu.LoadOp {
		if on {
			return wgpu.LoadOpClear
		}
		return wgpu.LoadOpLoad
	}
	enc, err := sy.Device.CreateCommandEncoder(nil)
	if errors.Log(err) != nil {
		return
	}
	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       sy.frameView,
			LoadOp:     load(color),
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: sy.ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:              sy.depthView,
			DepthLoadOp:       load(depth),
			DepthStoreOp:      wgpu.StoreOpStore,
			DepthClearValue:   1,
			StencilLoadOp:     load(stencil),
			StencilStoreOp:    wgpu.StoreOpStore,
			StencilClearValue: 0,
		},
	})
	pass.End()
	sy.submit(enc)
}

// SetAutoClear sets whether BeginFrame clears all buffers.
func (sy *System) SetAutoClear(on bool) {
	sy.autoClear = on
}

// AutoClear reports whether BeginFrame clears all buffers.
func (sy *System) AutoClear() bool {
	return sy.autoClear
}

// beginPass writes the camera uniform and starts one render pass with
// the pipeline variant for the given draw parameters. Returns nil when
// no frame is active. Each beginPass must be paired with endPass, and
// passes never nest.
func (sy *System) beginPass(cm *euclid.Camera, dp euclid.DrawParams) *wgpu.RenderPassEncoder {
	if sy.frameView == nil || sy.pass != nil {
		return nil
	}
	var cam [32]float32
	copy(cam[:16], cm.ViewMatrix[:])
	copy(cam[16:], cm.ProjectionMatrix[:])
	sy.Queue.WriteBuffer(sy.cameraBuffer, 0, wgpu.ToBytes(cam[:]))

	enc, err := sy.Device.CreateCommandEncoder(nil)
	if errors.Log(err) != nil {
		return nil
	}
	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    sy.frameView,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:           sy.depthView,
			DepthLoadOp:    wgpu.LoadOpLoad,
			DepthStoreOp:   wgpu.StoreOpStore,
			StencilLoadOp:  wgpu.LoadOpLoad,
			StencilStoreOp: wgpu.StoreOpStore,
		},
	})
	pass.SetPipeline(sy.pipeline(dp))
	pass.SetStencilReference(dp.Ref)
	pass.SetBindGroup(0, sy.cameraGroup, nil)
	sy.encoder = enc
	sy.pass = pass
	return pass
}

// endPass ends the current pass and submits it, so buffer writes issued
// while encoding the next pass cannot reorder ahead of this one.
func (sy *System) endPass() {
	if sy.pass == nil {
		return
	}
	sy.pass.End()
	sy.submit(sy.encoder)
	sy.pass = nil
	sy.encoder = nil
}

func (sy *System) submit(enc *wgpu.CommandEncoder) {
	cmd, err := enc.Finish(nil)
	if errors.Log(err) == nil {
		sy.Queue.Submit(cmd)
		cmd.Release()
	}
	enc.Release()
}

// initShading builds the shader module, the bind group layouts (camera,
// appearance, model), the shared pipeline layout, and the camera uniform.
func (sy *System) initShading() error {
	sh, err := sy.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "euclid solid",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: solidShader},
	})
	if err != nil {
		return fmt.Errorf("egpu: shader: %w", err)
	}
	sy.shader = sh

	uniformLayout := func(label string, size uint64, vis wgpu.ShaderStage) (*wgpu.BindGroupLayout, error) {
		return sy.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: label,
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: vis,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			}},
		})
	}
	if sy.cameraLayout, err = uniformLayout("camera", cameraUniformSize, wgpu.ShaderStageVertex); err != nil {
		return fmt.Errorf("egpu: camera layout: %w", err)
	}
	if sy.appearLayout, err = uniformLayout("appearance", appearanceUniformSize, wgpu.ShaderStageFragment); err != nil {
		return fmt.Errorf("egpu: appearance layout: %w", err)
	}
	if sy.modelLayout, err = uniformLayout("model", modelUniformSize, wgpu.ShaderStageVertex); err != nil {
		return fmt.Errorf("egpu: model layout: %w", err)
	}
	sy.pipeLayout, err = sy.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "euclid solid",
		BindGroupLayouts: []*wgpu.BindGroupLayout{sy.cameraLayout, sy.appearLayout, sy.modelLayout},
	})
	if err != nil {
		return fmt.Errorf("egpu: pipeline layout: %w", err)
	}

	sy.cameraBuffer, err = sy.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "camera",
		Size:  cameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("egpu: camera buffer: %w", err)
	}
	sy.cameraGroup, err = sy.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "camera",
		Layout: sy.cameraLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  sy.cameraBuffer,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		return fmt.Errorf("egpu: camera bind group: %w", err)
	}
	return nil
}

func (sy *System) releaseDepth() {
	if sy.depthView != nil {
		sy.depthView.Release()
		sy.depthView = nil
	}
	if sy.depthTexture != nil {
		sy.depthTexture.Release()
		sy.depthTexture = nil
	}
}

// Release frees all GPU resources held by the system.
func (sy *System) Release() {
	sy.releaseDepth()
	for _, pl := range sy.pipelines {
		pl.Release()
	}
	sy.pipelines = map[pipeKey]*wgpu.RenderPipeline{}
	if sy.cameraGroup != nil {
		sy.cameraGroup.Release()
		sy.cameraGroup = nil
	}
	if sy.cameraBuffer != nil {
		sy.cameraBuffer.Release()
		sy.cameraBuffer = nil
	}
	if sy.Device != nil {
		sy.Device.Release()
		sy.Device = nil
	}
	if sy.Surface != nil {
		sy.Surface.Release()
		sy.Surface = nil
	}
	if sy.Instance != nil {
		sy.Instance.Release()
		sy.Instance = nil
	}
}
