package gpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/quads"
)

// gpuWaitTimeout bounds the fence wait after submission.
const gpuWaitTimeout = 5 * time.Second

// config collects renderer construction options.
type config struct {
	provider gpucontext.DeviceProvider
}

// Option configures a Renderer.
type Option func(*config)

// WithDeviceProvider shares an existing GPU device instead of opening a
// new adapter. The provider must expose HAL types via HalDevice() any and
// HalQueue() any (gogpu's context provider does).
func WithDeviceProvider(provider gpucontext.DeviceProvider) Option {
	return func(c *config) {
		c.provider = provider
	}
}

// Renderer draws batcher output on the GPU and reads the result back into
// a Pixmap. It owns the device (unless shared), the uber pipeline, the
// MSAA and resolve targets, and a cache of uploaded textures.
//
// Renderer methods are safe for concurrent use; a mutex serializes frames.
type Renderer struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// externalDevice is true when the device came from a provider; shared
	// resources are not destroyed on Close.
	externalDevice bool

	pipe *uberPipeline

	msaaTex     hal.Texture
	msaaView    hal.TextureView
	resolveTex  hal.Texture
	resolveView hal.TextureView
	width       uint32
	height      uint32

	// textures caches uploads keyed by the immutable source texture.
	textures map[*quads.Texture]*gpuTexture
	white    *gpuTexture

	closed bool
}

// gpuTexture pairs a device texture with its sampling view.
type gpuTexture struct {
	tex  hal.Texture
	view hal.TextureView
}

// NewRenderer creates a GPU renderer. Without options it opens the first
// available Vulkan adapter, preferring discrete and integrated GPUs.
func NewRenderer(opts ...Option) (*Renderer, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Renderer{
		textures: make(map[*quads.Texture]*gpuTexture),
	}

	if cfg.provider != nil {
		if err := r.adoptDevice(cfg.provider); err != nil {
			return nil, err
		}
	} else if err := r.initGPU(); err != nil {
		return nil, err
	}

	r.pipe = newUberPipeline(r.device, r.queue)
	return r, nil
}

// adoptDevice extracts HAL handles from a shared device provider.
func (r *Renderer) adoptDevice(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("quads/gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("quads/gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("quads/gpu: provider HalQueue is not hal.Queue")
	}
	r.device = device
	r.queue = queue
	r.externalDevice = true
	quads.Logger().Info("gpu: using shared device")
	return nil
}

// initGPU opens a Vulkan adapter and device.
func (r *Renderer) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("quads/gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("quads/gpu: create instance: %w", err)
	}
	r.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		r.instance = nil
		return fmt.Errorf("quads/gpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		r.instance = nil
		return fmt.Errorf("quads/gpu: open device: %w", err)
	}
	r.device = openDev.Device
	r.queue = openDev.Queue
	quads.Logger().Info("gpu: adapter selected", "name", selected.Info.Name)
	return nil
}

// Close releases all GPU resources. Safe to call multiple times.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true

	r.destroyTextureCache()
	r.destroyTargets()
	if r.pipe != nil {
		r.pipe.destroy()
		r.pipe = nil
	}
	if !r.externalDevice {
		if r.device != nil {
			r.device.Destroy()
		}
		if r.instance != nil {
			r.instance.Destroy()
		}
	}
	r.device = nil
	r.queue = nil
	r.instance = nil
}

// Render draws the batcher's accumulated geometry on the GPU and
// composites the result over the pixmap with source-over blending, the
// same semantics as SoftwareRenderer.Render.
func (r *Renderer) Render(pm *quads.Pixmap, b *quads.Batcher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("quads/gpu: renderer is closed")
	}

	batches := b.Finish()
	if len(batches) == 0 {
		return nil
	}

	w, h := uint32(pm.Width()), uint32(pm.Height()) //nolint:gosec // dimensions always fit uint32
	if w == 0 || h == 0 {
		return nil
	}
	if err := r.ensureReady(w, h); err != nil {
		return err
	}

	quads.Logger().Debug("gpu render",
		"batches", len(batches),
		"vertices", len(b.Vertices()),
		"shapes", len(b.Shapes()))

	// Per-frame geometry buffers.
	vertBuf, err := r.createAndUploadBuffer("quads_verts", packVertices(b.Vertices()),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	defer r.device.DestroyBuffer(vertBuf)

	idxBuf, err := r.createAndUploadBuffer("quads_indices", packIndices(b.Indices()),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create index buffer: %w", err)
	}
	defer r.device.DestroyBuffer(idxBuf)

	vp := quads.Viewport{Width: float64(w), Height: float64(h)}
	globalsBuf, err := r.createAndUploadBuffer("quads_globals", packGlobals(vp),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create globals buffer: %w", err)
	}
	defer r.device.DestroyBuffer(globalsBuf)

	// One uniform buffer per shape-record chunk referenced this frame.
	shapeBufs := make(map[int]hal.Buffer)
	defer func() {
		for _, buf := range shapeBufs {
			r.device.DestroyBuffer(buf)
		}
	}()
	for _, batch := range batches {
		if _, ok := shapeBufs[batch.ShapeBufferID]; ok {
			continue
		}
		payload, err := packShapes(b.ShapeBuffer(batch.ShapeBufferID))
		if err != nil {
			return err
		}
		buf, err := r.createAndUploadBuffer("quads_shapes", payload,
			gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
		if err != nil {
			return fmt.Errorf("create shape buffer %d: %w", batch.ShapeBufferID, err)
		}
		shapeBufs[batch.ShapeBufferID] = buf
	}

	// One bind group per batch: globals + shape chunk + texture + sampler.
	bindGroups := make([]hal.BindGroup, 0, len(batches))
	defer func() {
		for _, bg := range bindGroups {
			r.device.DestroyBindGroup(bg)
		}
	}()
	for _, batch := range batches {
		tex, err := r.ensureTexture(batch.Texture)
		if err != nil {
			return err
		}
		bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "quads_bind",
			Layout: r.pipe.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: globalsBuf.NativeHandle(), Offset: 0, Size: globalsSize,
				}},
				{Binding: 1, Resource: gputypes.BufferBinding{
					Buffer: shapeBufs[batch.ShapeBufferID].NativeHandle(), Offset: 0, Size: shapeBufferSize,
				}},
				{Binding: 2, Resource: gputypes.TextureViewBinding{TextureView: tex.view.NativeHandle()}},
				{Binding: 3, Resource: gputypes.SamplerBinding{Sampler: r.pipe.sampler.NativeHandle()}},
			},
		})
		if err != nil {
			return fmt.Errorf("create bind group: %w", err)
		}
		bindGroups = append(bindGroups, bg)
	}

	return r.encodeAndReadback(pm, w, h, batches, vertBuf, idxBuf, bindGroups)
}

// ensureReady creates the pipeline and render targets if needed.
func (r *Renderer) ensureReady(w, h uint32) error {
	if r.pipe.pipeline == nil {
		if err := r.pipe.create(); err != nil {
			return err
		}
	}
	if err := r.ensureTargets(w, h); err != nil {
		return fmt.Errorf("ensure targets: %w", err)
	}
	return nil
}

// ensureTargets creates or recreates the MSAA and resolve textures when
// the requested dimensions change.
func (r *Renderer) ensureTargets(w, h uint32) error {
	if r.width == w && r.height == h && r.msaaTex != nil {
		return nil
	}
	r.destroyTargets()

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	msaaTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quads_msaa",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create MSAA texture: %w", err)
	}
	r.msaaTex = msaaTex

	msaaView, err := r.device.CreateTextureView(msaaTex, &hal.TextureViewDescriptor{
		Label:         "quads_msaa_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.destroyTargets()
		return fmt.Errorf("create MSAA view: %w", err)
	}
	r.msaaView = msaaView

	resolveTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quads_resolve",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		r.destroyTargets()
		return fmt.Errorf("create resolve texture: %w", err)
	}
	r.resolveTex = resolveTex

	resolveView, err := r.device.CreateTextureView(resolveTex, &hal.TextureViewDescriptor{
		Label:         "quads_resolve_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.destroyTargets()
		return fmt.Errorf("create resolve view: %w", err)
	}
	r.resolveView = resolveView

	r.width = w
	r.height = h
	return nil
}

func (r *Renderer) destroyTargets() {
	if r.resolveView != nil {
		r.device.DestroyTextureView(r.resolveView)
		r.resolveView = nil
	}
	if r.resolveTex != nil {
		r.device.DestroyTexture(r.resolveTex)
		r.resolveTex = nil
	}
	if r.msaaView != nil {
		r.device.DestroyTextureView(r.msaaView)
		r.msaaView = nil
	}
	if r.msaaTex != nil {
		r.device.DestroyTexture(r.msaaTex)
		r.msaaTex = nil
	}
	r.width = 0
	r.height = 0
}

// ensureTexture returns the device texture for src, uploading it on first
// use. nil selects the shared 1x1 white texture. Source textures are
// immutable, so the cache never invalidates.
func (r *Renderer) ensureTexture(src *quads.Texture) (*gpuTexture, error) {
	if src == nil {
		if r.white == nil {
			white, err := r.uploadTexture(quads.WhiteTexture())
			if err != nil {
				return nil, err
			}
			r.white = white
		}
		return r.white, nil
	}
	if gt, ok := r.textures[src]; ok {
		return gt, nil
	}
	gt, err := r.uploadTexture(src)
	if err != nil {
		return nil, err
	}
	r.textures[src] = gt
	return gt, nil
}

// uploadTexture creates a device texture and uploads the texel data.
// RGBA8 maps to RGBA8Unorm; A8 maps to R8Unorm, which the shader reads as
// coverage in the red channel.
func (r *Renderer) uploadTexture(src *quads.Texture) (*gpuTexture, error) {
	var format gputypes.TextureFormat
	var bpp uint32
	switch src.Format() {
	case quads.FormatRGBA8:
		format = gputypes.TextureFormatRGBA8Unorm
		bpp = 4
	case quads.FormatA8:
		format = gputypes.TextureFormatR8Unorm
		bpp = 1
	default:
		return nil, fmt.Errorf("quads/gpu: unknown texture format %v", src.Format())
	}

	w, h := uint32(src.Width()), uint32(src.Height()) //nolint:gosec // validated at texture creation
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quads_texture",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}

	r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		src.Texels(),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * bpp, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "quads_texture_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	return &gpuTexture{tex: tex, view: view}, nil
}

func (r *Renderer) destroyTextureCache() {
	for _, gt := range r.textures {
		r.device.DestroyTextureView(gt.view)
		r.device.DestroyTexture(gt.tex)
	}
	r.textures = make(map[*quads.Texture]*gpuTexture)
	if r.white != nil {
		r.device.DestroyTextureView(r.white.view)
		r.device.DestroyTexture(r.white.tex)
		r.white = nil
	}
}

// encodeAndReadback encodes one render pass drawing every batch in order,
// resolves MSAA, copies to a staging buffer, waits, and composites the
// result over the pixmap.
func (r *Renderer) encodeAndReadback(
	pm *quads.Pixmap, w, h uint32, batches []quads.Batch,
	vertBuf, idxBuf hal.Buffer, bindGroups []hal.BindGroup,
) error {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "quads_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quads_render"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "quads_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:          r.msaaView,
				ResolveTarget: r.resolveView,
				LoadOp:        gputypes.LoadOpClear,
				StoreOp:       gputypes.StoreOpStore,
				ClearValue:    gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	rp.SetPipeline(r.pipe.pipeline)
	rp.SetVertexBuffer(0, vertBuf, 0)
	rp.SetIndexBuffer(idxBuf, gputypes.IndexFormatUint32, 0)
	for i, batch := range batches {
		rp.SetBindGroup(0, bindGroups[i], nil)
		//nolint:gosec // index ranges fit uint32
		rp.DrawIndexed(uint32(batch.IndexCount), 1, uint32(batch.FirstIndex), 0, 0)
	}
	rp.End()

	// After MSAA resolve the texture is in attachment layout; the copy
	// needs transfer-src. No-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(w) * uint64(h) * 4
	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quads_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(r.resolveTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.resolveTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, gpuWaitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := r.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	compositeBGRAOverPixmap(readback, pm)
	return nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (r *Renderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// compositeBGRAOverPixmap source-over composites a premultiplied BGRA8
// readback over the pixmap.
func compositeBGRAOverPixmap(readback []byte, pm *quads.Pixmap) {
	w, h := pm.Width(), pm.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			pm.BlendPixel(x, y, quads.RGBA{
				B: float64(readback[i+0]) / 255,
				G: float64(readback[i+1]) / 255,
				R: float64(readback[i+2]) / 255,
				A: float64(readback[i+3]) / 255,
			})
		}
	}
}
