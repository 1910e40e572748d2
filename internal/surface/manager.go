// Package surface implements the Surface Manager: the Wayland connection,
// registry binding, layer-surface lifecycle, SHM buffer pool, and paint
// step for the transparent overlay the keypress buffer is rendered onto.
package surface

import (
	"fmt"

	"github.com/bnema/keyviz/internal/config"
	"github.com/bnema/keyviz/internal/errkind"
	"github.com/bnema/keyviz/internal/logger"
	"github.com/bnema/keyviz/internal/textshape"
	"github.com/bnema/keyviz/internal/wlext"
	"github.com/rajveermalviya/go-wayland/wayland/client"
)

const appNamespace = "keyviz"

const (
	defaultWidth  = 400
	defaultHeight = 80
)

// Renderer is the capability set the Frame Scheduler drives, kept narrow so
// a future non-overlay render backend (e.g. a headless/console mode) can
// implement it without depending on Wayland at all.
type Renderer interface {
	Paint(segments []textshape.Segment) error
	Dispatch() error
	Close() error
}

// Manager is the overlay Renderer: a layer-shell surface anchored to a
// screen edge, painted from an SHM-backed buffer pool.
type Manager struct {
	cfg config.Config

	display    *client.Display
	registry   *client.Registry
	compositor *client.Compositor
	shm        *client.Shm
	layerShell *wlext.LayerShell
	outputMgr  *wlext.XdgOutputManager

	surface      *client.Surface
	layerSurface *wlext.LayerSurface
	pool         *bufferPool
	shaper       textshape.Shaper

	outputs  map[uint32]*outputState
	entered  map[*client.Output]bool

	width, height int32
	scale         int32
	configured    bool
	closed        bool
	pendingResize bool
}

type outputState struct {
	wlOutput *client.Output
	xdg      *wlext.XdgOutput
	scale    int32
}

// New connects to the compositor, binds the required globals, and creates
// the anchored layer surface, blocking until the first configure event.
func New(cfg config.Config) (*Manager, error) {
	display, err := client.Connect("")
	if err != nil {
		return nil, fmt.Errorf("connect to Wayland display: %w", errkind.ErrProtocol)
	}

	m := &Manager{
		cfg:     cfg,
		display: display,
		outputs: make(map[uint32]*outputState),
		entered: make(map[*client.Output]bool),
		scale:   1,
	}

	if err := m.bindGlobals(); err != nil {
		m.display.Context().Close()
		return nil, err
	}

	shaper, err := textshape.NewDefault(cfg.Font)
	if err != nil {
		m.display.Context().Close()
		return nil, fmt.Errorf("load font: %w", err)
	}
	m.shaper = shaper
	m.pool = newBufferPool(m.shm)

	if err := m.createLayerSurface(); err != nil {
		m.Close()
		return nil, err
	}

	if err := m.waitForConfigure(); err != nil {
		m.Close()
		return nil, err
	}

	return m, nil
}

func (m *Manager) bindGlobals() error {
	registry, err := m.display.GetRegistry()
	if err != nil {
		return fmt.Errorf("get registry: %w", errkind.ErrProtocol)
	}
	m.registry = registry

	registry.SetGlobalHandler(func(ev client.RegistryGlobalEvent) {
		switch ev.Interface {
		case "wl_compositor":
			m.compositor = client.NewCompositor(m.display.Context())
			_ = registry.Bind(ev.Name, ev.Interface, 4, m.compositor)
		case "wl_shm":
			m.shm = client.NewShm(m.display.Context())
			_ = registry.Bind(ev.Name, ev.Interface, 1, m.shm)
		case wlext.LayerShellInterface:
			m.layerShell = wlext.NewLayerShell(m.display.Context())
			_ = registry.Bind(ev.Name, ev.Interface, 1, m.layerShell)
		case wlext.XdgOutputManagerInterface:
			m.outputMgr = wlext.NewXdgOutputManager(m.display.Context())
			_ = registry.Bind(ev.Name, ev.Interface, 2, m.outputMgr)
		case "wl_output":
			output := client.NewOutput(m.display.Context())
			_ = registry.Bind(ev.Name, ev.Interface, 2, output)
			m.trackOutput(ev.Name, output)
		}
	})

	if err := m.display.Context().Roundtrip(); err != nil {
		return fmt.Errorf("registry roundtrip: %w", errkind.ErrProtocol)
	}
	// A second roundtrip lets xdg-output bindings (which depend on outputs
	// discovered in the first pass) resolve before layer-surface creation.
	if err := m.display.Context().Roundtrip(); err != nil {
		return fmt.Errorf("registry roundtrip: %w", errkind.ErrProtocol)
	}

	if m.compositor == nil || m.shm == nil {
		return fmt.Errorf("compositor is missing wl_compositor or wl_shm: %w", errkind.ErrProtocol)
	}
	if m.layerShell == nil {
		return fmt.Errorf("compositor does not implement %s: %w", wlext.LayerShellInterface, errkind.ErrMissingLayerShell)
	}
	return nil
}

func (m *Manager) trackOutput(name uint32, wlOutput *client.Output) {
	st := &outputState{wlOutput: wlOutput, scale: 1}
	m.outputs[name] = st

	wlOutput.AddScaleHandler(func(ev client.OutputScaleEvent) {
		st.scale = ev.Factor
		m.recomputeScale()
	})

	if m.outputMgr == nil {
		return
	}
	xdg, err := m.outputMgr.GetXdgOutput(wlOutput)
	if err != nil {
		logger.Warnf("failed to request xdg-output for output %d: %v", name, err)
		return
	}
	st.xdg = xdg
}

// recomputeScale sets m.scale to the maximum scale factor among outputs the
// surface currently spans, per wl_surface.enter/leave, and invalidates the
// buffer pool on change so every subsequently acquired buffer is sized for
// the new scale.
func (m *Manager) recomputeScale() {
	scale := int32(1)
	for wlOutput, in := range m.entered {
		if !in {
			continue
		}
		for _, st := range m.outputs {
			if st.wlOutput == wlOutput && st.scale > scale {
				scale = st.scale
			}
		}
	}
	if scale == m.scale {
		return
	}
	m.scale = scale

	if m.surface != nil {
		if err := m.surface.SetBufferScale(scale); err != nil {
			logger.Warnf("failed to set buffer scale: %v", err)
		}
	}
	m.pool.Resize(m.width*scale, m.height*scale)
}

func (m *Manager) createLayerSurface() error {
	surface, err := m.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("create surface: %w", errkind.ErrProtocol)
	}
	m.surface = surface

	surface.AddEnterHandler(func(ev client.SurfaceEnterEvent) {
		m.entered[ev.Output] = true
		m.recomputeScale()
	})
	surface.AddLeaveHandler(func(ev client.SurfaceLeaveEvent) {
		delete(m.entered, ev.Output)
		m.recomputeScale()
	})

	layerSurface, err := m.layerShell.GetLayerSurface(surface, nil, wlext.LayerOverlay, appNamespace)
	if err != nil {
		return fmt.Errorf("get layer surface: %w", errkind.ErrProtocol)
	}
	m.layerSurface = layerSurface

	anchor := anchorBits(m.cfg.Anchors)
	if err := layerSurface.SetAnchor(anchor); err != nil {
		return fmt.Errorf("set anchor: %w", errkind.ErrProtocol)
	}
	margin := int32(m.cfg.Margin)
	if err := layerSurface.SetMargin(margin, margin, margin, margin); err != nil {
		return fmt.Errorf("set margin: %w", errkind.ErrProtocol)
	}
	if err := layerSurface.SetKeyboardInteractivity(wlext.KeyboardInteractivityNone); err != nil {
		return fmt.Errorf("set keyboard interactivity: %w", errkind.ErrProtocol)
	}
	if err := layerSurface.SetExclusiveZone(0); err != nil {
		return fmt.Errorf("set exclusive zone: %w", errkind.ErrProtocol)
	}

	layerSurface.AddConfigureHandler(m.handleConfigure)
	layerSurface.AddClosedHandler(func() {
		logger.Warnf("compositor closed the overlay layer surface")
		m.configured = false
		m.closed = true
	})

	if err := surface.Commit(); err != nil {
		return fmt.Errorf("commit surface: %w", errkind.ErrProtocol)
	}
	return nil
}

func anchorBits(a config.AnchorSet) uint32 {
	var bits uint32
	if a.Has(config.AnchorTop) {
		bits |= wlext.AnchorTop
	}
	if a.Has(config.AnchorBottom) {
		bits |= wlext.AnchorBottom
	}
	if a.Has(config.AnchorLeft) {
		bits |= wlext.AnchorLeft
	}
	if a.Has(config.AnchorRight) {
		bits |= wlext.AnchorRight
	}
	return bits
}

func (m *Manager) handleConfigure(ev wlext.LayerSurfaceConfigureEvent) {
	width, height := int32(ev.Width), int32(ev.Height)
	if width == 0 {
		width = defaultWidth
	}
	if height == 0 {
		height = defaultHeight
	}

	if width != m.width || height != m.height {
		m.width, m.height = width, height
		m.pool.Resize(width*m.scale, height*m.scale)
	}

	if err := m.layerSurface.AckConfigure(ev.Serial); err != nil {
		logger.Warnf("failed to ack configure: %v", err)
	}
	m.configured = true
	m.pendingResize = false
}

func (m *Manager) waitForConfigure() error {
	for !m.configured {
		if err := m.display.Context().Roundtrip(); err != nil {
			return fmt.Errorf("wait for configure: %w", errkind.ErrProtocol)
		}
	}
	return nil
}

// Paint implements Renderer. It measures the requested text, requests a
// resize if the wanted size differs from the negotiated surface size, and
// otherwise fills
// the background and draws the segments into a pooled buffer before
// committing it.
func (m *Manager) Paint(segments []textshape.Segment) error {
	if m.closed {
		return fmt.Errorf("layer surface closed: %w", errkind.ErrProtocol)
	}
	if !m.configured || m.pendingResize {
		return nil
	}

	textWidth, textHeight := m.shaper.Measure(segments)
	wantWidth := int32(textWidth) + int32(m.cfg.Margin)*2
	wantHeight := int32(textHeight) + int32(m.cfg.Margin)*2

	if wantWidth != m.width || wantHeight != m.height {
		if err := m.layerSurface.SetSize(uint32(wantWidth), uint32(wantHeight)); err != nil {
			return fmt.Errorf("request resize: %w", errkind.ErrProtocolTransient)
		}
		if err := m.surface.Commit(); err != nil {
			return fmt.Errorf("commit resize request: %w", errkind.ErrProtocolTransient)
		}
		m.pendingResize = true
		return nil
	}

	buf, err := m.pool.Acquire()
	if err != nil {
		return fmt.Errorf("acquire buffer: %w", errkind.ErrResourceExhaustion)
	}
	if buf == nil {
		// Every pooled buffer is still owned by the compositor; skip this
		// frame rather than block waiting for a release.
		return nil
	}

	fillBackground(buf.img, m.cfg.Background)
	m.shaper.Draw(buf.img, segments, m.cfg.Foreground, m.cfg.Special)

	if err := m.surface.Attach(buf.wlBuffer, 0, 0); err != nil {
		return fmt.Errorf("attach buffer: %w", errkind.ErrProtocolTransient)
	}
	if err := m.surface.Damage(0, 0, m.width, m.height); err != nil {
		return fmt.Errorf("damage surface: %w", errkind.ErrProtocolTransient)
	}
	if err := m.surface.Commit(); err != nil {
		return fmt.Errorf("commit surface: %w", errkind.ErrProtocolTransient)
	}
	return nil
}

// Dispatch processes any pending Wayland events without blocking the
// scheduler's tick.
func (m *Manager) Dispatch() error {
	if m.closed {
		return fmt.Errorf("layer surface closed: %w", errkind.ErrProtocol)
	}
	if err := m.display.Context().DispatchPending(); err != nil {
		return fmt.Errorf("dispatch wayland events: %w", errkind.ErrProtocol)
	}
	return nil
}

// Close releases the buffer pool, the font shaper, the layer surface, and
// the Wayland connection, in that order.
func (m *Manager) Close() error {
	if m.pool != nil {
		m.pool.Close()
	}
	if m.shaper != nil {
		_ = m.shaper.Close()
	}
	if m.layerSurface != nil {
		_ = m.layerSurface.Destroy()
	}
	if m.display != nil {
		m.display.Context().Close()
	}
	return nil
}
