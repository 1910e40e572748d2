package wlext

import (
	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// xdg-output-unstable-v1 interface names.
const (
	XdgOutputManagerInterface = "zxdg_output_manager_v1"
	XdgOutputInterface        = "zxdg_output_v1"
)

// XdgOutputManager is the zxdg_output_manager_v1 global.
type XdgOutputManager struct {
	client.BaseProxy
}

// NewXdgOutputManager wraps a proxy freshly created by Registry.Bind.
func NewXdgOutputManager(ctx *client.Context) *XdgOutputManager {
	m := &XdgOutputManager{}
	m.SetContext(ctx)
	return m
}

// GetXdgOutput requests the extended output information for output.
func (m *XdgOutputManager) GetXdgOutput(output *client.Output) (*XdgOutput, error) {
	xo := NewXdgOutput(m.Context())

	const opcode = 1 // get_xdg_output
	if err := m.Context().SendRequest(m, opcode, xo, output); err != nil {
		m.Context().Unregister(xo)
		return nil, err
	}
	return xo, nil
}

// Destroy releases the manager binding.
func (m *XdgOutputManager) Destroy() error {
	const opcode = 0
	err := m.Context().SendRequest(m, opcode)
	m.Context().Unregister(m)
	return err
}

// Dispatch handles incoming events; the manager itself sends none.
func (m *XdgOutputManager) Dispatch(event *client.Event) {}

// XdgOutput tracks one output's logical geometry and name, as reported by
// the compositor through xdg-output-unstable-v1.
type XdgOutput struct {
	client.BaseProxy

	LogicalX, LogicalY          int32
	LogicalWidth, LogicalHeight int32
	Name, Description           string

	doneHandlers []func()
}

// NewXdgOutput allocates and registers a fresh xdg-output proxy.
func NewXdgOutput(ctx *client.Context) *XdgOutput {
	xo := &XdgOutput{}
	xo.SetContext(ctx)
	id := ctx.AllocateID()
	xo.SetID(id)
	ctx.Register(xo)
	return xo
}

// AddDoneHandler registers a callback invoked once the initial burst of
// property events for this output has been applied.
func (xo *XdgOutput) AddDoneHandler(h func()) {
	xo.doneHandlers = append(xo.doneHandlers, h)
}

// Destroy releases the xdg-output object.
func (xo *XdgOutput) Destroy() error {
	const opcode = 0
	err := xo.Context().SendRequest(xo, opcode)
	xo.Context().Unregister(xo)
	return err
}

// Dispatch decodes logical_position(0), logical_size(1), done(2), name(3)
// and description(4) events, per xdg-output-unstable-v1.
func (xo *XdgOutput) Dispatch(event *client.Event) {
	switch event.Opcode {
	case 0:
		xo.LogicalX = event.Int32()
		xo.LogicalY = event.Int32()
	case 1:
		xo.LogicalWidth = event.Int32()
		xo.LogicalHeight = event.Int32()
	case 2:
		for _, h := range xo.doneHandlers {
			h()
		}
	case 3:
		xo.Name = event.String()
	case 4:
		xo.Description = event.String()
	}
}
