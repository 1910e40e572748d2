package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/keyviz/internal/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDeliversUnderCapacity(t *testing.T) {
	a := New(0)
	ev := device.RawKeyEvent{DeviceID: "dev0", Scancode: 30, State: device.KeyPressed}

	a.Send(context.Background(), ev)

	select {
	case got := <-a.Events():
		assert.Equal(t, ev, got)
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
	assert.Equal(t, uint64(0), a.DropCount())
}

func TestSendDropsWhenChannelStaysFull(t *testing.T) {
	a := New(DefaultCapacity)

	// Fill the channel with nobody draining it.
	for i := 0; i < DefaultCapacity; i++ {
		a.Send(context.Background(), device.RawKeyEvent{DeviceID: "dev0", Scancode: uint16(i)})
	}
	require.Equal(t, uint64(0), a.DropCount())

	// One more must exceed the yield-and-retry window and be dropped.
	a.Send(context.Background(), device.RawKeyEvent{DeviceID: "dev0", Scancode: 999})
	assert.Equal(t, uint64(1), a.DropCount())
}

func TestShutdownClosesChannel(t *testing.T) {
	a := New(0)
	a.Shutdown()

	_, ok := <-a.Events()
	assert.False(t, ok, "channel should be closed after Shutdown")
}
