package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/telecortex.go/pkg/framework"
)

func TestEncodeDecode(t *testing.T) {
	st := &ControllerStatus{
		ControllerId:      "front",
		CommandsProcessed: 42,
		Errors:            2,
		LastLine:          -1,
		QueueLen:          3,
		PixelsSet:         1000,
		Brightness:        128,
		Idle:              true,
	}
	data, err := Encode(st)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, "front", decoded.ControllerId)
	require.EqualValues(t, 42, decoded.CommandsProcessed)
	require.EqualValues(t, -1, decoded.LastLine)
	require.EqualValues(t, 128, decoded.Brightness)
	require.True(t, decoded.Idle)

	_, err = Decode([]byte{0xff, 0xff})
	require.Error(t, err)
}

func TestPublisherInterval(t *testing.T) {
	var calls int
	p, err := NewPublisher("mqtt://127.0.0.1:1/cortex/", "front", Meta{Panels: []string{"a"}},
		SourceFunc(func() *ControllerStatus {
			calls++
			return &ControllerStatus{}
		}))
	require.NoError(t, err)
	p.Interval = time.Hour
	require.Equal(t, "cortex/", p.Broker.TopicPrefix)

	loop := fx.NewLoop()
	loop.AddController(fx.PrLvIdle, fx.ControlFunc(p.Control))
	loop.RunOnce(context.Background())
	loop.RunOnce(context.Background())
	require.Equal(t, 1, calls)
}

func TestPublisherDisabled(t *testing.T) {
	p := &Publisher{Source: SourceFunc(func() *ControllerStatus {
		t.Fatal("unexpected status")
		return nil
	})}
	loop := fx.NewLoop()
	loop.AddController(fx.PrLvIdle, fx.ControlFunc(p.Control))
	loop.RunOnce(context.Background())
}
