// Package status publishes controller status to an MQTT broker.
//
// Under prefix/controller-id/ it maintains a retained "meta" topic
// with JSON metadata, cleared by a will when the controller goes away,
// and periodically publishes protobuf encoded ControllerStatus on
// "status".
package status

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/telecortex.go/pkg/framework"
	"github.com/robotalks/telecortex.go/pkg/transport/mqtt"
)

// Source provides the current status.
type Source interface {
	Status() *ControllerStatus
}

// SourceFunc is the func form of Source.
type SourceFunc func() *ControllerStatus

// Status implements Source.
func (f SourceFunc) Status() *ControllerStatus {
	return f()
}

// Meta describes the controller.
type Meta struct {
	Description string   `json:"description,omitempty"`
	Transport   string   `json:"transport,omitempty"`
	Panels      []string `json:"panels,omitempty"`
	Pixels      []int    `json:"pixels,omitempty"`
}

// Encode serializes a status.
func Encode(st *ControllerStatus) ([]byte, error) {
	return proto.Marshal(st)
}

// Decode parses a status.
func Decode(data []byte) (*ControllerStatus, error) {
	st := &ControllerStatus{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Publisher publishes status periodically.
type Publisher struct {
	Broker       *mqtt.Broker
	ControllerID string
	Interval     time.Duration
	Source       Source

	metaJSON    []byte
	lastPublish time.Time
}

// NewPublisher creates a Publisher.
func NewPublisher(brokerURL, controllerID string, meta Meta, source Source) (*Publisher, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+controllerID+"/"+mqtt.MetaTopic, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("cortex:" + controllerID)
	}
	p := &Publisher{
		Broker:       mqtt.NewBroker(opts, topicPrefix),
		ControllerID: controllerID,
		Source:       source,
		metaJSON:     metaJSON,
	}
	p.Broker.OnConnect = func(*mqtt.Broker) { p.publishMeta(p.metaJSON) }
	return p, nil
}

// AddToLoop implements LoopAdder, the Publisher runs as well.
func (p *Publisher) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, p)
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "status"
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	p.Broker.Connect()
	<-ctx.Done()
	p.publishMeta(nil).WaitTimeout(time.Second)
	p.Broker.Close()
	return nil
}

// Control implements Controller.
func (p *Publisher) Control(cc fx.ControlContext) error {
	if p.Interval <= 0 || cc.Time().Sub(p.lastPublish) < p.Interval {
		return nil
	}
	p.lastPublish = cc.Time()
	st := p.Source.Status()
	st.ControllerId = p.ControllerID
	st.Timestamp = cc.Time().UnixNano()
	data, err := Encode(st)
	if err != nil {
		return err
	}
	if !p.Broker.Client.IsConnected() {
		glog.V(2).Info("status skipped, not connected")
		return nil
	}
	p.Broker.Pub(p.ControllerID+"/"+mqtt.StatusTopic, data)
	return nil
}

func (p *Publisher) publishMeta(payload []byte) paho.Token {
	return p.Broker.PubWith(p.ControllerID+"/"+mqtt.MetaTopic, payload, 1, true)
}
