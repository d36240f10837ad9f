package client

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/telecortex.go/pkg/status"
	"github.com/robotalks/telecortex.go/pkg/transport/mqtt"
)

// DefaultDiscoverTimeout bounds discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// ControllerInfo is a discovered controller.
type ControllerInfo struct {
	ID   string      `json:"id"`
	Meta status.Meta `json:"meta"`
}

// Discover lists controllers publishing status to the broker, by
// collecting retained meta topics.
func Discover(ctx context.Context, brokerURL string, timeout time.Duration) ([]ControllerInfo, error) {
	b, err := mqtt.NewBrokerFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	token := b.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	defer b.Close()

	infoCh := make(chan ControllerInfo, 16)
	sub := b.Sub("+/"+mqtt.MetaTopic, func(topic string, payload []byte) {
		if len(payload) == 0 {
			return
		}
		info := ControllerInfo{ID: strings.TrimSuffix(topic, "/"+mqtt.MetaTopic)}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("%s: bad meta: %v", topic, err)
			return
		}
		select {
		case infoCh <- info:
		case <-time.After(time.Second):
		}
	})
	defer sub.Close()

	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	found := make(map[string]ControllerInfo)
	deadline := time.After(timeout)
	for {
		select {
		case info := <-infoCh:
			found[info.ID] = info
		case <-deadline:
			return sortInfo(found), nil
		case <-ctx.Done():
			return sortInfo(found), ctx.Err()
		}
	}
}

func sortInfo(found map[string]ControllerInfo) []ControllerInfo {
	list := make([]ControllerInfo, 0, len(found))
	for _, info := range found {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
