// Package mqtt carries the line protocol over an MQTT broker.
//
// A transport URL looks like mqtt://host:port/prefix/controller-id.
// The controller subscribes prefix/controller-id/gcode and publishes
// responses to prefix/controller-id/resp. The host does the reverse.
package mqtt

import (
	"container/list"
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Broker)

// Broker wraps the MQTT client with topic prefix and local fan-out of
// subscriptions.
type Broker struct {
	Client       paho.Client
	TopicPrefix  string
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	subsLock     sync.RWMutex
	subs         map[string]*list.List
	wildcardSubs map[string]*list.List
}

// Subscription is a subscribed topic.
type Subscription struct {
	Token paho.Token

	broker  *Broker
	elm     *list.Element
	topic   string
	handler Handler
}

// MatchTopic matches topic with pattern.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	if len(tokensP) > len(tokensT) {
		return false
	}
	for i, token := range tokensP {
		if token == "+" {
			continue
		}
		if token == "#" && i+1 == len(tokensP) {
			break
		}
		if token != tokensT[i] {
			return false
		}
	}
	return len(tokensP) == len(tokensT) || tokensP[len(tokensP)-1] == "#"
}

// ClientOptionsFromURL creates ClientOptions from URL.
// The path of the URL becomes the topic prefix.
func ClientOptionsFromURL(brokerURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, "", err
	}
	return clientOptions(u), strings.TrimPrefix(u.Path, "/"), nil
}

func clientOptions(u *url.URL) *paho.ClientOptions {
	server := u.Scheme
	if server == "" || server == "mqtt" {
		server = "tcp"
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(server + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts
}

// NewBroker creates a Broker.
func NewBroker(options *paho.ClientOptions, topicPrefix string) *Broker {
	b := &Broker{TopicPrefix: topicPrefix}
	options.SetOnConnectHandler(b.onConnect)
	options.SetConnectionLostHandler(b.onConnectionLost)
	b.Client = paho.NewClient(options)
	return b
}

// NewBrokerFromURL creates Broker from URL.
func NewBrokerFromURL(brokerURL string) (*Broker, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewBroker(opts, topicPrefix), nil
}

// Connect connects the client.
func (b *Broker) Connect() paho.Token {
	return b.Client.Connect()
}

// Close implements io.Closer.
func (b *Broker) Close() error {
	b.Client.Disconnect(250)
	return nil
}

// Sub subscribes a topic relative to the prefix.
func (b *Broker) Sub(topic string, handler Handler) *Subscription {
	wildcard := strings.Contains(topic, "+") || strings.HasSuffix(topic, "#")
	b.subsLock.Lock()
	if b.subs == nil {
		b.subs = make(map[string]*list.List)
		b.wildcardSubs = make(map[string]*list.List)
	}
	subs := b.subs
	if wildcard {
		subs = b.wildcardSubs
	}
	lst := subs[topic]
	newSub := lst == nil
	if newSub {
		lst = list.New()
		subs[topic] = lst
	}
	sub := &Subscription{broker: b, topic: topic, handler: handler}
	sub.elm = lst.PushBack(sub)
	b.subsLock.Unlock()

	if newSub {
		glog.V(2).Infof("SUB %q", b.TopicPrefix+topic)
		sub.Token = b.Client.Subscribe(b.TopicPrefix+topic, 1, b.dispatch)
	} else {
		sub.Token = &paho.DummyToken{}
	}
	return sub
}

// Pub publishes to a topic relative to the prefix.
func (b *Broker) Pub(topic string, payload []byte) paho.Token {
	return b.PubWith(topic, payload, 1, false)
}

// PubWith publishes with QoS and retain settings.
func (b *Broker) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return b.Client.Publish(b.TopicPrefix+topic, qos, retain, payload)
}

func (b *Broker) resubscribe() paho.Token {
	filters := make(map[string]byte)
	b.subsLock.RLock()
	for topic := range b.subs {
		filters[b.TopicPrefix+topic] = 1
	}
	for topic := range b.wildcardSubs {
		filters[b.TopicPrefix+topic] = 1
	}
	b.subsLock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	return b.Client.SubscribeMultiple(filters, b.dispatch)
}

func (b *Broker) onConnect(paho.Client) {
	glog.Info("MQTT connected")
	b.resubscribe()
	if h := b.OnConnect; h != nil {
		h(b)
	}
}

func (b *Broker) onConnectionLost(_ paho.Client, err error) {
	glog.Warningf("MQTT connection lost: %v", err)
	if h := b.OnDisconnect; h != nil {
		h(b)
	}
}

func (b *Broker) handlers(topic string) []Handler {
	var handlers []Handler
	b.subsLock.RLock()
	defer b.subsLock.RUnlock()
	if lst := b.subs[topic]; lst != nil {
		for elm := lst.Front(); elm != nil; elm = elm.Next() {
			handlers = append(handlers, elm.Value.(*Subscription).handler)
		}
	}
	for pattern, lst := range b.wildcardSubs {
		if MatchTopic(topic, pattern) {
			for elm := lst.Front(); elm != nil; elm = elm.Next() {
				handlers = append(handlers, elm.Value.(*Subscription).handler)
			}
		}
	}
	return handlers
}

func (b *Broker) dispatch(_ paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, b.TopicPrefix) {
		return
	}
	topic = topic[len(b.TopicPrefix):]
	glog.V(3).Infof("RCV %q", topic)
	payload := msg.Payload()
	for _, h := range b.handlers(topic) {
		h(topic, payload)
	}
}

// Close unsubscribes the handler.
func (s *Subscription) Close() error {
	b := s.broker
	var unsub bool
	b.subsLock.Lock()
	for _, subs := range []map[string]*list.List{b.subs, b.wildcardSubs} {
		if lst := subs[s.topic]; lst != nil {
			lst.Remove(s.elm)
			if unsub = lst.Len() == 0; unsub {
				delete(subs, s.topic)
			}
			break
		}
	}
	b.subsLock.Unlock()
	if !unsub {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", b.TopicPrefix+s.topic)
	token := b.Client.Unsubscribe(b.TopicPrefix + s.topic)
	token.Wait()
	return token.Error()
}
