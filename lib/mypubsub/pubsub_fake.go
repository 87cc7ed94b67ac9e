package mypubsub

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/MarcGrol/insightsbackend/lib/mylog"
)

// fakePubSub keeps topics in memory and only logs what would have been delivered.
type fakePubSub struct {
	sync.Mutex
	topics map[string]int
	logger mylog.Logger
}

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		New = newFakePubSub
	}
}

func newFakePubSub(c context.Context) (PubSub, func(), error) {
	return &fakePubSub{
		topics: map[string]int{},
		logger: mylog.New("fakePubSub"),
	}, func() {}, nil
}

func (ps *fakePubSub) CreateTopic(c context.Context, topic string) error {
	ps.Lock()
	defer ps.Unlock()

	if _, exists := ps.topics[topic]; !exists {
		ps.topics[topic] = 0
	}
	return nil
}

func (ps *fakePubSub) Publish(c context.Context, topic string, data string) error {
	ps.Lock()
	defer ps.Unlock()

	count, exists := ps.topics[topic]
	if !exists {
		return fmt.Errorf("topic %s does not exist", topic)
	}
	ps.topics[topic] = count + 1

	ps.logger.Log(c, "", mylog.SeverityDebug, "Fake pubsub: message %d on topic %s (%d bytes)", count+1, topic, len(data))
	return nil
}

func (ps *fakePubSub) published(topic string) int {
	ps.Lock()
	defer ps.Unlock()

	return ps.topics[topic]
}
