package face

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExpressInterestSatisfiedByRegisteredFilter(t *testing.T) {
	net := NewNetwork()
	consumer := net.NewFace(true)
	producer := net.NewFace(true)

	producer.SetInterestFilter("/example/data", func(interest Interest, reply ReplyFunc) {
		reply(Data{Name: interest.Name, Content: []byte("payload")})
	})

	done := make(chan Data, 1)
	consumer.ExpressInterest(
		Interest{Name: "/example/data/1", Lifetime: time.Second},
		func(d Data) { done <- d },
		func() { t.Fatal("unexpected timeout") },
	)

	select {
	case d := <-done:
		require.Equal(t, "/example/data/1", d.Name)
		require.Equal(t, []byte("payload"), d.Content)
	case <-time.After(time.Second):
		t.Fatal("no response received")
	}
}

func TestExpressInterestTimesOutWithNoProducer(t *testing.T) {
	net := NewNetwork()
	consumer := net.NewFace(true)

	timedOut := make(chan struct{}, 1)
	consumer.ExpressInterest(
		Interest{Name: "/nobody/here", Lifetime: 10 * time.Millisecond},
		func(Data) { t.Fatal("unexpected data") },
		func() { timedOut <- struct{}{} },
	)

	select {
	case <-timedOut:
	case <-time.After(time.Second):
		t.Fatal("timeout handler never fired")
	}
}

func TestDetachStopsReceivingInterests(t *testing.T) {
	net := NewNetwork()
	consumer := net.NewFace(true)
	producer := net.NewFace(true)

	calls := 0
	producer.SetInterestFilter("/example", func(interest Interest, reply ReplyFunc) {
		calls++
		reply(Data{Name: interest.Name})
	})
	producer.Detach()

	timedOut := make(chan struct{}, 1)
	consumer.ExpressInterest(
		Interest{Name: "/example/data", Lifetime: 10 * time.Millisecond},
		func(Data) { t.Fatal("detached face should not answer") },
		func() { timedOut <- struct{}{} },
	)

	select {
	case <-timedOut:
	case <-time.After(time.Second):
		t.Fatal("timeout handler never fired")
	}
	require.Equal(t, 0, calls)
}

func TestPrefixMatchRootPrefixMatchesEverything(t *testing.T) {
	require.True(t, prefixMatch("/", "/anything/at/all"))
	require.True(t, prefixMatch("/a/b", "/a/b"))
	require.True(t, prefixMatch("/a/b", "/a/b/c"))
	require.False(t, prefixMatch("/a/b", "/a/bc"))
}
