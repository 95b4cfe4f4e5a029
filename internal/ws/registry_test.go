package ws

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu     sync.Mutex
	envs   []Envelope
	fail   bool
	closed bool
}

func (f *fakeConn) Send(env Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.envs = append(f.envs, env)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) received() []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Envelope, len(f.envs))
	copy(out, f.envs)
	return out
}

func TestSendToUserReachesAllDevices(t *testing.T) {
	r := NewRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	r.Connect(a, 1)
	r.Connect(b, 1)

	r.SendToUser(1, echoEnvelope("hello"))

	if len(a.received()) != 1 || len(b.received()) != 1 {
		t.Fatalf("delivered %d/%d envelopes, want 1/1", len(a.received()), len(b.received()))
	}

	r.Disconnect(a)
	r.SendToUser(1, echoEnvelope("again"))

	if len(a.received()) != 1 {
		t.Fatalf("disconnected channel still received envelopes")
	}
	if len(b.received()) != 2 {
		t.Fatalf("sibling channel got %d envelopes, want 2", len(b.received()))
	}
}

func TestFailedSendRemovesOnlyTheFailingConnection(t *testing.T) {
	r := NewRegistry()
	good, bad := &fakeConn{}, &fakeConn{fail: true}
	r.Connect(good, 1)
	r.Connect(bad, 1)

	r.SendToUser(1, echoEnvelope("x"))

	if r.Connections(1) != 1 {
		t.Fatalf("user owns %d connections after failure, want 1", r.Connections(1))
	}
	if !bad.closed {
		t.Fatal("failing connection was not closed")
	}
	if len(good.received()) != 1 {
		t.Fatal("sibling delivery was aborted by the failure")
	}

	r.SendToUser(1, echoEnvelope("y"))
	if len(good.received()) != 2 {
		t.Fatal("surviving connection unreachable after cleanup")
	}
}

func TestDisconnectIdempotentAndBucketCleanup(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}
	r.Connect(c, 5)
	r.Disconnect(c)
	r.Disconnect(c)

	if r.Len() != 0 {
		t.Fatalf("registry holds %d connections, want 0", r.Len())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buckets[5]; ok {
		t.Fatal("empty bucket left behind after disconnect")
	}
}

func TestAnonymousConnectionsAreTracked(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}
	r.Connect(c, Anonymous)

	r.SendPersonal(c, echoEnvelope("ping"))
	if len(c.received()) != 1 {
		t.Fatal("anonymous channel did not receive a personal send")
	}
	if r.Connections(Anonymous) != 1 {
		t.Fatal("anonymous bucket not tracked")
	}
}

func TestConcurrentChurnLeavesRegistryConsistent(t *testing.T) {
	r := NewRegistry()

	const users = 10
	const connsPerUser = 10

	var wg sync.WaitGroup
	all := make(chan *fakeConn, users*connsPerUser)

	for u := int64(1); u <= users; u++ {
		for i := 0; i < connsPerUser; i++ {
			wg.Add(1)
			go func(u int64) {
				defer wg.Done()
				c := &fakeConn{}
				r.Connect(c, u)
				all <- c
			}(u)
		}
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.SendToUser(int64(i%users)+1, echoEnvelope(i))
		}(i)
	}

	wg.Wait()
	close(all)

	conns := make([]*fakeConn, 0, users*connsPerUser)
	for c := range all {
		conns = append(conns, c)
	}

	for _, c := range conns {
		wg.Add(1)
		go func(c *fakeConn) {
			defer wg.Done()
			r.Disconnect(c)
		}(c)
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Fatalf("registry holds %d connections after full churn, want 0", r.Len())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for owner, bucket := range r.buckets {
		if len(bucket) == 0 {
			t.Fatalf("dangling empty bucket for owner %d", owner)
		}
	}
	if len(r.owners) != 0 {
		t.Fatalf("owner index holds %d entries, want 0", len(r.owners))
	}
}

type staticMembers []int64

func (m staticMembers) Members(context.Context, int64) ([]int64, error) { return m, nil }

type staticNames map[int64]string

func (n staticNames) DisplayName(_ context.Context, id int64) (string, error) { return n[id], nil }

func TestBroadcastDirectionPerRecipient(t *testing.T) {
	r := NewRegistry()
	connA, connB, connC := &fakeConn{}, &fakeConn{}, &fakeConn{}
	r.Connect(connA, 1)
	r.Connect(connB, 2)
	r.Connect(connC, 3)

	n := NewNotifier(r, staticMembers{1, 2, 3}, staticNames{2: "U2"})
	n.MessageCommitted(context.Background(), Message{
		ID:        1,
		ChatID:    5,
		SenderID:  2,
		Content:   "hi",
		CreatedAt: time.Now(),
	})

	for conn, want := range map[*fakeConn]string{
		connA: DirectionReceived,
		connB: DirectionSent,
		connC: DirectionReceived,
	} {
		envs := conn.received()
		if len(envs) != 1 {
			t.Fatalf("got %d envelopes, want 1", len(envs))
		}
		push, ok := envs[0].Payload.(ChatPush)
		if !ok {
			t.Fatalf("payload is %T, want ChatPush", envs[0].Payload)
		}
		if push.ChatID != 5 || push.Message.Direction != want || push.Message.Name != "U2" || push.Message.Message != "hi" {
			t.Fatalf("unexpected push %+v, want direction %q", push, want)
		}
	}
}

func TestBroadcastSkipsOfflineMembers(t *testing.T) {
	r := NewRegistry()
	online := &fakeConn{}
	r.Connect(online, 1)

	n := NewNotifier(r, staticMembers{1, 2, 99}, staticNames{1: "U1"})
	n.MessageCommitted(context.Background(), Message{ChatID: 3, SenderID: 1, Content: "yo", CreatedAt: time.Now()})

	if len(online.received()) != 1 {
		t.Fatal("online member did not receive the broadcast")
	}
}

func TestBroadcastSurvivesDeadRecipient(t *testing.T) {
	r := NewRegistry()
	dead := &fakeConn{fail: true}
	alive := &fakeConn{}
	r.Connect(dead, 1)
	r.Connect(alive, 2)

	n := NewNotifier(r, staticMembers{1, 2}, staticNames{1: "U1"})
	n.MessageCommitted(context.Background(), Message{ChatID: 9, SenderID: 1, Content: "m", CreatedAt: time.Now()})

	if len(alive.received()) != 1 {
		t.Fatal("delivery to a dead member aborted the fan-out")
	}
	if r.Connections(1) != 0 {
		t.Fatal("dead connection survived the failed send")
	}
}
