package p2pnet

import "testing"

func TestQueueDropTail(t *testing.T) {
	q := CreateQueue(1)

	p1 := CreatePacket(10, nil)
	if ok := q.Enqueue(p1); !ok {
		t.Fatalf("first enqueue should succeed")
	}
	if q.Len() != 1 {
		t.Fatalf("expected length 1, got %d", q.Len())
	}

	p2 := CreatePacket(10, nil)
	if ok := q.Enqueue(p2); ok {
		t.Fatalf("second enqueue should be dropped when queue is full")
	}
	if q.Dropped() != 1 {
		t.Fatalf("expected 1 drop, got %d", q.Dropped())
	}

	got, ok := q.Dequeue()
	if !ok || got != p1 {
		t.Fatalf("expected to dequeue p1 (FIFO order)")
	}
	if !q.Empty() {
		t.Fatalf("expected queue empty after dequeuing its only packet")
	}
}

func TestQueueUnbounded(t *testing.T) {
	q := CreateQueue(Unbounded)
	for i := 0; i < 1000; i++ {
		if ok := q.Enqueue(CreatePacket(1, nil)); !ok {
			t.Fatalf("unbounded queue should never drop, failed at packet %d", i)
		}
	}
	if q.Len() != 1000 {
		t.Fatalf("expected 1000 queued packets, got %d", q.Len())
	}
}

func TestQueueDequeueEmpty(t *testing.T) {
	q := CreateQueue(Unbounded)
	if _, ok := q.Dequeue(); ok {
		t.Fatalf("dequeue on empty queue should report false")
	}
}
