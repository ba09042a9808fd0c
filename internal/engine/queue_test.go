package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadyQueue_EnqueueOrdersByResumeTime(t *testing.T) {
	q := newReadyQueue()
	a := &Instance{ResumeTime: 5}
	b := &Instance{ResumeTime: 2}
	c := &Instance{ResumeTime: 5}

	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)

	// b (2) comes first; a and c tie at 5, and on a tie the incoming
	// instance goes later, after the ones already queued, so a stays
	// before c.
	require.Equal(t, b, q.Dequeue())
	require.Equal(t, a, q.Dequeue())
	require.Equal(t, c, q.Dequeue())
	require.True(t, q.Empty())
}

func TestReadyQueue_HeadDue(t *testing.T) {
	q := newReadyQueue()
	q.Enqueue(&Instance{ResumeTime: 10})

	require.False(t, q.HeadDue(9))
	require.True(t, q.HeadDue(10))
	require.True(t, q.HeadDue(11))
}

func TestReadyQueue_EmptyQueueHeadNotDue(t *testing.T) {
	q := newReadyQueue()
	require.True(t, q.Empty())
	require.False(t, q.HeadDue(0))
}
