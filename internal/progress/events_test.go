package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcaster_FansOutInOrder(t *testing.T) {
	b := NewBroadcaster()
	seen := []string{}
	b.Subscribe(func(e Event) { seen = append(seen, "a:"+e.Message) })
	unsubscribe := b.Subscribe(func(e Event) { seen = append(seen, "b:"+e.Message) })

	Step(b, ToneInfo, "one")
	unsubscribe()
	Step(b, ToneInfo, "two")

	assert.Equal(t, []string{"a:one", "b:one", "a:two"}, seen)
}

func TestBroadcaster_StampsTime(t *testing.T) {
	b := NewBroadcaster()
	rec := &Recorder{}
	b.Subscribe(rec.Report)

	Redirect(b, "go", "http://x/status")

	events := rec.OfKind(EventRedirect)
	assert.Len(t, events, 1)
	assert.False(t, events[0].Time.IsZero())
	assert.Equal(t, "http://x/status", events[0].Target)
}
