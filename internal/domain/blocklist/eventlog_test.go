package blocklist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogEvictsOldestFirst(t *testing.T) {
	log := NewEventLog(3)
	for i := 0; i < 5; i++ {
		log.Append(BlockEvent{URL: fmt.Sprintf("https://e%d.example", i)})
	}

	events := log.Events(0)
	require.Len(t, events, 3)
	assert.Equal(t, "https://e2.example", events[0].URL)
	assert.Equal(t, "https://e4.example", events[2].URL)
	assert.Equal(t, 3, log.Len())
	assert.Equal(t, uint64(5), log.Total())
}

func TestEventLogLimit(t *testing.T) {
	log := NewEventLog(10)
	for i := 0; i < 4; i++ {
		log.Append(BlockEvent{URL: fmt.Sprintf("https://e%d.example", i)})
	}

	events := log.Events(2)
	require.Len(t, events, 2)
	assert.Equal(t, "https://e2.example", events[0].URL)
	assert.Equal(t, "https://e3.example", events[1].URL)
}

func TestEventLogClear(t *testing.T) {
	log := NewEventLog(0)
	log.Append(BlockEvent{URL: "https://a.example"})
	log.Clear()

	assert.Empty(t, log.Events(0))
	assert.Equal(t, uint64(1), log.Total())
}
