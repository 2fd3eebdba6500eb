package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents(t *testing.T) {
	require.True(t, EventInitialize())
	t.Cleanup(func() { _ = EventShutdown() })

	var got []string
	first, second := new(int), new(int)
	record := func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		got = append(got, data.Name)
		return listener == first
	}

	assert.False(t, EventFire(EVENT_CODE_ASSET_DIRTIED, nil, EventContext{Name: "none"}))

	require.True(t, EventRegister(EVENT_CODE_ASSET_DIRTIED, second, record))
	require.True(t, EventRegister(EVENT_CODE_ASSET_DIRTIED, first, record))
	assert.False(t, EventRegister(EVENT_CODE_ASSET_DIRTIED, first, record))

	assert.True(t, EventFire(EVENT_CODE_ASSET_DIRTIED, nil, EventContext{Name: "texture.Player"}))
	assert.Equal(t, []string{"texture.Player", "texture.Player"}, got)

	require.True(t, EventUnregister(EVENT_CODE_ASSET_DIRTIED, first))
	assert.False(t, EventUnregister(EVENT_CODE_ASSET_DIRTIED, first))
	got = nil
	assert.False(t, EventFire(EVENT_CODE_ASSET_DIRTIED, nil, EventContext{Name: "font.Default"}))
	assert.Equal(t, []string{"font.Default"}, got)
}
