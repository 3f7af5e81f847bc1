package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFrameJSON(t *testing.T) {
	f, err := ParseFrameJSON([]byte(`{"event":"typing","data":{"senderId":"u1","receiverId":"u2"}}`))
	require.NoError(t, err)
	require.Equal(t, EventTyping, f.Event)

	var td TypingData
	require.NoError(t, json.Unmarshal(f.Data, &td))
	require.Equal(t, "u1", td.SenderID)
	require.Equal(t, "u2", td.ReceiverID)
}

func TestParseFrameJSONRejectsGarbage(t *testing.T) {
	_, err := ParseFrameJSON([]byte("not json"))
	require.Error(t, err)

	_, err = ParseFrameJSON([]byte(`{"data":{}}`))
	require.Error(t, err, "frame without event must be rejected")
}

func TestEncodeFrameJSONRoundtrip(t *testing.T) {
	raw, err := EncodeFrameJSON(EventOnlineUsers, []string{"u1", "u2"})
	require.NoError(t, err)

	f, err := ParseFrameJSON(raw)
	require.NoError(t, err)
	require.Equal(t, EventOnlineUsers, f.Event)

	var users []string
	require.NoError(t, json.Unmarshal(f.Data, &users))
	require.ElementsMatch(t, []string{"u1", "u2"}, users)
}
