package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&ToggleParticipantRequest{ItemID: "item-1", UserID: "user-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"item_id":"item-1","user_id":"user-1"}`, string(data))

	var empty GetCurrentUserRequest
	require.NoError(t, codec.Unmarshal(nil, &empty))

	var req ToggleParticipantRequest
	err = codec.Unmarshal([]byte(`{"item_id":`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ToggleParticipantRequest")
}
