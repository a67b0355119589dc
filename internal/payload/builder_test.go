package payload_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-firebase-push/internal/payload"
	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	return doc
}

func TestBuild_AlertMessage(t *testing.T) {
	body, err := payload.Build("T1", push.Parameters{
		Title: push.String("Hi"),
		Body:  push.String("There"),
	})
	require.NoError(t, err)

	doc := decode(t, body)
	assert.Equal(t, "T1", doc["to"])
	assert.Equal(t, "high", doc["priority"])
	assert.Equal(t, map[string]any{"title": "Hi", "body": "There"}, doc["notification"])
	assert.NotContains(t, doc, "data")
	assert.NotContains(t, doc, "content_available")
}

func TestBuild_OptionalFields(t *testing.T) {
	body, err := payload.Build("T1", push.Parameters{
		Title:            push.String("Hi"),
		Body:             push.String("There"),
		Icon:             push.String("ic_alert"),
		Sound:            push.String("ping.caf"),
		Badge:            7,
		ClickAction:      push.String("OPEN_ORDER"),
		ContentAvailable: push.Bool(true),
		Data:             map[string]any{"order_id": "42"},
	})
	require.NoError(t, err)

	doc := decode(t, body)
	assert.Equal(t, map[string]any{
		"title":        "Hi",
		"body":         "There",
		"icon":         "ic_alert",
		"sound":        "ping.caf",
		"badge":        float64(7),
		"click_action": "OPEN_ORDER",
	}, doc["notification"])
	assert.Equal(t, true, doc["content_available"])
	assert.Equal(t, map[string]any{"order_id": "42"}, doc["data"])
}

func TestBuild_StringBadge(t *testing.T) {
	body, err := payload.Build("T1", push.Parameters{
		Title: push.String("Hi"),
		Body:  push.String("There"),
		Badge: "3",
	})
	require.NoError(t, err)

	notification := decode(t, body)["notification"].(map[string]any)
	assert.Equal(t, "3", notification["badge"])
}

func TestBuild_DataOnly(t *testing.T) {
	body, err := payload.Build("T2", push.Parameters{
		Icon:             push.String("ignored-without-alert"),
		ContentAvailable: push.Bool(true),
		Data:             map[string]any{"sync": true},
	})
	require.NoError(t, err)

	doc := decode(t, body)
	assert.Equal(t, "T2", doc["to"])
	assert.Equal(t, "high", doc["priority"])
	assert.NotContains(t, doc, "notification")
	assert.Equal(t, true, doc["content_available"])
	assert.Equal(t, map[string]any{"sync": true}, doc["data"])
}

func TestBuild_ReservedDataDroppedFromAlert(t *testing.T) {
	body, err := payload.Build("T1", push.Parameters{
		Title: push.String("Hi"),
		Body:  push.String("There"),
		Data:  map[string]any{"google.sent_time": 1},
	})
	require.NoError(t, err)

	doc := decode(t, body)
	assert.Contains(t, doc, "notification")
	assert.NotContains(t, doc, "data")
}

func TestBuild_PriorityOverride(t *testing.T) {
	t.Run("Override beats default", func(t *testing.T) {
		body, err := payload.Build("T1", push.Parameters{
			Title:    push.String("Hi"),
			Body:     push.String("There"),
			Priority: push.String("normal"),
		})
		require.NoError(t, err)
		assert.Equal(t, "normal", decode(t, body)["priority"])
	})

	t.Run("Override beats configured default", func(t *testing.T) {
		body, err := payload.Build("T1", push.Parameters{
			Title:    push.String("Hi"),
			Body:     push.String("There"),
			Priority: push.String("normal"),
		}, payload.WithDefaultPriority("high"))
		require.NoError(t, err)
		assert.Equal(t, "normal", decode(t, body)["priority"])
	})

	t.Run("Configured default replaces high", func(t *testing.T) {
		body, err := payload.Build("T1", push.Parameters{
			Title: push.String("Hi"),
			Body:  push.String("There"),
		}, payload.WithDefaultPriority("normal"))
		require.NoError(t, err)
		assert.Equal(t, "normal", decode(t, body)["priority"])
	})
}

func TestBuild_Rejected(t *testing.T) {
	testCases := []struct {
		name   string
		params push.Parameters
	}{
		{name: "Empty", params: push.Parameters{}},
		{name: "Title only", params: push.Parameters{Title: push.String("Hi")}},
		{name: "Reserved data only", params: push.Parameters{Data: map[string]any{"from": "me"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := payload.Build("T1", tc.params)
			assert.ErrorIs(t, err, payload.ErrRejected)
			assert.Nil(t, body)
		})
	}
}
