package hub

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/wire"
)

func startHub(t *testing.T, snap Snapshot) (*Hub, string) {
	t.Helper()
	h := New(log.New(io.Discard, "", 0))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Serve(w, r, snap)
	}))
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) wire.PushMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wire.PushMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func booked(ids ...catalog.SeatID) Snapshot {
	return func(context.Context) (wire.BookedSet, error) {
		set := wire.BookedSet{}
		for _, id := range ids {
			set[id] = true
		}
		return set, nil
	}
}

func TestServeSendsInitialDataThenUpdates(t *testing.T) {
	h, url := startHub(t, booked(3, 9))
	a := dial(t, url)
	b := dial(t, url)

	for _, ws := range []*websocket.Conn{a, b} {
		msg := readMessage(t, ws)
		assert.Equal(t, wire.TypeInitialData, msg.Type)
		require.NotNil(t, msg.Data)
		assert.Equal(t, []catalog.SeatID{3, 9}, msg.Data.BookedSeats.IDs())
	}
	require.Eventually(t, func() bool { return h.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, h.BroadcastSeats([]catalog.SeatID{11, 12}))
	for _, ws := range []*websocket.Conn{a, b} {
		msg := readMessage(t, ws)
		assert.Equal(t, wire.TypeSeatUpdate, msg.Type)
		assert.Equal(t, []catalog.SeatID{11, 12}, msg.UpdatedSeats())
	}
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	h, url := startHub(t, booked())
	ws := dial(t, url)
	readMessage(t, ws)
	require.Eventually(t, func() bool { return h.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	ws.Close()

	assert.Eventually(t, func() bool { return h.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.BroadcastSeats([]catalog.SeatID{1}))
}

func TestBroadcastSkipsEmptyUpdate(t *testing.T) {
	h, _ := startHub(t, booked())
	assert.Equal(t, 0, h.BroadcastSeats(nil))
}

func TestSnapshotFailureClosesConnection(t *testing.T) {
	h, url := startHub(t, func(context.Context) (wire.BookedSet, error) {
		return nil, errors.New("db down")
	})
	ws := dial(t, url)
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return h.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
