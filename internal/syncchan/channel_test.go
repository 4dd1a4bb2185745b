package syncchan

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/clock"
)

func TestPushURL(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"https://tickets.example.com", "wss://tickets.example.com/ws"},
		{"https://tickets.example.com/booking/?x=1#top", "wss://tickets.example.com/ws"},
		{"ws://10.0.0.2:9000/other", "ws://10.0.0.2:9000/ws"},
	}
	for _, tt := range tests {
		got, err := PushURL(tt.origin)
		require.NoError(t, err, tt.origin)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"ftp://host", "localhost:8080", "http://"} {
		_, err := PushURL(bad)
		assert.Error(t, err, bad)
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// pushServer upgrades every request, writes msgs and closes the socket.
func pushServer(t *testing.T, conns *int32, msgs ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		atomic.AddInt32(conns, 1)
		for _, m := range msgs {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	u, err := PushURL(srv.URL)
	require.NoError(t, err)
	return u
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func next(t *testing.T, ch *Channel) Event {
	t.Helper()
	select {
	case ev, ok := <-ch.Events():
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func expectState(t *testing.T, ch *Channel, want State) {
	t.Helper()
	ev := next(t, ch)
	require.Equal(t, KindStateChange, ev.Kind, "got %+v", ev)
	require.Equal(t, want, ev.State)
}

func expectSilence(t *testing.T, ch *Channel) {
	t.Helper()
	select {
	case ev := <-ch.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChannelDecodesMessagesInOrder(t *testing.T) {
	var conns int32
	srv := pushServer(t, &conns,
		`{"type":"initial_data","data":{"bookedSeats":{"5":true,"6":false}}}`,
		`{"type":"price_change","amount":3}`,
		`not json`,
		`{"type":"seat_update","seats":[9,"10"]}`,
		`{"type":"seat_update","seatIds":[11]}`,
	)
	fc := clock.Fake(time.Unix(0, 0))
	ch := New(wsURL(t, srv), WithClock(fc), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ch.Run(ctx)

	expectState(t, ch, StateConnecting)
	expectState(t, ch, StateOpen)

	ev := next(t, ch)
	assert.Equal(t, KindInitialData, ev.Kind)
	assert.Equal(t, []catalog.SeatID{5}, ev.Booked)

	ev = next(t, ch)
	assert.Equal(t, KindSeatUpdate, ev.Kind)
	assert.Equal(t, []catalog.SeatID{9, 10}, ev.Seats)

	ev = next(t, ch)
	assert.Equal(t, KindSeatUpdate, ev.Kind)
	assert.Equal(t, []catalog.SeatID{11}, ev.Seats)

	expectState(t, ch, StateClosed)
}

func TestChannelReconnectsAfterFixedDelay(t *testing.T) {
	var conns int32
	srv := pushServer(t, &conns, `{"type":"initial_data","data":{"bookedSeats":{}}}`)
	fc := clock.Fake(time.Unix(0, 0))
	ch := New(wsURL(t, srv), WithClock(fc), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()

	expectState(t, ch, StateConnecting)
	expectState(t, ch, StateOpen)
	assert.Equal(t, KindInitialData, next(t, ch).Kind)
	expectState(t, ch, StateClosed)

	fc.WaitForTimers(1)
	fc.Advance(RetryDelay - time.Millisecond)
	expectSilence(t, ch)
	assert.Equal(t, int32(1), atomic.LoadInt32(&conns))

	fc.Advance(time.Millisecond)
	expectState(t, ch, StateConnecting)
	expectState(t, ch, StateOpen)
	assert.Equal(t, KindInitialData, next(t, ch).Kind, "a fresh initial_data follows every reconnect")
	assert.Equal(t, int32(2), atomic.LoadInt32(&conns))

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestChannelRetriesRefusedConnection(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(t, srv)
	srv.Close()

	fc := clock.Fake(time.Unix(0, 0))
	ch := New(url, WithClock(fc), WithLogger(quietLogger()))
	done := make(chan error, 1)
	go func() { done <- ch.Run(context.Background()) }()

	expectState(t, ch, StateConnecting)
	expectState(t, ch, StateClosed)
	fc.WaitForTimers(1)
	fc.Advance(RetryDelay)
	expectState(t, ch, StateConnecting)
	expectState(t, ch, StateClosed)
	fc.WaitForTimers(1)

	require.NoError(t, ch.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.Zero(t, fc.PendingCount(), "Close cancels the pending reconnect")
	assert.Equal(t, StateClosed, ch.State())
	require.NoError(t, ch.Close(), "Close is idempotent")
}

func TestChannelDebugLogsIgnoredTypes(t *testing.T) {
	var conns int32
	srv := pushServer(t, &conns, `{"type":"price_change"}`)
	var buf strings.Builder
	fc := clock.Fake(time.Unix(0, 0))
	ch := New(wsURL(t, srv), WithClock(fc), WithLogger(log.New(&buf, "", 0)), WithDebug(true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ch.Run(ctx)

	expectState(t, ch, StateConnecting)
	expectState(t, ch, StateOpen)
	expectState(t, ch, StateClosed)
	cancel()
	for range ch.Events() {
	}
	assert.Contains(t, buf.String(), `ignoring message type "price_change"`)
}

// silentListener accepts TCP connections and never answers the handshake.
func silentListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var held []net.Conn
	accepted := make(chan struct{})
	go func() {
		defer close(accepted)
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			held = append(held, conn)
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		<-accepted
		for _, c := range held {
			_ = c.Close()
		}
	})
	return "ws://" + ln.Addr().String() + "/ws"
}

func TestCloseAbortsStalledDial(t *testing.T) {
	dialer := &websocket.Dialer{HandshakeTimeout: time.Minute}
	ch := New(silentListener(t), WithDialer(dialer), WithLogger(quietLogger()))

	done := make(chan error, 1)
	go func() { done <- ch.Run(context.Background()) }()
	expectState(t, ch, StateConnecting)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, ch.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run still dialing after Close")
	}
}

func TestRetryDelayOption(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(t, srv)
	srv.Close()

	fc := clock.Fake(time.Unix(0, 0))
	ch := New(url, WithClock(fc), WithLogger(quietLogger()), WithRetryDelay(500*time.Millisecond))
	defer ch.Close()
	go ch.Run(context.Background())

	expectState(t, ch, StateConnecting)
	expectState(t, ch, StateClosed)
	fc.WaitForTimers(1)
	fc.Advance(500 * time.Millisecond)
	expectState(t, ch, StateConnecting)
}

// A seat_update with one bad id still delivers the good ones.
func TestSeatUpdateSkipsInvalidIDs(t *testing.T) {
	var conns int32
	srv := pushServer(t, &conns, `{"type":"seat_update","seats":[5,"x",{}]}`)
	var buf strings.Builder
	fc := clock.Fake(time.Unix(0, 0))
	ch := New(wsURL(t, srv), WithClock(fc), WithLogger(log.New(&buf, "", 0)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ch.Run(ctx)

	expectState(t, ch, StateConnecting)
	expectState(t, ch, StateOpen)
	ev := next(t, ch)
	assert.Equal(t, KindSeatUpdate, ev.Kind)
	assert.Equal(t, []catalog.SeatID{5}, ev.Seats)
	expectState(t, ch, StateClosed)
	cancel()
	for range ch.Events() {
	}
	assert.Contains(t, buf.String(), "invalid seat ids skipped")
}
