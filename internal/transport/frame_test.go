package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestFrameJSONShapes(t *testing.T) {
	cases := []struct {
		frame Frame
		want  []string
		no    []string
	}{
		{
			frame: Delta("hello"),
			want:  []string{`"type":"delta"`, `"statusCode":200`, `"text":"hello"`, `"format":"markdown"`},
			no:    []string{`"sources"`},
		},
		{
			frame: Error(404, "not found"),
			want:  []string{`"type":"error"`, `"statusCode":404`, `"text":"not found"`},
			no:    []string{`"format"`},
		},
		{
			frame: End(200),
			want:  []string{`"type":"end"`, `"statusCode":200`},
			no:    []string{`"text"`, `"sources"`},
		},
		{
			frame: Sources([]SourceRef{{URL: "https://x/a", Label: "A", Page: 2}}, "block"),
			want:  []string{`"type":"sources"`, `"url":"https://x/a"`, `"label":"A"`, `"page":2`, `"text":"block"`},
		},
	}

	for _, tc := range cases {
		data, err := json.Marshal(tc.frame)
		if err != nil {
			t.Fatalf("marshal %+v: %v", tc.frame, err)
		}
		s := string(data)
		for _, want := range tc.want {
			if !strings.Contains(s, want) {
				t.Errorf("%s frame missing %s: %s", tc.frame.Type, want, s)
			}
		}
		for _, no := range tc.no {
			if strings.Contains(s, no) {
				t.Errorf("%s frame should omit %s: %s", tc.frame.Type, no, s)
			}
		}
	}
}

func TestSendErrorEndOrder(t *testing.T) {
	rec := &Recorder{}
	SendErrorEnd(rec, 400, "bad request")

	types := rec.Types()
	if len(types) != 2 || types[0] != TypeError || types[1] != TypeEnd {
		t.Fatalf("frame order = %v, want [error end]", types)
	}
	if rec.Frames[1].StatusCode != 400 {
		t.Errorf("end statusCode = %d, want 400", rec.Frames[1].StatusCode)
	}
}

func TestRecorderText(t *testing.T) {
	rec := &Recorder{}
	rec.Send(Delta("Hello "))
	rec.Send(Sources(nil, "ignored"))
	rec.Send(Delta("world"))

	if got := rec.Text(); got != "Hello world" {
		t.Errorf("Text = %q", got)
	}
}

func TestWSSenderDeliversFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan Frame, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			var f Frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			received <- f
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	sender := NewWSSender(conn)
	if err := sender.Send(Delta("hi")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got := <-received
	if got.Type != TypeDelta || got.Text != "hi" {
		t.Errorf("received %+v", got)
	}

	// A closed connection makes later sends silent no-ops.
	conn.Close()
	if err := sender.Send(Delta("after close")); err != nil {
		t.Errorf("Send after close = %v, want nil", err)
	}
	if err := sender.Send(End(200)); err != nil {
		t.Errorf("Send after dead = %v, want nil", err)
	}
}
