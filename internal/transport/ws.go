package transport

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// WSSender writes frames to a websocket connection. Writes are
// serialized; after the first failed write the connection is treated
// as gone and later frames are dropped silently.
type WSSender struct {
	conn *websocket.Conn

	mu   sync.Mutex
	dead bool
}

func NewWSSender(conn *websocket.Conn) *WSSender {
	return &WSSender{conn: conn}
}

func (s *WSSender) Send(frame Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dead {
		return nil
	}
	if err := s.conn.WriteJSON(frame); err != nil {
		s.dead = true
		log.Printf("transport: client gone, dropping remaining frames: %v", err)
		return nil
	}
	return nil
}

// Recorder is a Sender that captures frames, for tests and for flows
// that inspect what was sent.
type Recorder struct {
	mu     sync.Mutex
	Frames []Frame
}

func (r *Recorder) Send(frame Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames = append(r.Frames, frame)
	return nil
}

// Text concatenates the text of all delta frames recorded so far.
func (r *Recorder) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out string
	for _, f := range r.Frames {
		if f.Type == TypeDelta {
			out += f.Text
		}
	}
	return out
}

// Types lists the recorded frame types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.Frames))
	for i, f := range r.Frames {
		types[i] = f.Type
	}
	return types
}
