package feed

// Event is a connection event for Controller.Dispatch. Every event carries
// the session it belongs to; events from an older session are ignored.
type Event interface {
	session() uint64
}

// Opened reports a successful dial.
type Opened struct {
	Session uint64
	Conn    Conn
}

// Message carries one raw inbound frame.
type Message struct {
	Session uint64
	Data    []byte
}

// Errored reports a dial or read failure. It never triggers a reconnect
// by itself; the Closed that follows does.
type Errored struct {
	Session uint64
	Err     error
}

// Closed reports the end of a connection.
type Closed struct {
	Session uint64
}

func (e Opened) session() uint64  { return e.Session }
func (e Message) session() uint64 { return e.Session }
func (e Errored) session() uint64 { return e.Session }
func (e Closed) session() uint64  { return e.Session }
