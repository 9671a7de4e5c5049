package stream

import "errors"

var (
	// ErrDecode marks a frame that is not a valid NetworkAlert. Such frames
	// are dropped and never reach listeners.
	ErrDecode = errors.New("stream: malformed alert payload")

	// ErrTransport marks a dial failure or an abnormal read error.
	ErrTransport = errors.New("stream: transport error")

	// ErrConnectionClosed marks an unsolicited close of the live connection.
	ErrConnectionClosed = errors.New("stream: connection closed")

	// ErrRetryExhausted is reported once the reconnect budget is spent.
	// Only a caller-initiated Connect recovers from it.
	ErrRetryExhausted = errors.New("stream: reconnect attempts exhausted")

	// ErrSuperseded is returned by a Connect whose dial finished after a
	// later Connect or Disconnect took over.
	ErrSuperseded = errors.New("stream: connect superseded")
)
