// Package websocket implements frame transport over websocket.
package websocket

import "golang.org/x/net/websocket"

// ReadWriter implements comm.FrameReadWriter. Websocket messages already
// preserve boundaries, so one binary message carries one frame.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadFrame implements comm.FrameReader.
func (p *ReadWriter) ReadFrame() (buf []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &buf)
	return
}

// WriteFrame implements comm.FrameWriter.
func (p *ReadWriter) WriteFrame(buf []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), buf)
}
