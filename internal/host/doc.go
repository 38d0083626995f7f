// Package host speaks the Stream Deck plugin protocol over a websocket.
//
// The Stream Deck application launches the plugin with a port, a plugin UUID
// and a registration event name. The plugin dials ws://127.0.0.1:<port>,
// sends the registration message and then exchanges JSON events: the host
// pushes willAppear, dialRotate and friends, and the plugin answers with
// setFeedback, setSettings and sendToPropertyInspector.
//
// [Conn] serialises all writes, so its send methods may be called from any
// goroutine while [Conn.Listen] reads on another.
package host
