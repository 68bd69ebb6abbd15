// Package ws streams policy events to WebSocket clients.
//
// Every connection subscribes to the events bus and receives url_blocked,
// mode_changed and rules_reloaded events as they are published. Slow clients
// miss events rather than stall the engine.
//
// Message Types (Client → Server):
//   - ping: keep-alive ping
//   - subscribe: replace the kind filter; message is a comma-separated list
//
// Message Types (Server → Client):
//   - system: connection established, lists the active kinds
//   - event: one bus event
//   - subscribed: filter updated
//   - pong: reply to ping
//   - error: unknown message
//
// Example Usage:
//
//	handler := ws.NewHandler(engine.Bus(), logger)
//	router.GET("/ws", handler.HandleConnection)
package ws
