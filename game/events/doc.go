// Package events carries game state changes from the service layer to
// whoever wants to watch them, such as the websocket hub.
//
// The bus is in-process; events are JSON encoded so the same payloads could
// travel over any watermill transport.
package events
