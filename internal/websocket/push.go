package websocket

// HubPusher adapts the hub to the per-user push sink the services expect.
// Frames go out as {"type": event, "data": payload}.
type HubPusher struct {
	hub *Hub
}

func NewHubPusher(hub *Hub) *HubPusher {
	return &HubPusher{hub: hub}
}

func (p *HubPusher) Push(userID string, event string, payload interface{}) {
	p.hub.BroadcastToUser(userID, map[string]interface{}{
		"type": event,
		"data": payload,
	})
}
