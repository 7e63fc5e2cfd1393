package dto

type LogEventRequest struct {
	EventType string                 `json:"event_type"`
	Source    string                 `json:"source"`
	EntityID  string                 `json:"entity_id"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type LogEventResponse struct {
	OK      bool `json:"ok"`
	Skipped bool `json:"skipped,omitempty"`
}
