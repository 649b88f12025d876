package protocol

// ParticipantView is the roster entry as clients see it.
type ParticipantView struct {
	ID             string  `json:"id"`
	DisplayName    string  `json:"display_name"`
	Color          string  `json:"color"`
	IsHost         bool    `json:"is_host"`
	TerritoryCount int     `json:"territory_count"`
	AvgTypingSpeed float64 `json:"avg_typing_speed"`
}

// TerritoryView carries the display payload through unchanged; the
// server never interprets Name/Phrase/X/Y.
type TerritoryView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phrase  string `json:"phrase"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OwnerID string `json:"owner_id,omitempty"`
}

type SessionView struct {
	ID                 string            `json:"id"`
	Participants       []ParticipantView `json:"participants"`
	Territories        []TerritoryView   `json:"territories"`
	Status             string            `json:"status"`
	CountdownRemaining int               `json:"countdown_remaining,omitempty"`
	ClockRemaining     int               `json:"clock_remaining,omitempty"`
}
