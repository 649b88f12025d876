package session

import (
	"github.com/typeclash/typeclash-backend/internal/game"
	"github.com/typeclash/typeclash-backend/pkg/protocol"
)

func participantView(p *game.Participant) protocol.ParticipantView {
	return protocol.ParticipantView{
		ID:             p.ID,
		DisplayName:    p.DisplayName,
		Color:          p.Color(),
		IsHost:         p.IsHost,
		TerritoryCount: p.TerritoryCount,
		AvgTypingSpeed: p.AvgTypingSpeed(),
	}
}

func rosterView(ps []*game.Participant) []protocol.ParticipantView {
	out := make([]protocol.ParticipantView, len(ps))
	for i, p := range ps {
		out[i] = participantView(p)
	}
	return out
}

func territoryView(t *game.Territory) protocol.TerritoryView {
	return protocol.TerritoryView{
		ID:      t.ID,
		Name:    t.Display.Name,
		Phrase:  t.Display.Phrase,
		X:       t.Display.X,
		Y:       t.Display.Y,
		OwnerID: t.OwnerID,
	}
}

func sessionView(st *game.State) protocol.SessionView {
	territories := make([]protocol.TerritoryView, len(st.Territories))
	for i, t := range st.Territories {
		territories[i] = territoryView(t)
	}
	return protocol.SessionView{
		ID:                 st.ID,
		Participants:       rosterView(st.Participants),
		Territories:        territories,
		Status:             string(st.Status),
		CountdownRemaining: st.CountdownRemaining,
		ClockRemaining:     st.ClockRemaining,
	}
}
