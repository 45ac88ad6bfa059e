package game

// Player 入座玩家
type Player struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PlayerSession 玩家在一局中的私有状态
type PlayerSession struct {
	TurnSlot     int            `json:"turn_slot"`
	MovementHand []MovementCard `json:"movement_hand"`
	FigureDeck   []FigureCard   `json:"figure_deck"`
	FigureHand   []FigureCard   `json:"figure_hand"`
}

func (s *PlayerSession) clone() PlayerSession {
	return PlayerSession{
		TurnSlot:     s.TurnSlot,
		MovementHand: append([]MovementCard(nil), s.MovementHand...),
		FigureDeck:   append([]FigureCard(nil), s.FigureDeck...),
		FigureHand:   append([]FigureCard(nil), s.FigureHand...),
	}
}
