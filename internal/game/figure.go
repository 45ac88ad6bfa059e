package game

import (
	"fmt"
	"math/rand"
)

// FigureCard 图形卡，编号 1..FigureKinds
type FigureCard int

const (
	// HardFigures 困难图形数量，编号 1..HardFigures
	HardFigures = 18
	// EasyFigures 简单图形数量
	EasyFigures = 7
	// FigureKinds 图形种类总数
	FigureKinds = HardFigures + EasyFigures
	// FigureDeckSize 每名玩家初始图形牌堆大小
	FigureDeckSize = 25
	// FigureHandSize 图形手牌目标数量
	FigureHandSize = 3
)

// Hard 是否困难图形
func (f FigureCard) Hard() bool {
	return f >= 1 && f <= HardFigures
}

// Valid 是否合法编号
func (f FigureCard) Valid() bool {
	return f >= 1 && f <= FigureKinds
}

func (f FigureCard) String() string {
	if f.Hard() {
		return fmt.Sprintf("fig%02d", int(f))
	}
	return fmt.Sprintf("fige%02d", int(f)-HardFigures)
}

// NewFigureDeck 生成一副打乱的私人图形牌堆
func NewFigureDeck(r *rand.Rand) []FigureCard {
	deck := make([]FigureCard, FigureDeckSize)
	for i, k := range r.Perm(FigureKinds)[:FigureDeckSize] {
		deck[i] = FigureCard(k + 1)
	}
	return deck
}

// refillFigures 从 deck 随机抽牌直到 hand 达到 FigureHandSize 或 deck 耗尽
func refillFigures(r *rand.Rand, deck, hand []FigureCard) (newDeck, newHand []FigureCard) {
	newDeck = append([]FigureCard(nil), deck...)
	newHand = append([]FigureCard(nil), hand...)
	for len(newHand) < FigureHandSize && len(newDeck) > 0 {
		j := r.Intn(len(newDeck))
		newHand = append(newHand, newDeck[j])
		newDeck = append(newDeck[:j], newDeck[j+1:]...)
	}
	return newDeck, newHand
}
