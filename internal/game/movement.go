package game

import "math/rand"

// MovementCard 移动卡类型
type MovementCard int

const (
	MovDiagonalContiguous MovementCard = iota + 1 // 斜向相邻
	MovLinearSkipOne                              // 直线隔一格
	MovLinearContiguous                           // 直线相邻
	MovDiagonalSkipOne                            // 斜向隔一格
	MovLShapeLeft                                 // L 形向左
	MovLShapeRight                                // L 形向右
	MovLinearToEdge                               // 直线到边
)

// MovementKinds 全部移动卡类型
var MovementKinds = []MovementCard{
	MovDiagonalContiguous,
	MovLinearSkipOne,
	MovLinearContiguous,
	MovDiagonalSkipOne,
	MovLShapeLeft,
	MovLShapeRight,
	MovLinearToEdge,
}

const (
	// MovementCopies 每种移动卡的张数
	MovementCopies = 7
	// TotalMovementCards 一局中移动卡的总数
	TotalMovementCards = MovementCopies * 7
	// MovementHandSize 每名玩家持有的移动卡数量
	MovementHandSize = 3
)

var movementNames = map[MovementCard]string{
	MovDiagonalContiguous: "diagonal_contiguous",
	MovLinearSkipOne:      "linear_skip_one",
	MovLinearContiguous:   "linear_contiguous",
	MovDiagonalSkipOne:    "diagonal_skip_one",
	MovLShapeLeft:         "l_shape_left",
	MovLShapeRight:        "l_shape_right",
	MovLinearToEdge:       "linear_to_edge",
}

func (m MovementCard) String() string {
	if name, ok := movementNames[m]; ok {
		return name
	}
	return "unknown"
}

// NewMovementPool 生成打乱后的完整移动卡牌堆
func NewMovementPool(r *rand.Rand) []MovementCard {
	pool := make([]MovementCard, 0, TotalMovementCards)
	for _, kind := range MovementKinds {
		for i := 0; i < MovementCopies; i++ {
			pool = append(pool, kind)
		}
	}
	r.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}

// drawMovement 从 pool 中随机抽出 n 张，调用方保证 len(pool) >= n
func drawMovement(r *rand.Rand, pool []MovementCard, n int) (drawn, rest []MovementCard) {
	rest = append([]MovementCard(nil), pool...)
	drawn = make([]MovementCard, 0, n)
	for i := 0; i < n; i++ {
		j := r.Intn(len(rest))
		drawn = append(drawn, rest[j])
		last := len(rest) - 1
		rest[j] = rest[last]
		rest = rest[:last]
	}
	return drawn, rest
}
