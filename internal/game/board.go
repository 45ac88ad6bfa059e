package game

import "math/rand"

const (
	// BoardSize 棋盘边长
	BoardSize = 6
	// BoardTiles 棋盘格子总数
	BoardTiles = BoardSize * BoardSize
)

// Color 格子颜色
type Color string

const (
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
)

// Colors 棋盘使用的全部颜色，每种颜色占 BoardTiles/len(Colors) 格
var Colors = []Color{ColorRed, ColorGreen, ColorBlue, ColorYellow}

// Tile 棋盘格子
type Tile struct {
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Color Color `json:"color"`
}

// GenerateBoard 生成一张打乱颜色的 6x6 棋盘
func GenerateBoard(r *rand.Rand) []Tile {
	colors := make([]Color, 0, BoardTiles)
	for _, c := range Colors {
		for i := 0; i < BoardTiles/len(Colors); i++ {
			colors = append(colors, c)
		}
	}
	r.Shuffle(len(colors), func(i, j int) {
		colors[i], colors[j] = colors[j], colors[i]
	})

	tiles := make([]Tile, BoardTiles)
	for i := range tiles {
		tiles[i] = Tile{X: i % BoardSize, Y: i / BoardSize, Color: colors[i]}
	}
	return tiles
}
