package world

import (
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/content"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/prng"
)

// GenerateBoard builds the board-mode grid for a seed. The function is pure:
// equal seeds and dimensions produce equal grids, which is what makes replays
// and reconnect snapshots line up.
func GenerateBoard(seed int64, w, h int) *Grid {
	g := NewGrid(w, h, Tile{Block: content.BlockGrass, Biome: content.BiomePlains})

	elevation := prng.NewNoise(seed)
	temp := prng.NewNoise(seed + 1)
	rain := prng.NewNoise(seed + 2)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x), float64(y)
			elev := elevation.FBM2D(fx*0.08, fy*0.08, 3, 2.0, 0.5)
			tv := temp.FBM2D(fx*0.05, fy*0.05, 2, 2.0, 0.5)
			rv := rain.FBM2D(fx*0.05, fy*0.05, 2, 2.0, 0.5)

			biome := biomeFor(elev, tv, rv)
			tile := Tile{Block: groundFor(biome), Biome: biome}

			switch {
			case elev < -0.45:
				tile.Block = content.BlockWater
			case biome == content.BiomeMountain:
				tile.Block = oreFor(x, y, seed, elev)
			default:
				tile.Block = decorate(tile.Block, biome, x, y, seed)
			}
			g.Set(x, y, tile)
		}
	}
	return g
}

func biomeFor(elev, temp, rain float64) content.Biome {
	switch {
	case elev > 0.42:
		return content.BiomeMountain
	case temp < -0.3:
		return content.BiomeSnowy
	case temp > 0.25 && rain < -0.05:
		return content.BiomeDesert
	case rain > 0.12:
		return content.BiomeForest
	default:
		return content.BiomePlains
	}
}

func groundFor(b content.Biome) content.BlockID {
	return content.ExposedBlock(b)
}

// oreFor picks the mountain block for a column using its position hash, so
// ore veins are stable per seed without spending the room stream.
func oreFor(x, y int, seed int64, elev float64) content.BlockID {
	r := prng.PositionHash(x, y, seed) % 1000
	switch {
	case elev > 0.62 && r < 12:
		return content.BlockDiamondOre
	case elev > 0.55 && r < 40:
		return content.BlockGoldOre
	case r < 100:
		return content.BlockIronOre
	case r < 200:
		return content.BlockCoalOre
	default:
		return content.BlockStone
	}
}

func decorate(ground content.BlockID, biome content.Biome, x, y int, seed int64) content.BlockID {
	r := prng.PositionHash(x, y, seed+7) % 1000
	switch biome {
	case content.BiomeForest:
		if r < 120 {
			return content.BlockWood
		}
		if r < 160 {
			return content.BlockTallGrass
		}
	case content.BiomePlains:
		if r < 25 {
			return content.BlockWood
		}
		if r < 60 {
			return content.BlockFlower
		}
		if r < 110 {
			return content.BlockTallGrass
		}
	case content.BiomeDesert:
		if r < 30 {
			return content.BlockCactus
		}
	case content.BiomeSnowy:
		if r < 20 {
			return content.BlockWood
		}
	}
	return ground
}
