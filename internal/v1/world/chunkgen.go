package world

import "github.com/Azuretier/RhythmGame-sub002/internal/v1/prng"

// Terrain levels for the default generator.
const (
	seaLevel     = 62
	baseHeight   = 64
	heightSwing  = 24
	bedrockLevel = 0
)

// TerrainChunk is the default open-world generator: layered heightmap
// terrain with beaches, water fill to sea level, and full sky light above
// the surface. Pure in (seed, cx, cz).
func TerrainChunk(seed int64, cx, cz int) *Chunk {
	c := &Chunk{}
	elevation := prng.NewNoise(seed)
	roughness := prng.NewNoise(seed + 100)
	temp := prng.NewNoise(seed + 1)

	for lz := 0; lz < ChunkD; lz++ {
		for lx := 0; lx < ChunkW; lx++ {
			wx := cx*ChunkW + lx
			wz := cz*ChunkD + lz
			fx, fz := float64(wx), float64(wz)

			base := elevation.FBM2D(fx*0.01, fz*0.01, 4, 2.0, 0.5)
			rough := roughness.FBM2D(fx*0.05, fz*0.05, 2, 2.0, 0.5)
			height := baseHeight + int(base*heightSwing+rough*4)
			if height < 8 {
				height = 8
			}
			if height >= ChunkH-2 {
				height = ChunkH - 3
			}

			tv := temp.FBM2D(fx*0.004, fz*0.004, 2, 2.0, 0.5)
			surface := NumGrass
			switch {
			case tv < -0.35:
				surface = NumSnowBlock
			case height <= seaLevel+1:
				surface = NumSand
			}

			c.SetBlock(lx, bedrockLevel, lz, NumBedrock)
			for y := 1; y <= height; y++ {
				switch {
				case y == height:
					c.SetBlock(lx, y, lz, surface)
				case y >= height-3:
					c.SetBlock(lx, y, lz, NumDirt)
				default:
					c.SetBlock(lx, y, lz, NumStone)
				}
			}
			for y := height + 1; y <= seaLevel; y++ {
				c.SetBlock(lx, y, lz, NumWater)
			}

			top := c.Height(lx, lz)
			for y := top + 1; y < ChunkH; y++ {
				c.SetSkyLight(lx, y, lz, 15)
			}
			c.SetBiome(lx, lz, biomeByte(tv, height))
		}
	}
	c.dirty = false
	return c
}

func biomeByte(temp float64, height int) byte {
	switch {
	case temp < -0.35:
		return 3 // snowy
	case height <= seaLevel+1:
		return 2 // beach
	case height > baseHeight+12:
		return 1 // hills
	default:
		return 0 // plains
	}
}
