package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkBlockRoundTrip(t *testing.T) {
	c := &Chunk{}
	assert.Equal(t, NumAir, c.Block(3, 70, 9))

	c.SetBlock(3, 70, 9, NumStone)
	assert.Equal(t, NumStone, c.Block(3, 70, 9))
	assert.Equal(t, NumAir, c.Block(3, 71, 9))
	assert.True(t, c.Dirty())
}

func TestChunkHeightMapTracksTopBlock(t *testing.T) {
	c := &Chunk{}
	c.SetBlock(5, 10, 5, NumStone)
	c.SetBlock(5, 20, 5, NumGrass)
	assert.Equal(t, 20, c.Height(5, 5))

	// removing the top rescans down to the next solid block
	c.SetBlock(5, 20, 5, NumAir)
	assert.Equal(t, 10, c.Height(5, 5))

	// removing below the top leaves the top alone
	c.SetBlock(5, 30, 5, NumDirt)
	c.SetBlock(5, 10, 5, NumAir)
	assert.Equal(t, 30, c.Height(5, 5))
}

func TestChunkLightNibbles(t *testing.T) {
	c := &Chunk{}
	c.SetSkyLight(0, 0, 0, 15)
	c.SetSkyLight(1, 0, 0, 7)
	c.SetBlockLight(0, 0, 0, 12)

	// paired nibbles share a byte and must not clobber each other
	assert.Equal(t, byte(15), c.SkyLight(0, 0, 0))
	assert.Equal(t, byte(7), c.SkyLight(1, 0, 0))
	assert.Equal(t, byte(12), c.BlockLight(0, 0, 0))
	assert.Equal(t, byte(0), c.BlockLight(1, 0, 0))
}

func TestChunkBiome(t *testing.T) {
	c := &Chunk{}
	c.SetBiome(4, 12, 3)
	assert.Equal(t, byte(3), c.Biome(4, 12))
	assert.Equal(t, byte(0), c.Biome(0, 0))
}

func TestChunkRunsCoverWholeChunk(t *testing.T) {
	c := &Chunk{}
	c.SetBlock(0, 0, 0, NumBedrock)
	c.SetBlock(1, 0, 0, NumBedrock)
	c.SetBlock(2, 0, 0, NumStone)

	runs := c.Runs()
	total := 0
	for _, r := range runs {
		total += r[1]
	}
	assert.Equal(t, ChunkW*ChunkH*ChunkD, total)
	assert.Equal(t, [2]int{int(NumBedrock), 2}, runs[0])
	assert.Equal(t, [2]int{int(NumStone), 1}, runs[1])
}

func TestBlockNameNumMapping(t *testing.T) {
	for num, id := range numToBlock {
		assert.Equal(t, num, BlockNum(id))
		assert.Equal(t, id, BlockName(num))
	}
	// unknown values fall back to air
	assert.Equal(t, NumAir, BlockNum("no_such_block"))
}

func TestChunkedWorldSetThenGet(t *testing.T) {
	w := NewChunkedWorld(99, 4, 4, TerrainChunk)

	ok := w.SetBlock(20, 80, 35, NumPlanks)
	assert.True(t, ok)
	assert.Equal(t, NumPlanks, w.GetBlock(20, 80, 35))
}

func TestChunkedWorldOutOfBoundsIsAir(t *testing.T) {
	w := NewChunkedWorld(99, 2, 2, TerrainChunk)

	assert.Equal(t, NumAir, w.GetBlock(-1, 64, 0))
	assert.Equal(t, NumAir, w.GetBlock(0, 64, 2*ChunkD))
	assert.Equal(t, NumAir, w.GetBlock(0, -1, 0))
	assert.Equal(t, NumAir, w.GetBlock(0, ChunkH, 0))
	assert.False(t, w.SetBlock(-1, 64, 0, NumStone))
}

func TestChunkedWorldLazyAndMemoized(t *testing.T) {
	calls := 0
	gen := func(seed int64, cx, cz int) *Chunk {
		calls++
		return TerrainChunk(seed, cx, cz)
	}
	w := NewChunkedWorld(7, 4, 4, gen)
	assert.Equal(t, 0, calls)

	a := w.Chunk(1, 2)
	b := w.Chunk(1, 2)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, w.LoadedChunks())

	assert.Nil(t, w.Chunk(4, 0))
	assert.Equal(t, 1, calls)
}

func TestTerrainChunkDeterministic(t *testing.T) {
	a := TerrainChunk(5150, 3, 1)
	b := TerrainChunk(5150, 3, 1)
	for y := 0; y < ChunkH; y++ {
		for z := 0; z < ChunkD; z++ {
			for x := 0; x < ChunkW; x++ {
				if a.Block(x, y, z) != b.Block(x, y, z) {
					t.Fatalf("block (%d,%d,%d) differs between identical seeds", x, y, z)
				}
			}
		}
	}
	assert.False(t, a.Dirty())
}

func TestTerrainChunkShape(t *testing.T) {
	c := TerrainChunk(31337, 0, 0)
	for z := 0; z < ChunkD; z++ {
		for x := 0; x < ChunkW; x++ {
			assert.Equal(t, NumBedrock, c.Block(x, 0, z), "column (%d,%d) missing bedrock", x, z)
			h := c.Height(x, z)
			assert.Greater(t, h, 0)
			assert.NotEqual(t, NumAir, c.Block(x, h, z))
			if h+1 < ChunkH {
				top := c.Block(x, h+1, z)
				assert.True(t, top == NumAir || top == NumWater)
			}
		}
	}
}

func TestFindSpawnPointIsStandable(t *testing.T) {
	w := NewChunkedWorld(1234, 8, 8, TerrainChunk)
	x, y, z := w.FindSpawnPoint()
	assert.GreaterOrEqual(t, x, 0)
	assert.Less(t, x, 8*ChunkW)
	assert.GreaterOrEqual(t, z, 0)
	assert.Less(t, z, 8*ChunkD)

	assert.Equal(t, NumAir, w.GetBlock(x, y, z))
	assert.Equal(t, NumAir, w.GetBlock(x, y+1, z))
	ground := w.GetBlock(x, y-1, z)
	assert.NotEqual(t, NumAir, ground)
	assert.NotEqual(t, NumWater, ground)
}

func TestDivModNegative(t *testing.T) {
	q, r := divMod(-1, 16)
	assert.Equal(t, -1, q)
	assert.Equal(t, 15, r)

	q, r = divMod(-16, 16)
	assert.Equal(t, -1, q)
	assert.Equal(t, 0, r)

	q, r = divMod(17, 16)
	assert.Equal(t, 1, q)
	assert.Equal(t, 1, r)
}
