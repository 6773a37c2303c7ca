package world

import "github.com/Azuretier/RhythmGame-sub002/internal/v1/content"

// Chunk dimensions. A chunk is a 16×256×16 column of 16-bit block ids with
// nibble-packed block/sky light and per-column biome and height bytes.
const (
	ChunkW = 16
	ChunkH = 256
	ChunkD = 16
)

// Numeric block ids used inside chunk storage. The voxel store keeps two
// bytes per block; these map to and from the string registry at the edges.
const (
	NumAir uint16 = iota
	NumStone
	NumGrass
	NumDirt
	NumBedrock
	NumWater
	NumSand
	NumWood
	NumLeaves
	NumSnowBlock
	NumPlanks
	NumCobblestone
	NumTorch
	NumCraftingTable
	NumFurnace
)

var numToBlock = map[uint16]content.BlockID{
	NumAir:           content.BlockAir,
	NumStone:         content.BlockStone,
	NumGrass:         content.BlockGrass,
	NumDirt:          content.BlockDirt,
	NumBedrock:       content.BlockBedrock,
	NumWater:         content.BlockWater,
	NumSand:          content.BlockSand,
	NumWood:          content.BlockWood,
	NumLeaves:        content.BlockLeaves,
	NumSnowBlock:     content.BlockSnowBlock,
	NumPlanks:        content.BlockPlanks,
	NumCobblestone:   content.BlockCobblestone,
	NumTorch:         content.BlockTorch,
	NumCraftingTable: content.BlockCraftingTable,
	NumFurnace:       content.BlockFurnace,
}

var blockToNum = func() map[content.BlockID]uint16 {
	m := make(map[content.BlockID]uint16, len(numToBlock))
	for n, id := range numToBlock {
		m[id] = n
	}
	return m
}()

// BlockName resolves a numeric id to its registry name, air when unknown.
func BlockName(n uint16) content.BlockID {
	if id, ok := numToBlock[n]; ok {
		return id
	}
	return content.BlockAir
}

// BlockNum resolves a registry name to its numeric id, air when unknown.
func BlockNum(id content.BlockID) uint16 {
	if n, ok := blockToNum[id]; ok {
		return n
	}
	return NumAir
}

// Chunk holds one column of the voxel world.
type Chunk struct {
	blocks     [ChunkW * ChunkH * ChunkD]uint16
	blockLight [ChunkW * ChunkH * ChunkD / 2]byte
	skyLight   [ChunkW * ChunkH * ChunkD / 2]byte
	biomes     [ChunkW * ChunkD]byte
	heightMap  [ChunkW * ChunkD]uint8
	dirty      bool
}

func blockIndex(x, y, z int) int {
	return y*ChunkW*ChunkD + z*ChunkW + x
}

func columnIndex(x, z int) int {
	return z*ChunkW + x
}

// Block returns the numeric block id at chunk-local coordinates.
func (c *Chunk) Block(x, y, z int) uint16 {
	if x < 0 || x >= ChunkW || y < 0 || y >= ChunkH || z < 0 || z >= ChunkD {
		return NumAir
	}
	return c.blocks[blockIndex(x, y, z)]
}

// SetBlock writes the block at chunk-local coordinates, marks the chunk
// dirty, and maintains the column height map: a placed block above the
// current top bumps it, removing the top block rescans downward.
func (c *Chunk) SetBlock(x, y, z int, id uint16) {
	if x < 0 || x >= ChunkW || y < 0 || y >= ChunkH || z < 0 || z >= ChunkD {
		return
	}
	c.blocks[blockIndex(x, y, z)] = id
	c.dirty = true

	ci := columnIndex(x, z)
	h := int(c.heightMap[ci])
	switch {
	case id != NumAir && y > h:
		c.heightMap[ci] = uint8(y)
	case id == NumAir && y == h:
		for yy := y - 1; yy >= 0; yy-- {
			if c.blocks[blockIndex(x, yy, z)] != NumAir {
				c.heightMap[ci] = uint8(yy)
				return
			}
		}
		c.heightMap[ci] = 0
	}
}

// Height returns the y of the topmost non-air block in the column.
func (c *Chunk) Height(x, z int) int {
	if x < 0 || x >= ChunkW || z < 0 || z >= ChunkD {
		return 0
	}
	return int(c.heightMap[columnIndex(x, z)])
}

// Biome returns the column biome byte.
func (c *Chunk) Biome(x, z int) byte {
	if x < 0 || x >= ChunkW || z < 0 || z >= ChunkD {
		return 0
	}
	return c.biomes[columnIndex(x, z)]
}

// SetBiome writes the column biome byte.
func (c *Chunk) SetBiome(x, z int, b byte) {
	if x < 0 || x >= ChunkW || z < 0 || z >= ChunkD {
		return
	}
	c.biomes[columnIndex(x, z)] = b
}

// Dirty reports whether the chunk changed since generation.
func (c *Chunk) Dirty() bool { return c.dirty }

// nibble helpers for the packed light arrays.

func getNibble(arr []byte, i int) byte {
	b := arr[i/2]
	if i%2 == 0 {
		return b & 0x0F
	}
	return b >> 4
}

func setNibble(arr []byte, i int, v byte) {
	v &= 0x0F
	if i%2 == 0 {
		arr[i/2] = arr[i/2]&0xF0 | v
	} else {
		arr[i/2] = arr[i/2]&0x0F | v<<4
	}
}

// SkyLight returns the sky light level at chunk-local coordinates.
func (c *Chunk) SkyLight(x, y, z int) byte {
	if x < 0 || x >= ChunkW || y < 0 || y >= ChunkH || z < 0 || z >= ChunkD {
		return 15
	}
	return getNibble(c.skyLight[:], blockIndex(x, y, z))
}

// SetSkyLight writes the sky light level.
func (c *Chunk) SetSkyLight(x, y, z int, v byte) {
	if x < 0 || x >= ChunkW || y < 0 || y >= ChunkH || z < 0 || z >= ChunkD {
		return
	}
	setNibble(c.skyLight[:], blockIndex(x, y, z), v)
}

// BlockLight returns the emitted light level at chunk-local coordinates.
func (c *Chunk) BlockLight(x, y, z int) byte {
	if x < 0 || x >= ChunkW || y < 0 || y >= ChunkH || z < 0 || z >= ChunkD {
		return 0
	}
	return getNibble(c.blockLight[:], blockIndex(x, y, z))
}

// SetBlockLight writes the emitted light level.
func (c *Chunk) SetBlockLight(x, y, z int, v byte) {
	if x < 0 || x >= ChunkW || y < 0 || y >= ChunkH || z < 0 || z >= ChunkD {
		return
	}
	setNibble(c.blockLight[:], blockIndex(x, y, z), v)
}

// Runs encodes the chunk's blocks as [id, count] run-length pairs in y-major
// order, the shape chunk payloads travel in.
func (c *Chunk) Runs() [][2]int {
	var runs [][2]int
	cur := int(c.blocks[0])
	count := 0
	for _, b := range c.blocks {
		if int(b) == cur {
			count++
			continue
		}
		runs = append(runs, [2]int{cur, count})
		cur = int(b)
		count = 1
	}
	runs = append(runs, [2]int{cur, count})
	return runs
}
