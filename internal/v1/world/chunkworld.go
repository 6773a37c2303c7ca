package world

import "github.com/Azuretier/RhythmGame-sub002/internal/v1/content"

// Generator produces the chunk at (cx, cz) for a seed. It must be pure:
// equal inputs yield equal chunks.
type Generator func(seed int64, cx, cz int) *Chunk

// ChunkedWorld is a finite grid of lazily generated, memoized chunks.
// Access is guarded by the owning room's lock.
type ChunkedWorld struct {
	seed        int64
	gen         Generator
	chunks      map[[2]int]*Chunk
	widthChunks int
	depthChunks int
}

// NewChunkedWorld builds a world of widthChunks×depthChunks chunks.
func NewChunkedWorld(seed int64, widthChunks, depthChunks int, gen Generator) *ChunkedWorld {
	return &ChunkedWorld{
		seed:        seed,
		gen:         gen,
		chunks:      make(map[[2]int]*Chunk),
		widthChunks: widthChunks,
		depthChunks: depthChunks,
	}
}

// Seed returns the world seed.
func (w *ChunkedWorld) Seed() int64 { return w.seed }

// InBounds reports whether the chunk coordinate lies inside the world.
func (w *ChunkedWorld) InBounds(cx, cz int) bool {
	return cx >= 0 && cx < w.widthChunks && cz >= 0 && cz < w.depthChunks
}

// Chunk returns the chunk at (cx, cz), generating and memoizing it on first
// touch. Returns nil outside the world bounds.
func (w *ChunkedWorld) Chunk(cx, cz int) *Chunk {
	if !w.InBounds(cx, cz) {
		return nil
	}
	key := [2]int{cx, cz}
	if c, ok := w.chunks[key]; ok {
		return c
	}
	c := w.gen(w.seed, cx, cz)
	w.chunks[key] = c
	return c
}

// LoadedChunks returns how many chunks have been generated so far.
func (w *ChunkedWorld) LoadedChunks() int { return len(w.chunks) }

// GetBlock returns the block at world coordinates, air out of bounds.
func (w *ChunkedWorld) GetBlock(x, y, z int) uint16 {
	if y < 0 || y >= ChunkH {
		return NumAir
	}
	cx, lx := divMod(x, ChunkW)
	cz, lz := divMod(z, ChunkD)
	c := w.Chunk(cx, cz)
	if c == nil {
		return NumAir
	}
	return c.Block(lx, y, lz)
}

// SetBlock writes the block at world coordinates, creating the chunk through
// the generator if needed. Writes outside the world are dropped.
func (w *ChunkedWorld) SetBlock(x, y, z int, id uint16) bool {
	if y < 0 || y >= ChunkH {
		return false
	}
	cx, lx := divMod(x, ChunkW)
	cz, lz := divMod(z, ChunkD)
	c := w.Chunk(cx, cz)
	if c == nil {
		return false
	}
	c.SetBlock(lx, y, lz, id)
	return true
}

// HeightAt returns the y of the topmost non-air block of a column.
func (w *ChunkedWorld) HeightAt(x, z int) int {
	cx, lx := divMod(x, ChunkW)
	cz, lz := divMod(z, ChunkD)
	c := w.Chunk(cx, cz)
	if c == nil {
		return 0
	}
	return c.Height(lx, lz)
}

// FindSpawnPoint spirals outward from the world center and returns the first
// position whose top block is solid and non-liquid with two air blocks above
// it. The fallback is the column straight up from the center top.
func (w *ChunkedWorld) FindSpawnPoint() (int, int, int) {
	centerX := w.widthChunks * ChunkW / 2
	centerZ := w.depthChunks * ChunkD / 2

	maxRadius := w.widthChunks * ChunkW
	for r := 0; r < maxRadius; r++ {
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dz) != r {
					continue
				}
				x, z := centerX+dx, centerZ+dz
				if y, ok := w.spawnYAt(x, z); ok {
					return x, y, z
				}
			}
		}
	}
	return centerX, w.HeightAt(centerX, centerZ) + 1, centerZ
}

func (w *ChunkedWorld) spawnYAt(x, z int) (int, bool) {
	top := w.HeightAt(x, z)
	if top <= 0 || top+2 >= ChunkH {
		return 0, false
	}
	ground := BlockName(w.GetBlock(x, top, z))
	props := content.BlockByID(ground)
	if !props.Solid && ground != content.BlockGrass && ground != content.BlockSand && ground != content.BlockSnowBlock {
		return 0, false
	}
	if ground == content.BlockWater {
		return 0, false
	}
	if w.GetBlock(x, top+1, z) != NumAir || w.GetBlock(x, top+2, z) != NumAir {
		return 0, false
	}
	return top + 1, true
}

func divMod(v, size int) (int, int) {
	d := v / size
	m := v % size
	if m < 0 {
		d--
		m += size
	}
	return d, m
}
