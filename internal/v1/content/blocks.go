// Package content holds the immutable block, item, mob, and recipe tables the
// simulations read. Tables are package-level values initialized once and never
// written after init, so they are safe to share across rooms without locking.
package content

// BlockID identifies a block kind on a grid or voxel world.
type BlockID string

// ItemID identifies an inventory item kind.
type ItemID string

// MobID identifies a mob kind.
type MobID string

// Biome tags a tile or column with its generation climate.
type Biome string

// ToolType groups items by what they are good at breaking.
type ToolType string

const (
	ToolNone    ToolType = ""
	ToolPickaxe ToolType = "pickaxe"
	ToolAxe     ToolType = "axe"
	ToolShovel  ToolType = "shovel"
	ToolSword   ToolType = "sword"
)

// Block ids used by the board and open-world grids.
const (
	BlockAir           BlockID = "air"
	BlockGrass         BlockID = "grass"
	BlockDirt          BlockID = "dirt"
	BlockSand          BlockID = "sand"
	BlockSnowBlock     BlockID = "snow_block"
	BlockStone         BlockID = "stone"
	BlockCobblestone   BlockID = "cobblestone"
	BlockCoalOre       BlockID = "coal_ore"
	BlockIronOre       BlockID = "iron_ore"
	BlockGoldOre       BlockID = "gold_ore"
	BlockDiamondOre    BlockID = "diamond_ore"
	BlockWood          BlockID = "wood"
	BlockLeaves        BlockID = "leaves"
	BlockPlanks        BlockID = "planks"
	BlockWater         BlockID = "water"
	BlockCactus        BlockID = "cactus"
	BlockFlower        BlockID = "flower"
	BlockTallGrass     BlockID = "tall_grass"
	BlockTorch         BlockID = "torch"
	BlockCraftingTable BlockID = "crafting_table"
	BlockFurnace       BlockID = "furnace"
	BlockCorruption    BlockID = "corruption"
	BlockBedrock       BlockID = "bedrock"
)

// Biomes produced by the board generator.
const (
	BiomePlains   Biome = "plains"
	BiomeForest   Biome = "forest"
	BiomeDesert   Biome = "desert"
	BiomeSnowy    Biome = "snowy"
	BiomeMountain Biome = "mountain"
)

// Drop is one entry of a drop table.
type Drop struct {
	Item   ItemID
	Count  int
	Chance float64
}

// Block describes the static properties of one block kind. Hardness is the
// base mining time in ticks at tool speed 1; 0 completes the same tick.
type Block struct {
	Hardness      float64
	PreferredTool ToolType
	RequiredTier  int
	Drops         []Drop
	Walkable      bool
	Solid         bool
	Mineable      bool
	EmitsLight    bool
}

// AirLike reports whether a player may stand on or place into this tile.
func (b Block) AirLike() bool {
	return b.Walkable && !b.Solid
}

// Blocks is the block registry.
var Blocks = map[BlockID]Block{
	BlockAir:   {Walkable: true},
	BlockGrass: {Hardness: 10, PreferredTool: ToolShovel, Drops: []Drop{{ItemDirt, 1, 1.0}}, Walkable: true, Mineable: true},
	BlockDirt:  {Hardness: 10, PreferredTool: ToolShovel, Drops: []Drop{{ItemDirt, 1, 1.0}}, Walkable: true, Mineable: true},
	BlockSand:  {Hardness: 8, PreferredTool: ToolShovel, Drops: []Drop{{ItemSand, 1, 1.0}}, Walkable: true, Mineable: true},
	BlockSnowBlock: {Hardness: 8, PreferredTool: ToolShovel,
		Drops: []Drop{{ItemSnowball, 2, 1.0}}, Walkable: true, Mineable: true},
	BlockStone: {Hardness: 30, PreferredTool: ToolPickaxe, RequiredTier: 1,
		Drops: []Drop{{ItemCobblestone, 1, 1.0}}, Solid: true, Mineable: true},
	BlockCobblestone: {Hardness: 30, PreferredTool: ToolPickaxe, RequiredTier: 1,
		Drops: []Drop{{ItemCobblestone, 1, 1.0}}, Solid: true, Mineable: true},
	BlockCoalOre: {Hardness: 40, PreferredTool: ToolPickaxe, RequiredTier: 1,
		Drops: []Drop{{ItemCoal, 1, 1.0}}, Solid: true, Mineable: true},
	BlockIronOre: {Hardness: 50, PreferredTool: ToolPickaxe, RequiredTier: 2,
		Drops: []Drop{{ItemRawIron, 1, 1.0}}, Solid: true, Mineable: true},
	BlockGoldOre: {Hardness: 50, PreferredTool: ToolPickaxe, RequiredTier: 3,
		Drops: []Drop{{ItemRawGold, 1, 1.0}}, Solid: true, Mineable: true},
	BlockDiamondOre: {Hardness: 60, PreferredTool: ToolPickaxe, RequiredTier: 3,
		Drops: []Drop{{ItemDiamond, 1, 1.0}}, Solid: true, Mineable: true},
	BlockWood: {Hardness: 24, PreferredTool: ToolAxe,
		Drops: []Drop{{ItemWood, 1, 1.0}}, Solid: true, Mineable: true},
	BlockLeaves: {Hardness: 4,
		Drops: []Drop{{ItemApple, 1, 0.1}, {ItemStick, 1, 0.3}}, Mineable: true},
	BlockPlanks: {Hardness: 20, PreferredTool: ToolAxe,
		Drops: []Drop{{ItemPlanks, 1, 1.0}}, Solid: true, Mineable: true},
	BlockWater:  {},
	BlockCactus: {Hardness: 6, Drops: []Drop{{ItemCactus, 1, 1.0}}, Solid: true, Mineable: true},
	BlockFlower: {Hardness: 0, Drops: []Drop{{ItemFlower, 1, 1.0}}, Walkable: true, Mineable: true},
	BlockTallGrass: {Hardness: 0,
		Drops: []Drop{{ItemSeeds, 1, 0.5}}, Walkable: true, Mineable: true},
	BlockTorch: {Hardness: 0, Drops: []Drop{{ItemTorch, 1, 1.0}},
		Walkable: true, Mineable: true, EmitsLight: true},
	BlockCraftingTable: {Hardness: 20, PreferredTool: ToolAxe,
		Drops: []Drop{{ItemCraftingTable, 1, 1.0}}, Solid: true, Mineable: true},
	BlockFurnace: {Hardness: 35, PreferredTool: ToolPickaxe, RequiredTier: 1,
		Drops: []Drop{{ItemFurnace, 1, 1.0}}, Solid: true, Mineable: true, EmitsLight: true},
	BlockCorruption: {Hardness: 45, PreferredTool: ToolPickaxe, RequiredTier: 1, Solid: true, Mineable: true},
	BlockBedrock:    {Solid: true},
}

// exposedByBiome maps a biome to the ground block revealed after mining.
var exposedByBiome = map[Biome]BlockID{
	BiomePlains:   BlockGrass,
	BiomeForest:   BlockGrass,
	BiomeDesert:   BlockSand,
	BiomeSnowy:    BlockSnowBlock,
	BiomeMountain: BlockStone,
}

// ExposedBlock returns the biome-appropriate block left behind when a tile is
// mined out.
func ExposedBlock(b Biome) BlockID {
	if id, ok := exposedByBiome[b]; ok {
		return id
	}
	return BlockGrass
}

// BlockByID looks up a block, falling back to air for unknown ids.
func BlockByID(id BlockID) Block {
	if b, ok := Blocks[id]; ok {
		return b
	}
	return Blocks[BlockAir]
}
