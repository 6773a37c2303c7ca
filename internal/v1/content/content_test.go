package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDropsReferenceKnownItems(t *testing.T) {
	for id, b := range Blocks {
		for _, d := range b.Drops {
			_, ok := Items[d.Item]
			assert.True(t, ok, "block %s drops unknown item %s", id, d.Item)
			assert.Greater(t, d.Count, 0)
			assert.Greater(t, d.Chance, 0.0)
			assert.LessOrEqual(t, d.Chance, 1.0)
		}
	}
	for id, m := range Mobs {
		for _, d := range m.Drops {
			_, ok := Items[d.Item]
			assert.True(t, ok, "mob %s drops unknown item %s", id, d.Item)
		}
	}
}

func TestPlaceableItemsReferenceKnownBlocks(t *testing.T) {
	for id, it := range Items {
		if it.Placeable == "" {
			continue
		}
		_, ok := Blocks[it.Placeable]
		assert.True(t, ok, "item %s places unknown block %s", id, it.Placeable)
	}
}

func TestRecipesReferenceKnownItems(t *testing.T) {
	for _, r := range RecipeList {
		_, ok := Items[r.Output]
		assert.True(t, ok, "recipe %s outputs unknown item %s", r.ID, r.Output)
		assert.Greater(t, r.OutputCount, 0)
		for ing := range r.Ingredients {
			_, ok := Items[ing]
			assert.True(t, ok, "recipe %s requires unknown item %s", r.ID, ing)
		}
		assert.Equal(t, r, Recipes[r.ID])
	}
}

func TestExposedBlock(t *testing.T) {
	assert.Equal(t, BlockGrass, ExposedBlock(BiomePlains))
	assert.Equal(t, BlockGrass, ExposedBlock(BiomeForest))
	assert.Equal(t, BlockSand, ExposedBlock(BiomeDesert))
	assert.Equal(t, BlockSnowBlock, ExposedBlock(BiomeSnowy))
	assert.Equal(t, BlockStone, ExposedBlock(BiomeMountain))
	assert.Equal(t, BlockGrass, ExposedBlock(Biome("nonsense")))
}

func TestMiningTicksMatchingTool(t *testing.T) {
	stone := Blocks[BlockStone]
	pick := Items[ItemStonePickaxe]
	// 30 hardness / 4 speed = 7.5, rounded up
	assert.Equal(t, 8, MiningTicks(stone, pick))
}

func TestMiningTicksBareHands(t *testing.T) {
	stone := Blocks[BlockStone]
	assert.Equal(t, 30, MiningTicks(stone, Item{}))
}

func TestMiningTicksWrongToolHalvesSpeed(t *testing.T) {
	stone := Blocks[BlockStone]
	axe := Items[ItemIronAxe]
	// wrong tool with speed 6 works at 3: ceil(30/3) = 10
	assert.Equal(t, 10, MiningTicks(stone, axe))
}

func TestMiningTicksWrongSlowToolBaseRate(t *testing.T) {
	stone := Blocks[BlockStone]
	sword := Items[ItemWoodenSword]
	// mining speed 1 does not qualify for the half-rate path
	assert.Equal(t, 30, MiningTicks(stone, sword))
}

func TestMiningTicksZeroHardness(t *testing.T) {
	flower := Blocks[BlockFlower]
	assert.Zero(t, MiningTicks(flower, Item{}))
}

func TestCanCraftCountsAndStations(t *testing.T) {
	planks := Recipes["planks"]
	assert.True(t, CanCraft(planks, map[ItemID]int{ItemWood: 1}, false, false))
	assert.False(t, CanCraft(planks, map[ItemID]int{}, false, false))

	pick := Recipes["wooden_pickaxe"]
	inv := map[ItemID]int{ItemPlanks: 3, ItemStick: 2}
	assert.False(t, CanCraft(pick, inv, false, false))
	assert.True(t, CanCraft(pick, inv, true, false))

	smelt := Recipes["iron_ingot"]
	ore := map[ItemID]int{ItemRawIron: 1, ItemCoal: 1}
	assert.False(t, CanCraft(smelt, ore, true, false))
	assert.True(t, CanCraft(smelt, ore, false, true))
}

func TestCanCraftInsufficientQuantity(t *testing.T) {
	table := Recipes["crafting_table"]
	assert.False(t, CanCraft(table, map[ItemID]int{ItemPlanks: 3}, false, false))
	assert.True(t, CanCraft(table, map[ItemID]int{ItemPlanks: 4}, false, false))
}

func TestMobTypeSlicesAreHostileConsistent(t *testing.T) {
	for _, id := range HostileMobTypes {
		m, ok := Mobs[id]
		assert.True(t, ok)
		assert.True(t, m.Hostile, "%s listed hostile but stats disagree", id)
	}
	for _, id := range PassiveMobTypes {
		m, ok := Mobs[id]
		assert.True(t, ok)
		assert.False(t, m.Hostile, "%s listed passive but stats disagree", id)
	}
	for _, id := range RaidMobTypes {
		m, ok := Mobs[id]
		assert.True(t, ok)
		assert.True(t, m.Hostile)
	}
}

func TestAirLike(t *testing.T) {
	assert.True(t, Blocks[BlockGrass].AirLike())
	assert.True(t, Blocks[BlockAir].AirLike())
	assert.False(t, Blocks[BlockStone].AirLike())
	assert.False(t, Blocks[BlockWater].AirLike())
}
