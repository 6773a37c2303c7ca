package content

// Item ids.
const (
	ItemDirt          ItemID = "dirt"
	ItemSand          ItemID = "sand"
	ItemSnowball      ItemID = "snowball"
	ItemCobblestone   ItemID = "cobblestone"
	ItemCoal          ItemID = "coal"
	ItemRawIron       ItemID = "raw_iron"
	ItemIronIngot     ItemID = "iron_ingot"
	ItemRawGold       ItemID = "raw_gold"
	ItemGoldIngot     ItemID = "gold_ingot"
	ItemDiamond       ItemID = "diamond"
	ItemWood          ItemID = "wood"
	ItemPlanks        ItemID = "planks"
	ItemStick         ItemID = "stick"
	ItemApple         ItemID = "apple"
	ItemBread         ItemID = "bread"
	ItemRawMeat       ItemID = "raw_meat"
	ItemCookedMeat    ItemID = "cooked_meat"
	ItemCactus        ItemID = "cactus"
	ItemFlower        ItemID = "flower"
	ItemSeeds         ItemID = "seeds"
	ItemTorch         ItemID = "torch"
	ItemCraftingTable ItemID = "crafting_table"
	ItemFurnace       ItemID = "furnace"

	ItemWoodenPickaxe  ItemID = "wooden_pickaxe"
	ItemStonePickaxe   ItemID = "stone_pickaxe"
	ItemIronPickaxe    ItemID = "iron_pickaxe"
	ItemDiamondPickaxe ItemID = "diamond_pickaxe"
	ItemWoodenAxe      ItemID = "wooden_axe"
	ItemStoneAxe       ItemID = "stone_axe"
	ItemIronAxe        ItemID = "iron_axe"
	ItemWoodenSword    ItemID = "wooden_sword"
	ItemStoneSword     ItemID = "stone_sword"
	ItemIronSword      ItemID = "iron_sword"
	ItemDiamondSword   ItemID = "diamond_sword"
	ItemLeatherArmor   ItemID = "leather_armor"
	ItemIronArmor      ItemID = "iron_armor"
)

// Item describes the static properties of one item kind. MiningSpeed is the
// hardness divisor applied when the tool type matches the block's preferred
// tool. Nutrition > 0 marks the item edible. Placeable names the block the
// item turns into when placed, empty for non-placeable items.
type Item struct {
	MaxStack    int
	Tool        ToolType
	Tier        int
	MiningSpeed float64
	Damage      int
	Defense     int
	Nutrition   int
	Placeable   BlockID
}

// Items is the item registry.
var Items = map[ItemID]Item{
	ItemDirt:          {MaxStack: 64, Placeable: BlockDirt},
	ItemSand:          {MaxStack: 64, Placeable: BlockSand},
	ItemSnowball:      {MaxStack: 16},
	ItemCobblestone:   {MaxStack: 64, Placeable: BlockCobblestone},
	ItemCoal:          {MaxStack: 64},
	ItemRawIron:       {MaxStack: 64},
	ItemIronIngot:     {MaxStack: 64},
	ItemRawGold:       {MaxStack: 64},
	ItemGoldIngot:     {MaxStack: 64},
	ItemDiamond:       {MaxStack: 64},
	ItemWood:          {MaxStack: 64, Placeable: BlockWood},
	ItemPlanks:        {MaxStack: 64, Placeable: BlockPlanks},
	ItemStick:         {MaxStack: 64},
	ItemApple:         {MaxStack: 64, Nutrition: 4},
	ItemBread:         {MaxStack: 64, Nutrition: 5},
	ItemRawMeat:       {MaxStack: 64, Nutrition: 2},
	ItemCookedMeat:    {MaxStack: 64, Nutrition: 8},
	ItemCactus:        {MaxStack: 64, Placeable: BlockCactus},
	ItemFlower:        {MaxStack: 64, Placeable: BlockFlower},
	ItemSeeds:         {MaxStack: 64},
	ItemTorch:         {MaxStack: 64, Placeable: BlockTorch},
	ItemCraftingTable: {MaxStack: 8, Placeable: BlockCraftingTable},
	ItemFurnace:       {MaxStack: 8, Placeable: BlockFurnace},

	ItemWoodenPickaxe:  {MaxStack: 1, Tool: ToolPickaxe, Tier: 1, MiningSpeed: 2, Damage: 2},
	ItemStonePickaxe:   {MaxStack: 1, Tool: ToolPickaxe, Tier: 2, MiningSpeed: 4, Damage: 3},
	ItemIronPickaxe:    {MaxStack: 1, Tool: ToolPickaxe, Tier: 3, MiningSpeed: 6, Damage: 4},
	ItemDiamondPickaxe: {MaxStack: 1, Tool: ToolPickaxe, Tier: 4, MiningSpeed: 8, Damage: 5},
	ItemWoodenAxe:      {MaxStack: 1, Tool: ToolAxe, Tier: 1, MiningSpeed: 2, Damage: 3},
	ItemStoneAxe:       {MaxStack: 1, Tool: ToolAxe, Tier: 2, MiningSpeed: 4, Damage: 4},
	ItemIronAxe:        {MaxStack: 1, Tool: ToolAxe, Tier: 3, MiningSpeed: 6, Damage: 5},
	ItemWoodenSword:    {MaxStack: 1, Tool: ToolSword, Tier: 1, MiningSpeed: 1, Damage: 4},
	ItemStoneSword:     {MaxStack: 1, Tool: ToolSword, Tier: 2, MiningSpeed: 1, Damage: 5},
	ItemIronSword:      {MaxStack: 1, Tool: ToolSword, Tier: 3, MiningSpeed: 1, Damage: 6},
	ItemDiamondSword:   {MaxStack: 1, Tool: ToolSword, Tier: 4, MiningSpeed: 1, Damage: 7},
	ItemLeatherArmor:   {MaxStack: 1, Defense: 2},
	ItemIronArmor:      {MaxStack: 1, Defense: 5},
}

// ItemByID looks up an item; ok is false for unknown ids.
func ItemByID(id ItemID) (Item, bool) {
	it, ok := Items[id]
	return it, ok
}

// MiningTicks returns how many ticks mining the block takes with the given
// item (zero value Item means bare hands). A mismatched tool with speed > 1
// still helps at half rate; otherwise the base rate applies. Hardness 0
// completes in the same tick.
func MiningTicks(b Block, it Item) int {
	if b.Hardness <= 0 {
		return 0
	}
	speed := 1.0
	switch {
	case it.Tool != ToolNone && it.Tool == b.PreferredTool:
		speed = it.MiningSpeed
	case it.MiningSpeed > 1:
		speed = it.MiningSpeed * 0.5
	}
	if speed < 1 {
		speed = 1
	}
	ticks := int(b.Hardness / speed)
	if float64(ticks)*speed < b.Hardness {
		ticks++
	}
	return ticks
}
