package content

// Station names the work block a recipe needs.
type Station string

const (
	StationNone          Station = ""
	StationCraftingTable Station = "crafting_table"
	StationFurnace       Station = "furnace"
)

// RecipeKind distinguishes how clients render a recipe; the server only
// checks ingredient counts and the station predicate.
type RecipeKind string

const (
	KindShapeless RecipeKind = "shapeless"
	KindShaped    RecipeKind = "shaped"
	KindFurnace   RecipeKind = "furnace"
)

// Recipe is one crafting rule.
type Recipe struct {
	ID          string
	Kind        RecipeKind
	Ingredients map[ItemID]int
	Output      ItemID
	OutputCount int
	Station     Station
}

// RecipeList is the ordered recipe table; Recipes indexes it by id.
var RecipeList = []Recipe{
	{ID: "planks", Kind: KindShapeless, Ingredients: map[ItemID]int{ItemWood: 1}, Output: ItemPlanks, OutputCount: 4},
	{ID: "stick", Kind: KindShaped, Ingredients: map[ItemID]int{ItemPlanks: 2}, Output: ItemStick, OutputCount: 4},
	{ID: "torch", Kind: KindShaped, Ingredients: map[ItemID]int{ItemCoal: 1, ItemStick: 1}, Output: ItemTorch, OutputCount: 4},
	{ID: "crafting_table", Kind: KindShaped, Ingredients: map[ItemID]int{ItemPlanks: 4}, Output: ItemCraftingTable, OutputCount: 1},
	{ID: "furnace", Kind: KindShaped, Ingredients: map[ItemID]int{ItemCobblestone: 8}, Output: ItemFurnace, OutputCount: 1, Station: StationCraftingTable},
	{ID: "wooden_pickaxe", Kind: KindShaped, Ingredients: map[ItemID]int{ItemPlanks: 3, ItemStick: 2}, Output: ItemWoodenPickaxe, OutputCount: 1, Station: StationCraftingTable},
	{ID: "stone_pickaxe", Kind: KindShaped, Ingredients: map[ItemID]int{ItemCobblestone: 3, ItemStick: 2}, Output: ItemStonePickaxe, OutputCount: 1, Station: StationCraftingTable},
	{ID: "iron_pickaxe", Kind: KindShaped, Ingredients: map[ItemID]int{ItemIronIngot: 3, ItemStick: 2}, Output: ItemIronPickaxe, OutputCount: 1, Station: StationCraftingTable},
	{ID: "diamond_pickaxe", Kind: KindShaped, Ingredients: map[ItemID]int{ItemDiamond: 3, ItemStick: 2}, Output: ItemDiamondPickaxe, OutputCount: 1, Station: StationCraftingTable},
	{ID: "wooden_sword", Kind: KindShaped, Ingredients: map[ItemID]int{ItemPlanks: 2, ItemStick: 1}, Output: ItemWoodenSword, OutputCount: 1, Station: StationCraftingTable},
	{ID: "stone_sword", Kind: KindShaped, Ingredients: map[ItemID]int{ItemCobblestone: 2, ItemStick: 1}, Output: ItemStoneSword, OutputCount: 1, Station: StationCraftingTable},
	{ID: "iron_sword", Kind: KindShaped, Ingredients: map[ItemID]int{ItemIronIngot: 2, ItemStick: 1}, Output: ItemIronSword, OutputCount: 1, Station: StationCraftingTable},
	{ID: "diamond_sword", Kind: KindShaped, Ingredients: map[ItemID]int{ItemDiamond: 2, ItemStick: 1}, Output: ItemDiamondSword, OutputCount: 1, Station: StationCraftingTable},
	{ID: "iron_armor", Kind: KindShaped, Ingredients: map[ItemID]int{ItemIronIngot: 5}, Output: ItemIronArmor, OutputCount: 1, Station: StationCraftingTable},
	{ID: "bread", Kind: KindShaped, Ingredients: map[ItemID]int{ItemSeeds: 3}, Output: ItemBread, OutputCount: 1, Station: StationCraftingTable},
	{ID: "iron_ingot", Kind: KindFurnace, Ingredients: map[ItemID]int{ItemRawIron: 1, ItemCoal: 1}, Output: ItemIronIngot, OutputCount: 1, Station: StationFurnace},
	{ID: "gold_ingot", Kind: KindFurnace, Ingredients: map[ItemID]int{ItemRawGold: 1, ItemCoal: 1}, Output: ItemGoldIngot, OutputCount: 1, Station: StationFurnace},
	{ID: "cooked_meat", Kind: KindFurnace, Ingredients: map[ItemID]int{ItemRawMeat: 1, ItemCoal: 1}, Output: ItemCookedMeat, OutputCount: 1, Station: StationFurnace},
}

// Recipes indexes RecipeList by recipe id.
var Recipes = func() map[string]Recipe {
	m := make(map[string]Recipe, len(RecipeList))
	for _, r := range RecipeList {
		m[r.ID] = r
	}
	return m
}()

// CanCraft reports whether the counted inventory satisfies the recipe's
// ingredients and the required station is in reach.
func CanCraft(r Recipe, counts map[ItemID]int, nearTable, nearFurnace bool) bool {
	switch r.Station {
	case StationCraftingTable:
		if !nearTable {
			return false
		}
	case StationFurnace:
		if !nearFurnace {
			return false
		}
	}
	for item, need := range r.Ingredients {
		if counts[item] < need {
			return false
		}
	}
	return true
}
