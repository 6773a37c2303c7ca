package board

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/content"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/prng"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/world"
)

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Handle routes one mc_-prefixed frame. Unknown tags return false so the
// dispatcher can answer UNKNOWN_TYPE.
func (m *Manager) Handle(ctx context.Context, sid types.SessionIdType, tag string, raw []byte) bool {
	switch tag {
	case "mc_create_room":
		var msg createRoomMsg
		if json.Unmarshal(raw, &msg) != nil {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad create_room payload"))
			return true
		}
		m.CreateRoom(sid, msg.PlayerName, msg.RoomName, msg.IsPublic)
	case "mc_join_room":
		var msg joinRoomMsg
		if json.Unmarshal(raw, &msg) != nil || msg.Code == "" {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad join_room payload"))
			return true
		}
		m.JoinRoom(sid, types.RoomCodeType(msg.Code), msg.PlayerName)
	case "mc_ready":
		var msg readyMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.SetReady(sid, msg.Ready)
	case "mc_start_game":
		m.StartGame(sid)
	case "mc_move":
		var msg moveMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleMove(sid, msg.DX, msg.DY)
	case "mc_mine":
		var msg mineMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleMine(sid, msg.X, msg.Y)
	case "mc_attack":
		var msg attackMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleAttack(sid, msg.TargetID)
	case "mc_place_block":
		var msg placeBlockMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handlePlaceBlock(sid, msg.X, msg.Y, msg.Slot)
	case "mc_eat":
		var msg slotMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleEat(sid, msg.Slot)
	case "mc_select_slot":
		var msg slotMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleSelectSlot(sid, msg.Slot)
	case "mc_craft":
		var msg craftMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleCraft(sid, msg.RecipeID)
	case "mc_chat":
		var msg chatMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleChat(sid, msg.Text)
	case "mc_leave":
		m.LeaveRoom(sid)
	case "mc_rematch":
		m.Rematch(sid)
	default:
		return false
	}
	return true
}

// playingPlayer resolves the caller's room and seat when the game is live;
// dead or disconnected players get nil back.
func (m *Manager) playingPlayer(sid types.SessionIdType) (*Room, *Player) {
	r := m.roomOf(sid)
	if r == nil {
		return nil, nil
	}
	r.mu.Lock()
	if r.Status != types.StatusPlaying {
		r.mu.Unlock()
		return nil, nil
	}
	p := r.Players[sid]
	if p == nil || p.Dead || !p.Connected {
		r.mu.Unlock()
		return nil, nil
	}
	return r, p
}

// handleMove steps one square, subject to the move cooldown, bounds,
// walkability, and player collision. Moving cancels an active dig.
func (m *Manager) handleMove(sid types.SessionIdType, dx, dy int) {
	if abs(dx)+abs(dy) != 1 {
		return
	}
	r, p := m.playingPlayer(sid)
	if r == nil {
		return
	}
	defer r.mu.Unlock()

	if r.Tick-p.LastMoveTick < uint64(m.cfg.MoveCooldownTicks) {
		return
	}
	nx, ny := p.X+dx, p.Y+dy
	if !r.Grid.Walkable(nx, ny) || r.playerAt(nx, ny) != nil {
		return
	}

	if p.Mining != nil {
		p.Mining = nil
		m.broadcast(r, miningCancelledMsg{Type: "mc_mining_cancelled", SessionID: sid})
	}
	p.X, p.Y = nx, ny
	p.LastMoveTick = r.Tick
	m.broadcast(r, playerMovedMsg{Type: "mc_player_moved", SessionID: sid, X: nx, Y: ny})
}

// handleMine starts a dig on an adjacent tile. Duration follows the tool
// rule in the content package; hardness 0 finishes immediately.
func (m *Manager) handleMine(sid types.SessionIdType, x, y int) {
	r, p := m.playingPlayer(sid)
	if r == nil {
		return
	}
	defer r.mu.Unlock()

	if world.L1Dist(p.X, p.Y, x, y) > 1 {
		return
	}
	tile, ok := r.Grid.Get(x, y)
	if !ok {
		return
	}
	block := content.BlockByID(tile.Block)
	if !block.Mineable {
		return
	}
	held := p.heldItem()
	if block.RequiredTier > 0 && (held.Tool != block.PreferredTool || held.Tier < block.RequiredTier) {
		m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "better tool required"))
		return
	}

	total := content.MiningTicks(block, held)
	if total <= 0 {
		// instant break, same tick as the request
		m.finishMining(r, p, x, y, tile)
		return
	}
	p.Mining = &MiningJob{X: x, Y: y, Total: total}
	m.broadcast(r, miningStartedMsg{Type: "mc_mining_started", SessionID: sid, X: x, Y: y, Total: total})
}

// finishMining rolls drops with a position-seeded stream and replaces the
// tile with its biome's exposed block. Caller holds the room lock.
func (m *Manager) finishMining(r *Room, p *Player, x, y int, tile world.Tile) {
	block := content.BlockByID(tile.Block)
	src := prng.CellSource(r.Seed, r.Tick, x, y)

	var drops []slotView
	for _, d := range block.Drops {
		if src.Chance(d.Chance) {
			p.Inventory.Add(d.Item, d.Count)
			drops = append(drops, slotView{Item: d.Item, Count: d.Count})
		}
	}

	exposed := content.ExposedBlock(tile.Biome)
	r.Grid.SetBlock(x, y, exposed)
	p.BlocksMined++
	p.Mining = nil

	m.broadcast(r, tileMinedMsg{
		Type:      "mc_tile_mined",
		SessionID: p.SID,
		X:         x,
		Y:         y,
		Block:     tile.Block,
		Exposed:   exposed,
		Drops:     drops,
	})
}

// handleAttack hits a mob, raid mob, or player by target id, under the
// attack cooldown. Armor soaks half its defense, minimum 1 damage.
func (m *Manager) handleAttack(sid types.SessionIdType, targetID string) {
	r, p := m.playingPlayer(sid)
	if r == nil {
		return
	}
	defer r.mu.Unlock()

	if r.Tick-p.LastAttackTick < uint64(m.cfg.AttackCooldown) {
		return
	}

	dmg := fistDamage
	if held := p.heldItem(); held.Damage > 0 {
		dmg = held.Damage
	}

	// Try players first: target ids of sessions are longer strings, mob ids
	// are numeric, but a map probe is cheaper than classifying.
	if victim, ok := r.Players[types.SessionIdType(targetID)]; ok && victim != p {
		if victim.Dead || world.L1Dist(p.X, p.Y, victim.X, victim.Y) > m.cfg.AttackRange {
			return
		}
		p.LastAttackTick = r.Tick
		m.damagePlayer(r, victim, dmg, string(sid))
		return
	}

	id, err := strconv.ParseInt(targetID, 10, 64)
	if err != nil {
		return
	}
	if mob, ok := r.Mobs[id]; ok {
		if world.L1Dist(p.X, p.Y, mob.X, mob.Y) > m.cfg.AttackRange {
			return
		}
		p.LastAttackTick = r.Tick
		m.damageMob(r, mob, dmg, p)
		return
	}
	if raid, ok := r.RaidMobs[id]; ok && raid.Side == sideMain {
		if world.L1Dist(p.X, p.Y, raid.X, raid.Y) > m.cfg.AttackRange {
			return
		}
		p.LastAttackTick = r.Tick
		m.damageRaidMob(r, raid, dmg, p)
	}
}

// damagePlayer applies armor-reduced damage and handles death bookkeeping.
// Caller holds the room lock.
func (m *Manager) damagePlayer(r *Room, victim *Player, dmg int, killerID string) {
	reduced := max(1, dmg-victim.Inventory.ArmorDefense()/2)
	victim.HP -= reduced
	m.broadcast(r, damageMsg{
		Type:     "mc_damage",
		TargetID: string(victim.SID),
		SourceID: killerID,
		Amount:   reduced,
		HP:       max(0, victim.HP),
	})
	if victim.HP <= 0 {
		m.killPlayer(r, victim, killerID)
	}
}

// killPlayer marks death and schedules the respawn; broadcast fires once.
func (m *Manager) killPlayer(r *Room, victim *Player, killerID string) {
	if victim.Dead {
		return
	}
	victim.Dead = true
	victim.HP = 0
	victim.Mining = nil
	victim.RespawnTick = r.Tick + uint64(m.cfg.RespawnTicks)
	if killer, ok := r.Players[types.SessionIdType(killerID)]; ok && killer != victim {
		killer.Kills++
	}
	m.broadcast(r, playerDiedMsg{
		Type:        "mc_player_died",
		SessionID:   victim.SID,
		KillerID:    killerID,
		RespawnTick: victim.RespawnTick,
	})
}

func (m *Manager) damageMob(r *Room, mob *Mob, dmg int, attacker *Player) {
	mob.HP -= dmg
	m.broadcast(r, damageMsg{
		Type:     "mc_damage",
		TargetID: strconv.FormatInt(mob.ID, 10),
		SourceID: string(attacker.SID),
		Amount:   dmg,
		HP:       max(0, mob.HP),
	})
	if mob.HP > 0 {
		return
	}
	delete(r.Mobs, mob.ID)
	attacker.Kills++

	var drops []slotView
	if stats, ok := content.MobByID(mob.Type); ok {
		src := prng.CellSource(r.Seed, r.Tick, mob.X, mob.Y)
		for _, d := range stats.Drops {
			if src.Chance(d.Chance) {
				attacker.Inventory.Add(d.Item, d.Count)
				drops = append(drops, slotView{Item: d.Item, Count: d.Count})
			}
		}
	}
	m.broadcast(r, mobDiedMsg{Type: "mc_mob_died", ID: mob.ID, KillerID: attacker.SID, Drops: drops})
}

func (m *Manager) damageRaidMob(r *Room, raid *RaidMob, dmg int, attacker *Player) {
	raid.HP -= dmg
	m.broadcast(r, damageMsg{
		Type:     "mc_damage",
		TargetID: strconv.FormatInt(raid.ID, 10),
		SourceID: string(attacker.SID),
		Amount:   dmg,
		HP:       max(0, raid.HP),
	})
	if raid.HP > 0 {
		return
	}
	delete(r.RaidMobs, raid.ID)
	attacker.Kills++
	m.broadcast(r, mobDiedMsg{Type: "mc_mob_died", ID: raid.ID, KillerID: attacker.SID})
}

// handlePlaceBlock puts a placeable item down on an adjacent air-like tile.
func (m *Manager) handlePlaceBlock(sid types.SessionIdType, x, y, slot int) {
	r, p := m.playingPlayer(sid)
	if r == nil {
		return
	}
	defer r.mu.Unlock()

	if slot < 0 || slot >= inventorySize || world.L1Dist(p.X, p.Y, x, y) != 1 {
		return
	}
	tile, ok := r.Grid.Get(x, y)
	if !ok || !content.BlockByID(tile.Block).AirLike() || r.playerAt(x, y) != nil {
		return
	}
	s := p.Inventory[slot]
	if s.Count == 0 {
		return
	}
	props, ok := content.ItemByID(s.Item)
	if !ok || props.Placeable == "" {
		return
	}
	if !p.Inventory.Consume(slot) {
		return
	}
	r.Grid.SetBlock(x, y, props.Placeable)
	m.broadcast(r, blockPlacedMsg{Type: "mc_block_placed", SessionID: sid, X: x, Y: y, Block: props.Placeable})
}

// handleEat consumes an edible item, restoring hunger up to the cap.
func (m *Manager) handleEat(sid types.SessionIdType, slot int) {
	r, p := m.playingPlayer(sid)
	if r == nil {
		return
	}
	defer r.mu.Unlock()

	if slot < 0 || slot >= inventorySize {
		return
	}
	s := p.Inventory[slot]
	if s.Count == 0 {
		return
	}
	props, ok := content.ItemByID(s.Item)
	if !ok || props.Nutrition <= 0 || p.Hunger >= maxHunger {
		return
	}
	if !p.Inventory.Consume(slot) {
		return
	}
	p.Hunger = min(maxHunger, p.Hunger+props.Nutrition)
	m.sender.Send(sid, struct {
		Type   string `json:"type"`
		Hunger int    `json:"hunger"`
	}{Type: "mc_hunger_update", Hunger: p.Hunger})
}

func (m *Manager) handleSelectSlot(sid types.SessionIdType, slot int) {
	r, p := m.playingPlayer(sid)
	if r == nil {
		return
	}
	defer r.mu.Unlock()
	if slot >= 0 && slot < hotbarSize {
		p.SelectedSlot = slot
	}
}

// handleCraft applies a recipe if its ingredients and station are in reach.
// Station reach is any matching block within L1 distance 2.
func (m *Manager) handleCraft(sid types.SessionIdType, recipeID string) {
	r, p := m.playingPlayer(sid)
	if r == nil {
		return
	}
	defer r.mu.Unlock()

	recipe, ok := content.Recipes[recipeID]
	if !ok {
		m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "unknown recipe"))
		return
	}
	nearTable := r.blockNearby(p.X, p.Y, content.BlockCraftingTable)
	nearFurnace := r.blockNearby(p.X, p.Y, content.BlockFurnace)
	if !content.CanCraft(recipe, p.Inventory.Counts(), nearTable, nearFurnace) {
		m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "missing ingredients or station"))
		return
	}
	if !p.Inventory.RemoveItems(recipe.Ingredients) {
		return
	}
	p.Inventory.Add(recipe.Output, recipe.OutputCount)
	m.sender.Send(sid, craftedMsg{Type: "mc_crafted", RecipeID: recipe.ID, Item: recipe.Output, Count: recipe.OutputCount})
}

// blockNearby reports a block id within L1 distance 2. Caller holds the lock.
func (r *Room) blockNearby(cx, cy int, id content.BlockID) bool {
	found := false
	r.Grid.VisitL1(cx, cy, 2, func(x, y int, t world.Tile) {
		if t.Block == id {
			found = true
		}
	})
	return found
}

// handleChat relays a trimmed chat line to the room; dead players may talk.
func (m *Manager) handleChat(sid types.SessionIdType, text string) {
	text = protocol.CleanChat(text)
	if text == "" {
		return
	}
	r := m.roomOf(sid)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.Players[sid]
	if p == nil {
		return
	}
	m.broadcast(r, chatMessageMsg{Type: "mc_chat_message", SessionID: sid, Name: p.Name, Text: text})
}
