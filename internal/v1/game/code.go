// Package game holds the pieces every mode manager shares: room code
// generation, the color palette, the process-wide session→room index, and
// the per-room tick loop driver.
package game

import (
	"crypto/rand"
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Room codes avoid 0/O and 1/I so they survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 5

// NewCode draws a random 5-character room code. 256 is a multiple of 32, so
// indexing bytes into the alphabet carries no modulo bias.
func NewCode() types.RoomCodeType {
	var b [codeLength]byte
	if _, err := rand.Read(b[:]); err != nil {
		// codes only need uniqueness, not secrecy; degrade to clock bits
		v := uint64(time.Now().UnixNano())
		for i := range b {
			b[i] = byte(v >> (8 * i))
		}
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return types.RoomCodeType(b[:])
}

// UniqueCode draws codes until taken reports the candidate free. The space
// has 32^5 entries; collisions at realistic room counts are vanishing, so
// there is no draw cap.
func UniqueCode(taken func(types.RoomCodeType) bool) types.RoomCodeType {
	for {
		code := NewCode()
		if !taken(code) {
			return code
		}
	}
}
