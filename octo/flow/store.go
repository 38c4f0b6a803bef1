package flow

import (
	"encoding/binary"
	"errors"
	"fmt"

	"octopus/hal"
)

const countBytes = 8

var ErrUnaligned = errors.New("flow: address not aligned to erase block")

// FlashStore keeps the count as a little-endian uint64 at a fixed flash
// address. The erase block holding it is owned by the store.
//
// StoreCount runs from the pulse interrupt: it must not allocate, so the
// scratch buffer lives in the store and flash errors are returned unwrapped.
// Calls must not overlap; Counter serializes them.
type FlashStore struct {
	flash hal.Flash
	addr  uint32
	buf   [countBytes]byte
}

func NewFlashStore(flash hal.Flash, addr uint32) (*FlashStore, error) {
	if flash == nil {
		return nil, errors.New("flow: nil flash")
	}
	bs := flash.EraseBlockBytes()
	if bs == 0 {
		return nil, fmt.Errorf("flow: flash has no erase block size: %w", hal.ErrNotImplemented)
	}
	if addr%bs != 0 {
		return nil, fmt.Errorf("flow: addr 0x%x block %d: %w", addr, bs, ErrUnaligned)
	}
	if uint64(addr)+uint64(bs) > uint64(flash.SizeBytes()) {
		return nil, fmt.Errorf("flow: addr 0x%x beyond flash size %d", addr, flash.SizeBytes())
	}
	return &FlashStore{flash: flash, addr: addr}, nil
}

// LoadCount returns 0 for an erased slot.
func (s *FlashStore) LoadCount() (uint64, error) {
	b := s.buf[:]
	if _, err := s.flash.ReadAt(b, s.addr); err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}
	erased := true
	for _, v := range b {
		if v != 0xFF {
			erased = false
			break
		}
	}
	if erased {
		return 0, nil
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (s *FlashStore) StoreCount(n uint64) error {
	if err := s.flash.Erase(s.addr, s.flash.EraseBlockBytes()); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(s.buf[:], n)
	_, err := s.flash.WriteAt(s.buf[:], s.addr)
	return err
}
