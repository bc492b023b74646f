// Package memory holds the GBA's fixed backing stores: BIOS (read-only),
// EWRAM and IWRAM. Per-region mirroring and bus-level dispatch live in
// internal/bus; this package only owns the byte arrays and the region
// boundary constants the rest of the core keys off of.
package memory

const (
	BIOS_START  = 0x00000000
	BIOS_END    = 0x00003FFF
	BIOS_SIZE   = BIOS_END - BIOS_START + 1 // 16 KiB
	EWRAM_START = 0x02000000
	EWRAM_END   = 0x0203FFFF
	EWRAM_SIZE  = 0x40000 // 256 KiB, mirrored every 256 KiB
	IWRAM_START = 0x03000000
	IWRAM_END   = 0x03007FFF
	IWRAM_SIZE  = 0x8000 // 32 KiB, mirrored every 32 KiB
	IO_START    = 0x04000000
	IO_END      = 0x040003FF
	IO_SIZE     = IO_END - IO_START + 1
	PRAM_START  = 0x05000000
	PRAM_END    = 0x050003FF
	PRAM_SIZE   = PRAM_END - PRAM_START + 1 // 1 KiB
	VRAM_START  = 0x06000000
	VRAM_END    = 0x06017FFF
	VRAM_SIZE   = VRAM_END - VRAM_START + 1 // 96 KiB
	OAM_START   = 0x07000000
	OAM_END     = 0x070003FF
	OAM_SIZE    = OAM_END - OAM_START + 1 // 1 KiB
	ROM_START   = 0x08000000
	ROM_MIRROR1 = 0x0A000000
	ROM_MIRROR2 = 0x0C000000
	ROM_END     = 0x09FFFFFF
	ROM_MAXSIZE = 32 * 1024 * 1024
	BACKUP_START = 0x0E000000
	BACKUP_END   = 0x0E01FFFF
)
