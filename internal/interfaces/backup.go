package interfaces

// Backup is the tagged-variant contract over None/SRAM/EEPROM/Flash
// (spec.md §4.8, §6). The bus routes 0x0D000000 (EEPROM window) and
// 0x0E000000 (SRAM/Flash window) accesses through whichever variant load_rom
// classified.
type Backup interface {
	Read(addr uint32) uint8
	Write(addr uint32, value uint8)
	Load(data []byte) error
	Save() []byte
	Dirty() bool
}
