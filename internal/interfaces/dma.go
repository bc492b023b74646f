package interfaces

// DMAController is the machine-facing contract for the 4-channel DMA engine
// (spec.md §4.6). The bus calls OnIOWrite when a DMA control/address register
// is touched; the PPU/APU fire the trigger hooks at the appropriate period
// boundary.
type DMAController interface {
	OnCntWrite(channel int)
	OnHBlank()
	OnVBlank()
	OnFIFOEmpty(fifo int) // fifo: 0=FIFO A (channels feeding it), 1=FIFO B
	OnVideoCapture()      // channel 3's per-scanline "special" video-capture trigger
	EEPROMWidthHint() int // EEPROM address width (6 or 14) implied by the most recent channel-3 transfer, for backup.EEPROM
}
