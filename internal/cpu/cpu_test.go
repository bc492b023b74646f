package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatBus is a byte-addressable scratch memory for driving CPU.Execute/Step
// through real fetch-decode-execute sequences without needing the full bus
// (spec.md §4.4's CPU package doesn't own memory itself).
type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read8(addr uint32) uint8     { return b.mem[addr&0xFFFF] }
func (b *flatBus) Write8(addr uint32, v uint8) { b.mem[addr&0xFFFF] = v }

func (b *flatBus) Read16(addr uint32) uint16 {
	lo, hi := b.mem[addr&0xFFFF], b.mem[(addr+1)&0xFFFF]
	return uint16(lo) | uint16(hi)<<8
}

func (b *flatBus) Write16(addr uint32, v uint16) {
	b.mem[addr&0xFFFF] = uint8(v)
	b.mem[(addr+1)&0xFFFF] = uint8(v >> 8)
}

func (b *flatBus) Read32(addr uint32) uint32 {
	return uint32(b.Read16(addr)) | uint32(b.Read16(addr+2))<<16
}

func (b *flatBus) Write32(addr uint32, v uint32) {
	b.Write16(addr, uint16(v))
	b.Write16(addr+2, uint16(v>>16))
}

func (b *flatBus) Tick(cycles int) {}

func newTestCPU() (*CPU, *flatBus) {
	bus := &flatBus{}
	return NewCPU(bus, nil, nil), bus
}

// --- Data processing flags ---

func TestDataProcessingADDSCarryAndZero(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(1, 0xFFFFFFFF)
	c.registers.SetReg(2, 1)

	require.NoError(t, c.Execute(0xE0910002)) // ADDS R0, R1, R2

	assert.EqualValues(t, 0, c.registers.GetReg(0))
	assert.True(t, c.registers.GetFlagZ())
	assert.True(t, c.registers.GetFlagC())
	assert.False(t, c.registers.GetFlagN())
	assert.False(t, c.registers.GetFlagV())
}

func TestDataProcessingADDSSignedOverflow(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(1, 0x7FFFFFFF)
	c.registers.SetReg(2, 1)

	require.NoError(t, c.Execute(0xE0910002)) // ADDS R0, R1, R2

	assert.EqualValues(t, 0x80000000, c.registers.GetReg(0))
	assert.True(t, c.registers.GetFlagN())
	assert.True(t, c.registers.GetFlagV())
	assert.False(t, c.registers.GetFlagC())
}

func TestDataProcessingSUBSCarryIsNoBorrow(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(1, 5)
	c.registers.SetReg(2, 5)

	require.NoError(t, c.Execute(0xE0510002)) // SUBS R0, R1, R2

	assert.EqualValues(t, 0, c.registers.GetReg(0))
	assert.True(t, c.registers.GetFlagZ())
	assert.True(t, c.registers.GetFlagC(), "SUBS carry means no borrow occurred")
}

func TestDataProcessingMOVImmediate(t *testing.T) {
	c, _ := newTestCPU()
	require.NoError(t, c.Execute(0xE3A00005)) // MOV R0, #5
	assert.EqualValues(t, 5, c.registers.GetReg(0))
}

// --- Shifter in context ---

func TestShifterLSRImmediateCarryOut(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(1, 0b11)

	require.NoError(t, c.Execute(0xE1B000A1)) // MOVS R0, R1, LSR #1

	assert.EqualValues(t, 1, c.registers.GetReg(0))
	assert.True(t, c.registers.GetFlagC(), "bit shifted out last (bit 0) becomes carry")
	assert.False(t, c.registers.GetFlagZ())
}

// TestLSLBy32ViaMOVS pins spec.md §8's documented boundary: a
// register-specified LSL shift amount of exactly 32 zeroes the result and
// takes its carry-out from the source's bit 0, distinct from both the
// amount<32 and amount>32 cases.
func TestLSLBy32ViaMOVS(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(1, 0x80000001)
	c.registers.SetReg(2, 32)

	require.NoError(t, c.Execute(0xE1B00211)) // MOVS R0, R1, LSL R2

	assert.EqualValues(t, 0, c.registers.GetReg(0))
	assert.True(t, c.registers.GetFlagC())
	assert.True(t, c.registers.GetFlagZ())
}

// --- Load/Store ---

func TestLoadStoreWordRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(0, 0x1000)
	c.registers.SetReg(1, 0xCAFEBABE)

	require.NoError(t, c.Execute(0xE5801000)) // STR R1, [R0]
	require.NoError(t, c.Execute(0xE5902000)) // LDR R2, [R0]

	assert.EqualValues(t, 0xCAFEBABE, c.registers.GetReg(2))
}

// --- Block data transfer ---

func TestBlockDataTransferStoreLoadRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(0, 0x2000)
	c.registers.SetReg(1, 0x11111111)
	c.registers.SetReg(2, 0x22222222)

	require.NoError(t, c.Execute(0xE8A00006)) // STMIA R0!, {R1, R2}
	assert.EqualValues(t, 0x2008, c.registers.GetReg(0), "base advances by 4*n")

	c.registers.SetReg(0, 0x2000)
	c.registers.SetReg(1, 0)
	c.registers.SetReg(2, 0)

	require.NoError(t, c.Execute(0xE8B00006)) // LDMIA R0!, {R1, R2}
	assert.EqualValues(t, 0x11111111, c.registers.GetReg(1))
	assert.EqualValues(t, 0x22222222, c.registers.GetReg(2))
	assert.EqualValues(t, 0x2008, c.registers.GetReg(0))
}

// TestBlockDataTransferEmptyRegisterList pins spec.md §4.4's documented
// quirk: an empty register list still transfers R15 at the base address and
// still advances the base by 0x40.
func TestBlockDataTransferEmptyRegisterList(t *testing.T) {
	c, bus := newTestCPU()
	c.registers.SetReg(0, 0x3000)
	c.registers.PC = 0x08000008

	require.NoError(t, c.Execute(0xE8A00000)) // STMIA R0!, {} (empty list)

	assert.EqualValues(t, 0x0800000C, bus.Read32(0x3000), "stored value is PC+4")
	assert.EqualValues(t, 0x3040, c.registers.GetReg(0), "base still advances by 0x40")

	bus.Write32(0x3000, 0x08123450)
	c.registers.SetReg(0, 0x3000)

	require.NoError(t, c.Execute(0xE8B00000)) // LDMIA R0!, {} (empty list)

	assert.EqualValues(t, 0x08123450, c.registers.PC)
	assert.EqualValues(t, 0x3040, c.registers.GetReg(0))
}

// --- Multiply ---

func TestMultiplySetsZeroFlag(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(1, 0)
	c.registers.SetReg(2, 5)

	require.NoError(t, c.Execute(0xE0100291)) // MULS R0, R1, R2

	assert.EqualValues(t, 0, c.registers.GetReg(0))
	assert.True(t, c.registers.GetFlagZ())
}

func TestMultiplySetsNegativeFlag(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(1, 0xFFFFFFFF)
	c.registers.SetReg(2, 1)

	require.NoError(t, c.Execute(0xE0100291)) // MULS R0, R1, R2

	assert.EqualValues(t, 0xFFFFFFFF, c.registers.GetReg(0))
	assert.True(t, c.registers.GetFlagN())
	assert.False(t, c.registers.GetFlagZ())
}

// --- PSR transfer ---

func TestPSRTransferMRSReadsCPSR(t *testing.T) {
	c, _ := newTestCPU()
	require.NoError(t, c.Execute(0xE10F0000)) // MRS R0, CPSR
	assert.EqualValues(t, 0xD3, c.registers.GetReg(0), "SVC mode, IRQ/FIQ disabled, ARM state, post-reset")
}

func TestPSRTransferMSRWritesFlagsAndControlOnly(t *testing.T) {
	c, _ := newTestCPU()
	c.registers.SetReg(0, 0xF0000010) // NZCV set, mode = User (0x10)

	require.NoError(t, c.Execute(0xE129F000)) // MSR CPSR_fc, R0

	assert.True(t, c.registers.GetFlagN())
	assert.True(t, c.registers.GetFlagZ())
	assert.True(t, c.registers.GetFlagC())
	assert.True(t, c.registers.GetFlagV())
	assert.EqualValues(t, USRMode, c.registers.GetMode())
}

// --- Branch ---

func TestBranchWithLinkThroughStep(t *testing.T) {
	c, bus := newTestCPU()
	c.registers.SetThumbState(false)
	c.registers.PC = 0
	bus.Write32(0, 0xEB00003E) // BL 0x100

	c.Step()

	assert.EqualValues(t, 0x100, c.registers.PC)
	assert.EqualValues(t, 4, c.registers.GetReg(14), "LR holds the address of the instruction after BL")
}

// --- Thumb long branch with link ---

// TestThumbLongBranchWithLink pins spec.md §8's two-instruction BL sequence:
// the first half stashes a PC-relative high part in LR, the second combines
// it with the low part and leaves the Thumb return address (odd, for BX) in LR.
func TestThumbLongBranchWithLink(t *testing.T) {
	c, bus := newTestCPU()
	c.registers.SetThumbState(true)
	c.registers.PC = 0
	bus.Write16(0, 0xF000) // BL high half, offset 0
	bus.Write16(2, 0xF800) // BL low half, offset 0

	c.Step()
	assert.EqualValues(t, 4, c.registers.GetReg(14))

	c.Step()
	assert.EqualValues(t, 4, c.registers.PC)
	assert.EqualValues(t, 5, c.registers.GetReg(14), "return address has the Thumb bit set")
}
