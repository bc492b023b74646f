package io

// Register byte offsets from 0x04000000, per spec.md §3/§6's I/O register
// map. Only the registers this core's components actually dispatch on are
// named; everything else reads/writes as plain RW storage.
const (
	DISPCNT  = 0x000
	DISPSTAT = 0x004
	VCOUNT   = 0x006

	KEYINPUT = 0x130
	KEYCNT   = 0x132

	IE   = 0x200
	IF   = 0x202
	IME  = 0x208
	HALTCNT = 0x301

	// Timer channel N: counter/reload at +0, control at +2. Stride 4.
	TM0CNT_L = 0x100
	TM0CNT_H = 0x102
	TM1CNT_L = 0x104
	TM1CNT_H = 0x106
	TM2CNT_L = 0x108
	TM2CNT_H = 0x10A
	TM3CNT_L = 0x10C
	TM3CNT_H = 0x10E

	// DMA channel N: src(4)/dst(4)/count(2)/control(2). Stride 12, base 0xB0.
	DMA0SAD  = 0x0B0
	DMA0DAD  = 0x0B4
	DMA0CNT_L = 0x0B8
	DMA0CNT_H = 0x0BA
	DMA1SAD  = 0x0BC
	DMA1DAD  = 0x0C0
	DMA1CNT_L = 0x0C4
	DMA1CNT_H = 0x0C6
	DMA2SAD  = 0x0C8
	DMA2DAD  = 0x0CC
	DMA2CNT_L = 0x0D0
	DMA2CNT_H = 0x0D2
	DMA3SAD  = 0x0D4
	DMA3DAD  = 0x0D8
	DMA3CNT_L = 0x0DC
	DMA3CNT_H = 0x0DE

	FIFO_A = 0x0A0
	FIFO_B = 0x0A4
)

// TimerChannelStride is the byte distance between consecutive timer channel
// register blocks.
const TimerChannelStride = 4

// DMAChannelStride is the byte distance between consecutive DMA channel
// register blocks.
const DMAChannelStride = 12
