package vscope

// Wire constants for the framed binary protocol.
const (
	syncByte        byte = 0xC8
	protocolVersion byte = 1

	// frameTimeoutMicros bounds how long the Frame Receiver will wait
	// between bytes of a partially-received frame before discarding it.
	frameTimeoutMicros uint32 = 20000
)

// messageType is the TYPE byte of a frame.
type messageType byte

const (
	msgGetInfo            messageType = 0x01
	msgGetTiming          messageType = 0x02
	msgSetTiming          messageType = 0x03
	msgGetState           messageType = 0x04
	msgSetState           messageType = 0x05
	msgTrigger            messageType = 0x06
	msgGetFrame           messageType = 0x07
	msgGetSnapshotHeader  messageType = 0x08
	msgGetSnapshotData    messageType = 0x09
	msgGetVarList         messageType = 0x0A
	msgGetChannelMap      messageType = 0x0B
	msgSetChannelMap      messageType = 0x0C
	msgGetChannelLabels   messageType = 0x0D
	msgGetRTLabels        messageType = 0x0E
	msgGetRTBuffer        messageType = 0x0F
	msgSetRTBuffer        messageType = 0x10
	msgGetTrigger         messageType = 0x11
	msgSetTrigger         messageType = 0x12
	msgError              messageType = 0xFF
)
