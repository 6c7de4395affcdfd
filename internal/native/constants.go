package native

// GstMessageType bits.
const (
	MessageUnknown         uint32 = 0
	MessageEOS             uint32 = 1 << 0
	MessageError           uint32 = 1 << 1
	MessageWarning         uint32 = 1 << 2
	MessageInfo            uint32 = 1 << 3
	MessageTag             uint32 = 1 << 4
	MessageBuffering       uint32 = 1 << 5
	MessageStateChanged    uint32 = 1 << 6
	MessageStateDirty      uint32 = 1 << 7
	MessageStepDone        uint32 = 1 << 8
	MessageClockProvide    uint32 = 1 << 9
	MessageClockLost       uint32 = 1 << 10
	MessageNewClock        uint32 = 1 << 11
	MessageStructureChange uint32 = 1 << 12
	MessageStreamStatus    uint32 = 1 << 13
	MessageApplication     uint32 = 1 << 14
	MessageElement         uint32 = 1 << 15
	MessageSegmentStart    uint32 = 1 << 16
	MessageSegmentDone     uint32 = 1 << 17
	MessageDurationChanged uint32 = 1 << 18
	MessageLatency         uint32 = 1 << 19
	MessageAsyncStart      uint32 = 1 << 20
	MessageAsyncDone       uint32 = 1 << 21
	MessageRequestState    uint32 = 1 << 22
	MessageStepStart       uint32 = 1 << 23
	MessageQOS             uint32 = 1 << 24
	MessageProgress        uint32 = 1 << 25
	MessageTOC             uint32 = 1 << 26
	MessageResetTime       uint32 = 1 << 27
	MessageStreamStart     uint32 = 1 << 28
	MessageNeedContext     uint32 = 1 << 29
	MessageHaveContext     uint32 = 1 << 30
	MessageExtended        uint32 = 1 << 31

	MessageDeviceAdded        = MessageExtended + 1
	MessageDeviceRemoved      = MessageExtended + 2
	MessagePropertyNotify     = MessageExtended + 3
	MessageStreamCollection   = MessageExtended + 4
	MessageStreamsSelected    = MessageExtended + 5
	MessageRedirect           = MessageExtended + 6
	MessageDeviceChanged      = MessageExtended + 7
	MessageInstantRateRequest = MessageExtended + 8

	MessageAny uint32 = 0xffffffff
)

// GstState values.
const (
	StateVoidPending int32 = 0
	StateNull        int32 = 1
	StateReady       int32 = 2
	StatePaused      int32 = 3
	StatePlaying     int32 = 4
)

// GstStateChangeReturn values.
const (
	StateChangeFailure   int32 = 0
	StateChangeSuccess   int32 = 1
	StateChangeAsync     int32 = 2
	StateChangeNoPreroll int32 = 3
)

// GstFormat values.
const (
	FormatUndefined int32 = 0
	FormatDefault   int32 = 1
	FormatBytes     int32 = 2
	FormatTime      int32 = 3
	FormatBuffers   int32 = 4
	FormatPercent   int32 = 5
)

// GstDebugLevel values.
const (
	LevelNone    int32 = 0
	LevelError   int32 = 1
	LevelWarning int32 = 2
	LevelFixme   int32 = 3
	LevelInfo    int32 = 4
	LevelDebug   int32 = 5
	LevelLog     int32 = 6
	LevelTrace   int32 = 7
	LevelMemdump int32 = 9
)
