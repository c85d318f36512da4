package card

// Transport is the host transport state, passed through to cards unmodified.
type Transport struct {
	Playing       bool    `json:"playing"`
	Tempo         float64 `json:"tempo"`
	TimeSignature [2]int  `json:"time_signature"`
}

// Engine describes the host audio engine a composition runs inside.
type Engine struct {
	SampleRate float64 `json:"sample_rate"`
	BufferSize int     `json:"buffer_size"`
}

// Context is the host-supplied execution context. The engine passes it
// through to every card unmodified; only the host advances Tick.
type Context struct {
	Transport Transport `json:"transport"`
	Engine    Engine    `json:"engine"`
	Tick      uint64    `json:"tick"`
}

// NewContext returns a context with common host defaults: stopped transport
// at 120 BPM in 4/4, 44.1kHz engine with 512-sample buffers, tick zero.
func NewContext() *Context {
	return &Context{
		Transport: Transport{Tempo: 120, TimeSignature: [2]int{4, 4}},
		Engine:    Engine{SampleRate: 44100, BufferSize: 512},
	}
}
