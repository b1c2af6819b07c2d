package types

const (
	EnvelopeSuccess = "success"
	EnvelopeError   = "error"

	MessageOK = "ok"
)

// Envelope is the body of every API response. Data is null on errors.
type Envelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}
