package services

// Envelope is the uniform result every manager returns. On failure Message
// carries the text shown to the caller and Err reports which kind of
// failure occurred.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`

	err error
}

func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

func OKMessage(msg string) Envelope {
	return Envelope{Success: true, Message: msg}
}

func Fail(err error) Envelope {
	return Envelope{Success: false, Message: err.Error(), err: err}
}

// Err is nil for successful envelopes and one of *ValidationError,
// *NotFoundError, *WriteError or *StoreUnavailableError otherwise.
func (e Envelope) Err() error {
	return e.err
}
