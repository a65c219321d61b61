package models

type OperationStatus string

const (
	OperationSuccess OperationStatus = "success"
	OperationError   OperationStatus = "error"
)

// Envelope is the body of every API response, success or failure.
type Envelope struct {
	Status  OperationStatus `json:"status"`
	Message string          `json:"message"`
	Data    any             `json:"data"`
}

func EmptyData() map[string]any { return map[string]any{} }

func Success(message string, data any) *Envelope {
	if data == nil {
		data = EmptyData()
	}
	return &Envelope{Status: OperationSuccess, Message: message, Data: data}
}

func Failure(message string) *Envelope {
	return &Envelope{Status: OperationError, Message: message, Data: EmptyData()}
}

type FaultKind int

const (
	FaultValidation FaultKind = iota + 1
	FaultNotFound
	FaultBadRequest
	FaultServer
)

func (k FaultKind) String() string {
	switch k {
	case FaultValidation:
		return "ValidationFault"
	case FaultNotFound:
		return "NotFoundFault"
	case FaultBadRequest:
		return "BadRequestFault"
	case FaultServer:
		return "ServerFault"
	default:
		return "UnknownFault"
	}
}

// Fault is a classified failure. Message is exactly what the client sees.
type Fault struct {
	Kind    FaultKind
	Message string
	Err     error
}

func NewFault(kind FaultKind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return f.Kind.String() + ": " + f.Message + ": " + f.Err.Error()
	}
	return f.Kind.String() + ": " + f.Message
}

func (f *Fault) Unwrap() error { return f.Err }

func (f *Fault) Envelope() *Envelope { return Failure(f.Message) }
