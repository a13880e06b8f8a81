package runner

import (
	"bytes"
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/mmr-tortoise/cratectl/internal/model"
)

// Messages for the three stdin payload failures. All exit 1 and none is
// retried.
const (
	MsgStdinUnreadable = "Standard in did not exist or was not UTF-8"
	MsgStdinNotJSON    = "Could not parse standard in as JSON"
	MsgStdinBadInput   = "Could not process standard in as input"
)

// NoPayload is the payload type of commands that do not read stdin.
type NoPayload struct{}

// Validator is implemented by payload types that check their own
// invariants after decoding.
type Validator interface {
	Validate() error
}

// PayloadFromStdin reads r to completion and decodes it as a JSON payload
// of type P. Unknown fields are rejected so a payload meant for another
// command does not silently decode.
func PayloadFromStdin[P any](r io.Reader) (P, error) {
	var payload P

	if r == nil {
		return payload, model.NewCLIError(model.ExitGeneralError, MsgStdinUnreadable)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return payload, model.WrapCLIError(model.ExitGeneralError, MsgStdinUnreadable, err)
	}
	if !utf8.Valid(data) {
		return payload, model.NewCLIError(model.ExitGeneralError, MsgStdinUnreadable)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return payload, model.WrapCLIError(model.ExitGeneralError, MsgStdinNotJSON, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return payload, model.WrapCLIError(model.ExitGeneralError, MsgStdinBadInput, err)
	}

	if v, ok := any(&payload).(Validator); ok {
		if err := v.Validate(); err != nil {
			return payload, model.WrapCLIError(model.ExitGeneralError, MsgStdinBadInput, err)
		}
	}
	return payload, nil
}
