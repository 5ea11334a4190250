package schema

import (
	"encoding/json"
	"errors"
)

// Failure records why an image analysis did not produce attributes.
type Failure struct {
	Reason string `json:"reason"`
	Raw    string `json:"raw,omitzero"`

	Error error `json:"-"`
}

type failureAlias struct {
	Reason string `json:"reason"`
	Raw    string `json:"raw,omitzero"`
	Error  string `json:"error,omitzero"`
}

func (f *Failure) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}

	a := failureAlias{
		Reason: f.Reason,
		Raw:    f.Raw,
	}
	if f.Error != nil {
		a.Error = f.Error.Error()
	}

	return json.Marshal(a)
}

func (f *Failure) UnmarshalJSON(data []byte) error {
	var a failureAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	f.Reason = a.Reason
	f.Raw = a.Raw
	if a.Error != "" {
		f.Error = errors.New(a.Error)
	}

	return nil
}
