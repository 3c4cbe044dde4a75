package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// ErrEmptyDefinition is returned when a stored or generated blob is blank.
var ErrEmptyDefinition = errors.New("schema: definition payload is empty")

// ParseDefinition decodes a serialized FormDefinition. Stored blobs carry no
// version marker, so a structurally incompatible payload surfaces here as a
// parse error rather than a partial result.
func ParseDefinition(data []byte) (FormDefinition, error) {
	if strings.TrimSpace(string(data)) == "" {
		return FormDefinition{}, ErrEmptyDefinition
	}
	var def FormDefinition
	if err := sonic.Unmarshal(data, &def); err != nil {
		return FormDefinition{}, fmt.Errorf("schema: parse definition: %w", err)
	}
	return def, nil
}

// Encode serializes the definition back to its persisted JSON form. Legacy
// bare-string options are already normalised at this point, so an encode
// followed by a parse is structurally stable.
func (d FormDefinition) Encode() ([]byte, error) {
	payload, err := sonic.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("schema: encode definition: %w", err)
	}
	return payload, nil
}
