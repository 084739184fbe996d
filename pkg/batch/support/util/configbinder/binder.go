// Package configbinder binds string properties onto typed structs.
package configbinder

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// BindProperties decodes props into target using `mapstructure` tags.
// Values are weakly typed, so "2015" binds to an int field and "true" to a bool.
// Keys without a matching field are ignored.
func BindProperties(props map[string]string, target interface{}) error {
	if len(props) == 0 {
		return nil
	}
	input := make(map[string]interface{}, len(props))
	for k, v := range props {
		input[k] = v
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to bind properties: %w", err)
	}
	return nil
}
