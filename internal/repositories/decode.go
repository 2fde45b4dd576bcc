package repositories

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// decodeDocument decodes a raw document into out, keeping out's current values for absent fields.
//
// Decoding is weakly typed: numbers stored as text and text stored as numbers are converted,
// and text that is not a number decodes into numeric fields as zero.
func decodeDocument(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			lenientNumberHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(data)
}

// lenientNumberHook maps unparsable text to the zero value of numeric targets
func lenientNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
	default:
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return reflect.Zero(to).Interface(), nil
	}
	return f, nil
}
