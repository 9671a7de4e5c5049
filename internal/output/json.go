package output

import (
	"encoding/json"

	"github.com/cybersentry/sentry/pkg/model"
)

// ToJSON encodes an alert in its wire form. Indented output is for humans;
// compact output is one alert per line.
func ToJSON(a model.NetworkAlert, indent bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(a, "", "  ")
	} else {
		data, err = json.Marshal(a)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
