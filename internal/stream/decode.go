package stream

import (
	"encoding/json"
	"fmt"

	"github.com/cybersentry/sentry/pkg/model"
)

// wireAlert uses pointers so absent keys can be told apart from zero values.
type wireAlert struct {
	SrcIP     *string `json:"srcIp"`
	DstIP     *string `json:"dstIp"`
	Timestamp *string `json:"timestamp"`
	RiskLevel *int    `json:"riskLevel"`
	Reason    *string `json:"reason"`
}

// DecodeAlert parses one inbound frame. Every field of the alert must be
// present and both addresses non-empty; unknown keys are ignored. Any
// failure wraps ErrDecode.
func DecodeAlert(data []byte) (model.NetworkAlert, error) {
	var w wireAlert
	if err := json.Unmarshal(data, &w); err != nil {
		return model.NetworkAlert{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch {
	case w.SrcIP == nil:
		return model.NetworkAlert{}, missing("srcIp")
	case w.DstIP == nil:
		return model.NetworkAlert{}, missing("dstIp")
	case w.Timestamp == nil:
		return model.NetworkAlert{}, missing("timestamp")
	case w.RiskLevel == nil:
		return model.NetworkAlert{}, missing("riskLevel")
	case w.Reason == nil:
		return model.NetworkAlert{}, missing("reason")
	}
	if *w.SrcIP == "" || *w.DstIP == "" {
		return model.NetworkAlert{}, fmt.Errorf("%w: empty address", ErrDecode)
	}

	return model.NetworkAlert{
		SrcIP:     *w.SrcIP,
		DstIP:     *w.DstIP,
		Timestamp: *w.Timestamp,
		RiskLevel: *w.RiskLevel,
		Reason:    *w.Reason,
	}, nil
}

func missing(field string) error {
	return fmt.Errorf("%w: missing field %q", ErrDecode, field)
}
