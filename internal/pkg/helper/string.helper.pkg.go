package helper

import (
	"encoding/json"
	"strconv"
	"strings"
)

func StringToStruct[I any](payload string) (result *I, err error) {
	err = json.Unmarshal([]byte(payload), &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StringToFloat64 parses rupiah-style amounts: "Rp 1.250,5" -> 1250.5.
func StringToFloat64(payload string) (*float64, error) {
	payload = strings.TrimSpace(payload)
	payload = strings.TrimPrefix(payload, "Rp.")
	payload = strings.TrimPrefix(payload, "Rp")

	payload = strings.ReplaceAll(payload, ".", "")
	payload = strings.ReplaceAll(payload, ",", ".")

	result, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
