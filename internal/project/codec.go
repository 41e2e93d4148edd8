package project

import (
	"encoding/json"
	"strings"

	"toksmith/internal/script"
	"toksmith/internal/services"
)

func encodeScript(sc *script.Script) (string, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "project", "encode script", "", err)
	}
	return string(data), nil
}

// DecodeScript parses a stored script payload.
func DecodeScript(raw string) (*script.Script, error) {
	return decodeScript(raw)
}

func decodeScript(raw string) (*script.Script, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, services.Wrap(services.ErrValidation, "project", "decode script", "project has no script", nil)
	}
	var sc script.Script
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "project", "decode script", "stored script is unreadable", err)
	}
	return &sc, nil
}
