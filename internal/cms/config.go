package cms

import (
	"strings"

	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/tidwall/gjson"
)

// CheckConfig verifies that config is a JSON object in which every required
// gjson path resolves.
func CheckConfig(config []byte, required []string) error {
	if !gjson.ValidBytes(config) || !gjson.ParseBytes(config).IsObject() {
		return apperror.Invalid("BlockConfigInvalid", "block config must be a JSON object")
	}
	missing := []string{}
	for _, path := range required {
		if !gjson.GetBytes(config, path).Exists() {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return apperror.Invalid("BlockConfigMissing", "block config is missing {{.Fields}}").
			WithData("Fields", strings.Join(missing, ", "))
	}
	return nil
}

// CheckContent accepts any JSON object as page content.
func CheckContent(content []byte) error {
	if !gjson.ValidBytes(content) || !gjson.ParseBytes(content).IsObject() {
		return apperror.Invalid("PageContentInvalid", "page content must be a JSON object")
	}
	return nil
}
