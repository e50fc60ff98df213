package providers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ordinalPattern     = regexp.MustCompile(`alert number (\d+) of (\d+)`)
	temperaturePattern = regexp.MustCompile(`temperature is (-?[0-9.]+) degrees`)
)

// TemplateText builds alert text locally from the prompt's ordinal and
// temperature. It is used when no Gemini key is configured.
type TemplateText struct{}

func (TemplateText) Generate(_ context.Context, prompt string) (string, error) {
	ord := ordinalPattern.FindStringSubmatch(prompt)
	temp := temperaturePattern.FindStringSubmatch(prompt)
	if ord == nil || temp == nil {
		return "", fmt.Errorf("prompt is missing alert ordinal or temperature")
	}
	n, _ := strconv.Atoi(ord[1])
	return fmt.Sprintf(
		"This is an urgent safety alert. Alert %d of %s. The temperature inside the car is %s degrees Fahrenheit. Check on the vehicle immediately.",
		n, ord[2], temp[1],
	), nil
}
