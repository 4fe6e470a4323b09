package formcheck

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
)

// Visibility reports whether a located element is visible.
type Visibility interface {
	IsVisible(ctx context.Context, loc page.Locator) (bool, error)
}

// HiddenMessage is the failure line for a field that is not visible.
func HiddenMessage(loc page.Locator) string {
	return fmt.Sprintf("The field at %s is not visible", loc.Value)
}

// CheckAll probes every field in order and returns one failure line per field
// that is hidden or missing. Errors other than a missing element abort.
func CheckAll(ctx context.Context, v Visibility, fields []registry.FieldSpec) ([]string, error) {
	var failures []string
	for _, field := range fields {
		visible, err := v.IsVisible(ctx, field.Locator)
		if err != nil {
			if !page.HasCode(err, page.CodeElementNotFound) {
				return failures, err
			}
			visible = false
		}
		if !visible {
			slog.Warn("form field not visible", "field", field.Name, "locator", field.Locator.String())
			failures = append(failures, HiddenMessage(field.Locator))
		}
	}
	return failures, nil
}
