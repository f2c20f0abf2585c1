package extractor

import (
	"fmt"

	apperrors "swecron/pkg/errors"
	"swecron/services/cache"
)

// Engine names accepted by New
const (
	EngineStatic     = "static"
	EnginePlaywright = "playwright"
	EngineChromedp   = "chromedp"
)

// New creates the extractor for engine. blocklist is only used by the static engine.
func New(engine string, blocklist *cache.Blocklist) (Extractor, error) {
	switch engine {
	case EngineStatic:
		return NewStaticExtractor(blocklist), nil
	case EnginePlaywright:
		return NewPlaywrightExtractor(nil), nil
	case EngineChromedp:
		return NewChromedpExtractor(nil), nil
	default:
		return nil, apperrors.NewConfiguration(fmt.Sprintf("unknown engine %q", engine), nil)
	}
}
