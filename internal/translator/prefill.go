package translator

import (
	"context"

	"go.uber.org/zap"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/content"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/i18n"
)

// Prefiller fills catalog languages missing from an admin save by machine
// translating the default-language input. Translation failures degrade to the
// source text: a flaky translator must never fail an admin save.
type Prefiller struct {
	tr     Translator
	logger *zap.Logger
}

// NewPrefiller creates a prefiller.
func NewPrefiller(tr Translator, logger *zap.Logger) *Prefiller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prefiller{tr: tr, logger: logger}
}

// FillMissing returns inputs extended with one entry per catalog language not
// already present, derived from the default-language entry. The caller must
// have validated that the default language is present.
func (p *Prefiller) FillMissing(ctx context.Context, inputs []content.TranslationInput) []content.TranslationInput {
	var source *content.TranslationInput
	present := make(map[string]bool, len(inputs))
	for i := range inputs {
		present[inputs[i].Lang] = true
		if inputs[i].Lang == i18n.DefaultLang {
			source = &inputs[i]
		}
	}
	if source == nil {
		return inputs
	}

	out := inputs
	for _, lang := range i18n.Codes() {
		if present[lang] {
			continue
		}
		out = append(out, content.TranslationInput{
			Lang:    lang,
			Title:   p.translate(ctx, lang, source.Title),
			Summary: p.translate(ctx, lang, source.Summary),
			Body:    p.translate(ctx, lang, source.Body),
		})
	}
	return out
}

func (p *Prefiller) translate(ctx context.Context, targetLang, text string) string {
	got, err := p.tr.Translate(ctx, i18n.DefaultLang, targetLang, text)
	if err != nil {
		p.logger.Warn("translation failed, keeping source text",
			zap.String("target_lang", targetLang), zap.Error(err))
		return text
	}
	return got
}
