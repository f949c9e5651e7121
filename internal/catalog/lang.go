package catalog

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	LangEN = "en"
	LangES = "es"
)

// NormalizeLang 将任意语言代码归一为 en 或 es，例如 es_mx、es-CO -> es，其余一律 en
func NormalizeLang(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return LangEN
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return LangEN
	}
	if base, _ := tag.Base(); base.String() == LangES {
		return LangES
	}
	return LangEN
}

// pick 西语文本缺失时回退到英文
func pick(lang, en, es string) string {
	if lang == LangES && es != "" {
		return es
	}
	return en
}
