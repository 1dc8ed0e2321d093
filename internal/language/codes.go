package language

import "sync"

// duckDuckGoCodes are the codes offered by the translation widget.
var duckDuckGoCodes = []string{
	"af", "am", "ar", "as", "az", "ba", "bg", "bn", "bo", "bs",
	"ca", "cs", "cy", "da", "de", "dv", "el", "en", "es", "et",
	"eu", "fa", "fi", "fil", "fj", "fo", "fr", "fr-CA", "ga", "gl",
	"gu", "ha", "he", "hi", "hr", "hsb", "ht", "hu", "hy", "id",
	"ig", "ikt", "is", "it", "iu", "iu-Latn", "ja", "ka", "kk", "km",
	"kmr", "kn", "ko", "ku", "ky", "lo", "lt", "lv", "lzh", "mg",
	"mi", "mk", "ml", "mn-Cyrl", "mn-Mong", "mr", "ms", "mt", "mww", "my",
	"nb", "ne", "nl", "or", "otq", "pa", "pl", "prs", "ps", "pt",
	"pt-PT", "ro", "ru", "sk", "sl", "sm", "so", "sq", "sr-Cyrl", "sr-Latn",
	"sv", "sw", "ta", "te", "th", "ti", "tk", "tlh-Latn", "tlh-Piqd", "to",
	"tr", "tt", "ty", "ug", "uk", "ur", "uz", "vi", "yo", "yua",
	"yue", "zh-Hans", "zh-Hant", "zu",
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the table of codes accepted by DuckDuckGo.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable(duckDuckGoCodes...)
	})
	return defaultTable
}
