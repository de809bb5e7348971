package language

import (
	"fmt"
	"sort"
	"strings"
)

// Auto is the pseudo source language for automatic detection.
const Auto = "auto"

// codes maps the lowercase-underscore language names accepted by the API
// to the ISO codes the translation backend understands.
var codes = map[string]string{
	// North America
	"english_us":     "en",
	"english_canada": "en",
	"spanish_mexico": "es",

	// South America
	"portuguese_brazil": "pt",
	"spanish_argentina": "es",
	"spanish_chile":     "es",
	"spanish_colombia":  "es",
	"spanish_peru":      "es",
	"spanish_venezuela": "es",

	// Europe
	"french":        "fr",
	"german":        "de",
	"italian":       "it",
	"spanish_spain": "es",

	// India
	"hindi":     "hi",
	"bengali":   "bn",
	"telugu":    "te",
	"marathi":   "mr",
	"tamil":     "ta",
	"urdu":      "ur",
	"gujarati":  "gu",
	"kannada":   "kn",
	"malayalam": "ml",
	"punjabi":   "pa",

	// East Asia
	"chinese_simplified":  "zh-CN",
	"chinese_traditional": "zh-TW",
	"japanese":            "ja",
	"korean":              "ko",
}

// regions groups human-readable language labels by region for the catalog
// endpoint.
var regions = map[string]map[string]string{
	"North_America": {
		"English (US)":     "english_us",
		"English (Canada)": "english_canada",
		"Spanish (Mexico)": "spanish_mexico",
	},
	"South_America": {
		"Portuguese (Brazil)": "portuguese_brazil",
		"Spanish (Argentina)": "spanish_argentina",
		"Spanish (Chile)":     "spanish_chile",
		"Spanish (Colombia)":  "spanish_colombia",
		"Spanish (Peru)":      "spanish_peru",
		"Spanish (Venezuela)": "spanish_venezuela",
	},
	"Europe": {
		"French":          "french",
		"German":          "german",
		"Italian":         "italian",
		"Spanish (Spain)": "spanish_spain",
	},
	"India": {
		"Hindi":     "hindi",
		"Bengali":   "bengali",
		"Telugu":    "telugu",
		"Marathi":   "marathi",
		"Tamil":     "tamil",
		"Urdu":      "urdu",
		"Gujarati":  "gujarati",
		"Kannada":   "kannada",
		"Malayalam": "malayalam",
		"Punjabi":   "punjabi",
	},
	"East_Asia": {
		"Chinese (Simplified)":  "chinese_simplified",
		"Chinese (Traditional)": "chinese_traditional",
		"Japanese":              "japanese",
		"Korean":                "korean",
	},
}

// isoCodes is the reverse index of supported ISO codes, built at init so
// Resolve can accept either form without scanning the table.
var isoCodes = func() map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		m[strings.ToLower(code)] = struct{}{}
	}
	return m
}()

// Resolve converts a language name or ISO code to the backend's ISO code.
// "auto" passes through unchanged.
func Resolve(lang string) (string, error) {
	if lang == Auto {
		return Auto, nil
	}

	normalized := strings.ToLower(strings.TrimSpace(lang))
	if code, ok := codes[normalized]; ok {
		return code, nil
	}
	if _, ok := isoCodes[normalized]; ok {
		return normalized, nil
	}

	return "", fmt.Errorf("language %q is not supported", lang)
}

// IsSupported reports whether lang resolves to a known language.
func IsSupported(lang string) bool {
	_, err := Resolve(lang)
	return err == nil
}

// Validate checks every entry of langs, rejecting unsupported names and
// duplicates (two names resolving to the same backend code count as
// duplicates).
func Validate(langs []string) error {
	seen := make(map[string]string, len(langs))
	for _, lang := range langs {
		code, err := Resolve(lang)
		if err != nil {
			return err
		}
		if code == Auto {
			return fmt.Errorf("%q is not a valid target language", lang)
		}
		if prev, ok := seen[code]; ok {
			return fmt.Errorf("duplicate target language: %q and %q both map to %q", prev, lang, code)
		}
		seen[code] = lang
	}
	return nil
}

// Supported returns the flat name-to-code map for the catalog endpoint.
func Supported() map[string]string {
	out := make(map[string]string, len(codes))
	for name, code := range codes {
		out[name] = code
	}
	return out
}

// Regions returns languages grouped by region for the catalog endpoint.
func Regions() map[string]map[string]string {
	out := make(map[string]map[string]string, len(regions))
	for region, langs := range regions {
		m := make(map[string]string, len(langs))
		for label, name := range langs {
			m[label] = name
		}
		out[region] = m
	}
	return out
}

// Names returns the sorted list of supported language names, used in
// validation error details.
func Names() []string {
	names := make([]string, 0, len(codes))
	for name := range codes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
