package prompt

import (
	"sort"

	"github.com/blueberrycongee/hyde/pkg/errors"
)

// Preset keys for the built-in templates.
const (
	PresetWebSearch     = "web_search"
	PresetSciFact       = "sci_fact"
	PresetArguAna       = "arguana"
	PresetTRECCovid     = "trec_covid"
	PresetFiQA          = "fiqa"
	PresetDBPediaEntity = "dbpedia_entity"
	PresetTRECNews      = "trec_news"
	PresetMrTyDi        = "mr_tydi"
)

// presets is the closed table of built-in templates. Callers needing a
// custom prompt construct a Template directly instead of extending this map.
var presets = map[string]*Template{
	PresetWebSearch: MustNew(`Please write a passage to answer the question
Question: {question}
Passage:`),

	PresetSciFact: MustNew(`Please write a scientific paper passage to support/refute the claim
Claim: {question}
Passage:`),

	PresetArguAna: MustNew(`Please write a counter argument for the passage
Passage: {question}
Counter Argument:`),

	PresetTRECCovid: MustNew(`Please write a scientific paper passage to answer the question
Question: {question}
Passage:`),

	PresetFiQA: MustNew(`Please write a financial article passage to answer the question
Question: {question}
Passage:`),

	PresetDBPediaEntity: MustNew(`Please write a passage to answer the question.
Question: {question}
Passage:`),

	PresetTRECNews: MustNew(`Please write a news passage about the topic.
Topic: {question}
Passage:`),

	PresetMrTyDi: MustNew(`Please write a passage in Swahili/Korean/Japanese/Bengali to answer the question in detail.
Question: {question}
Passage:`),
}

// Lookup returns the built-in template for the given preset key.
// Fails with an unknown-preset error if the key is absent.
func Lookup(preset string) (*Template, error) {
	t, ok := presets[preset]
	if !ok {
		return nil, errors.NewUnknownPresetError(preset)
	}
	return t, nil
}

// Presets returns the sorted keys of all built-in templates.
func Presets() []string {
	keys := make([]string, 0, len(presets))
	for k := range presets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
