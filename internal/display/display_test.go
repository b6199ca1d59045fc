package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"qinter/internal/config"
	"qinter/internal/explain"
	"qinter/internal/manager"
)

func testExplanation() *explain.Explanation {
	return &explain.Explanation{
		Title:       "Undefined variable foo",
		Description: "Python cannot find foo.",
		Suggestions: []string{"one", "two", "three"},
		Examples: []explain.RenderedExample{
			{Description: "Define it", Code: "foo = ..."},
			{Description: "Another", Code: "bar = foo"},
		},
		Source: explain.Attribution{PackName: "python-core", PackVersion: "1.2.0", PackAuthor: "qinter"},
	}
}

func TestExplanationLimits(t *testing.T) {
	out := Explanation(testExplanation(), config.DisplayConfig{MaxSuggestions: 2, MaxExamples: 1})

	assert.Contains(t, out, "Undefined variable foo")
	assert.Contains(t, out, "1. one")
	assert.Contains(t, out, "2. two")
	assert.NotContains(t, out, "three")
	assert.Contains(t, out, "Define it")
	assert.NotContains(t, out, "Another")
	assert.NotContains(t, out, "python-core")
}

func TestExplanationPackInfo(t *testing.T) {
	out := Explanation(testExplanation(), config.DisplayConfig{
		MaxSuggestions: 5, MaxExamples: 3, ShowPackInfo: true,
	})
	assert.Contains(t, out, "from python-core 1.2.0 by qinter")
}

func TestNoExplanation(t *testing.T) {
	assert.Contains(t, NoExplanation("KeyError"), "KeyError")
}

func TestInstalledPacksEmpty(t *testing.T) {
	out := InstalledPacks(nil, false)
	assert.Contains(t, out, "no packs installed")
}

func TestInstalledPacksDetailed(t *testing.T) {
	packs := []manager.InstalledPack{{
		Name: "python-web", Version: "1.0.0", Description: "web errors",
		Author: "ana", Rules: 4, Targets: []string{"HTTPError"},
	}}

	brief := InstalledPacks(packs, false)
	assert.Contains(t, brief, "python-web")
	assert.NotContains(t, brief, "rules: 4")

	detailed := InstalledPacks(packs, true)
	assert.Contains(t, detailed, "rules: 4")
	assert.Contains(t, detailed, "HTTPError")
}

func TestStatisticsWithErrors(t *testing.T) {
	out := Statistics(explain.Statistics{
		Packs:            2,
		Rules:            11,
		Categories:       []string{"NameError", "KeyError"},
		ValidationErrors: []string{"bad.yaml: broken"},
	})
	assert.Contains(t, out, "NameError, KeyError")
	assert.Contains(t, out, "bad.yaml: broken")
}

func TestCheck(t *testing.T) {
	ok := Check("core packs", true, "11 rules")
	assert.Contains(t, ok, "core packs")
	assert.Contains(t, ok, "11 rules")

	fail := Check("registry", false, "")
	assert.True(t, strings.Contains(fail, "FAIL"))
}
